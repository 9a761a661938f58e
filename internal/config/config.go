package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/game"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Game        GameConfig        `mapstructure:"game"`
	Rules       RulesConfig       `mapstructure:"rules"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"`
}

type AuthConfig struct {
	// PEM file with the EC P-256 key seat tokens are signed with. Empty means
	// an ephemeral key, so tokens do not survive a restart.
	KeyFile  string        `mapstructure:"key_file"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type GameConfig struct {
	game.TimeControl `mapstructure:",squash"`
	HiddenSides      string `mapstructure:"hidden_sides"`
}

type RulesConfig struct {
	StrictCastling bool `mapstructure:"strict_castling"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// GameOptions converts the game and rules sections into defaults for new
// games.
func (c *Config) GameOptions() (game.Options, error) {
	sides, err := hidden.ParseSides(c.Game.HiddenSides)
	if err != nil {
		return game.Options{}, err
	}
	return game.Options{
		HiddenSides: sides,
		Rules:       chess.Rules{StrictCastling: c.Rules.StrictCastling},
		TimeControl: c.Game.TimeControl,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.static_dir", "")
	v.SetDefault("auth.key_file", "")
	v.SetDefault("auth.issuer", "hidetheking")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("game.initial_seconds", 0)
	v.SetDefault("game.increment_seconds", 0)
	v.SetDefault("game.hidden_sides", string(hidden.Both))
	v.SetDefault("rules.strict_castling", true)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

// Load reads config.yaml from the working directory or ./config, overlaid
// with HIDETHEKING_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

// LoadFile reads the config at path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("HIDETHEKING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if _, err := hidden.ParseSides(cfg.Game.HiddenSides); err != nil {
		return nil, fmt.Errorf("invalid game.hidden_sides: %w", err)
	}
	return &cfg, nil
}
