package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
)

// JWK is the public half of a seat signing key.
type JWK struct {
	KeyType string `json:"kty"`
	Curve   string `json:"crv"`
	X       string `json:"x"`
	Y       string `json:"y"`
	Use     string `json:"use"`
	Alg     string `json:"alg"`
	KeyID   string `json:"kid"`
}

// GenerateKey generates a new ECDSA P-256 key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// LoadKeyFile reads an EC private key PEM file.
func LoadKeyFile(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return ParseKeyPEM(data)
}

// ParseKeyPEM parses an "EC PRIVATE KEY" PEM block.
func ParseKeyPEM(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block")
	}

	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC private key: %w", err)
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("unsupported curve %s, expected P-256", key.Curve.Params().Name)
	}
	return key, nil
}

// EncodeKeyPEM exports key as an "EC PRIVATE KEY" PEM block.
func EncodeKeyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}

// PublicJWK returns the public JWK of key. The key ID is derived from the
// public coordinates so it is stable across restarts with the same key.
func PublicJWK(key *ecdsa.PrivateKey) JWK {
	x := pad32(key.PublicKey.X.Bytes())
	y := pad32(key.PublicKey.Y.Bytes())
	sum := sha256.Sum256(append(append([]byte{}, x...), y...))
	return JWK{
		KeyType: "EC",
		Curve:   "P-256",
		X:       base64.RawURLEncoding.EncodeToString(x),
		Y:       base64.RawURLEncoding.EncodeToString(y),
		Use:     "sig",
		Alg:     "ES256",
		KeyID:   base64.RawURLEncoding.EncodeToString(sum[:8]),
	}
}

// P-256 coordinates are 32 bytes
func pad32(b []byte) []byte {
	if len(b) >= 32 {
		return b
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}
