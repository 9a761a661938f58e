package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/justinabrahms/hidetheking/internal/auth"
)

func main() {
	var out string
	flag.StringVar(&out, "out", "", "Write the private key to this file instead of stdout")
	flag.Parse()

	key, err := auth.GenerateKey()
	if err != nil {
		log.Fatal("Failed to generate private key:", err)
	}

	privKeyPEM, err := auth.EncodeKeyPEM(key)
	if err != nil {
		log.Fatal(err)
	}

	jwkJSON, _ := json.MarshalIndent(auth.PublicJWK(key), "", "  ")

	if out != "" {
		if err := os.WriteFile(out, privKeyPEM, 0o600); err != nil {
			log.Fatal("Failed to write key file:", err)
		}
		fmt.Printf("Private key written to %s\n", out)
	} else {
		fmt.Println("=== PRIVATE KEY (Keep this secret!) ===")
		fmt.Println("Save this to seat-key.pem and set auth.key_file (or HIDETHEKING_AUTH_KEY_FILE):")
		fmt.Println()
		fmt.Print(string(privKeyPEM))
	}
	fmt.Println()
	fmt.Println("=== PUBLIC KEY ===")
	fmt.Println("Served at /api/.well-known/jwks.json once the server uses this key:")
	fmt.Println()
	fmt.Println(string(jwkJSON))
}
