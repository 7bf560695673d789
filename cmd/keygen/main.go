// Command keygen prints a 32-byte log encryption key as hex, suitable for
// LOG_SECURITY_ENCRYPTION_KEY. By default the key is random; with
// -passphrase it is derived deterministically so the same passphrase and
// salt reproduce the same key.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/pbkdf2"

	"telemetry_logger/internal/storage"
)

const pbkdf2Iterations = 600_000

func main() {
	passphrase := flag.String("passphrase", "", "derive the key from a passphrase instead of random bytes")
	salt := flag.String("salt", "telemetry-logger", "salt used together with -passphrase")
	flag.Parse()

	if *passphrase != "" {
		key := pbkdf2.Key([]byte(*passphrase), []byte(*salt), pbkdf2Iterations, 32, sha256.New)
		fmt.Println(hex.EncodeToString(key))
		return
	}

	key, err := storage.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	fmt.Println(key)
}
