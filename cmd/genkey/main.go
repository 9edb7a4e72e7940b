// Command genkey prints a random value for BOOKING_ENCRYPTION_KEY.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/nekogravitycat/court-reservation/internal/reference"
)

func main() {
	// Hex doubles the length; the codec uses the first KeySize characters.
	buf := make([]byte, reference.KeySize)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to read random bytes: %v", err)
	}
	fmt.Println(hex.EncodeToString(buf))
}
