package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"github.com/bastionzero/bleichenbacher"
)

// writes a PEM-encoded oracle key to stdout, for use with the examples' -key flag:
//
//	go run ./scripts -bits 256 > key.pem
func main() {
	bits := flag.Int("bits", 256, "modulus size in bits")
	flag.Parse()

	key, err := bleichenbacher.GenerateRandomKey(rand.Reader, *bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate key: %s\n", err)
		os.Exit(1)
	}

	// sanity check the key before handing it out
	oracle, err := bleichenbacher.NewKeyOracle(key, bleichenbacher.PrefixOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build oracle: %s\n", err)
		os.Exit(1)
	}
	c, err := bleichenbacher.EncryptPKCS1v15(rand.Reader, key.Public(), []byte("a message"))
	if err != nil || !oracle.Check(c) {
		fmt.Fprintf(os.Stderr, "generated key does not round trip: %v\n", err)
		os.Exit(1)
	}

	encoded, err := key.EncodePEM()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode key: %s\n", err)
		os.Exit(1)
	}
	fmt.Print(encoded)
}
