package bleichenbacher

import (
	"bytes"
	"encoding/pem"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const pemType = "BLEICHENBACHER ORACLE KEY"

// EncodePEM returns a PEM encoding of the key, for use as a fixture.
//
// The body is a DER SEQUENCE of INTEGERs: N, E, D, then every prime factor
func (priv *PrivateKey) EncodePEM() (string, error) {
	if priv.N == nil || priv.E == nil || priv.D == nil || len(priv.Primes) < 2 {
		return "", fmt.Errorf("cannot encode an incomplete key")
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(priv.N)
		b.AddASN1BigInt(priv.E)
		b.AddASN1BigInt(priv.D)
		for _, p := range priv.Primes {
			b.AddASN1BigInt(p)
		}
	})
	der, err := b.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to DER-encode: %s", err)
	}

	keyPEM := new(bytes.Buffer)
	err = pem.Encode(keyPEM, &pem.Block{
		Type:  pemType,
		Bytes: der,
	})
	if err != nil {
		return "", fmt.Errorf("failed to PEM-encode: %s", err)
	}

	return keyPEM.String(), nil
}

// DecodePEM returns key data from a PEM encoding
func DecodePEM(encoded string) (*PrivateKey, error) {
	block, rest := pem.Decode([]byte(encoded))
	if block == nil || block.Type != pemType || len(bytes.TrimSpace(rest)) > 0 {
		return nil, fmt.Errorf("failed to decode PEM block containing oracle key")
	}

	input := cryptobyte.String(block.Bytes)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("failed to unmarshal DER-encoded oracle key")
	}

	var ints []*big.Int
	for !inner.Empty() {
		z := new(big.Int)
		if !inner.ReadASN1Integer(z) {
			return nil, fmt.Errorf("failed to unmarshal DER-encoded oracle key")
		}
		ints = append(ints, z)
	}
	if len(ints) < 5 {
		return nil, fmt.Errorf("oracle key has %d fields, need at least 5", len(ints))
	}

	priv := &PrivateKey{
		PublicKey: PublicKey{N: ints[0], E: ints[1]},
		D:         ints[2],
		Primes:    ints[3:],
	}

	// the primes must multiply to N, otherwise the oracle would decrypt under a different modulus
	product := big.NewInt(1)
	for _, p := range priv.Primes {
		product.Mul(product, p)
	}
	if product.Cmp(priv.N) != 0 {
		return nil, fmt.Errorf("oracle key primes do not multiply to its modulus")
	}

	return priv, nil
}
