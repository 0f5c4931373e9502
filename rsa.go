package bleichenbacher

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// A PublicKey is an RSA public key. Unlike crypto/rsa, the exponent is arbitrary precision,
// since keys built by GenerateKey may pick E anywhere below the totient
type PublicKey struct {
	N *big.Int // modulus
	E *big.Int // public exponent
}

// Size returns the modulus size in bytes
func (pub *PublicKey) Size() int {
	return byteLen(pub.N)
}

// A PrivateKey is an RSA private key. Primes are the factors of N
type PrivateKey struct {
	PublicKey
	D      *big.Int   // private exponent
	Primes []*big.Int // prime factors of N, at least 2
}

// Public returns the public half of priv
func (priv *PrivateKey) Public() *PublicKey {
	return &priv.PublicKey
}

// GenerateKey builds a key from the given primes.
//
// E is 3 when 3 is coprime to the totient. Otherwise a random E in [5, phi) is drawn until it is
func GenerateKey(random io.Reader, primes ...*big.Int) (*PrivateKey, error) {
	if len(primes) < 2 {
		return nil, fmt.Errorf("cannot build a key from fewer than 2 primes")
	}

	n := new(big.Int).Set(bigOne)
	for _, p := range primes {
		if p == nil || p.Cmp(bigTwo) < 0 {
			return nil, fmt.Errorf("invalid prime factor: %v", p)
		}
		n.Mul(n, p)
	}
	phi := eulerTotient(primes)

	e := big.NewInt(3)
	gcd := new(big.Int)
	for gcd.GCD(nil, nil, e, phi).Cmp(bigOne) != 0 {
		var err error
		if e, err = randomInRange(random, big.NewInt(5), phi); err != nil {
			return nil, fmt.Errorf("failed to pick public exponent: %s", err)
		}
	}

	d, err := modInverse(e, phi)
	if err != nil {
		return nil, fmt.Errorf("failed to derive private exponent: %w", err)
	}

	ps := make([]*big.Int, len(primes))
	for i, p := range primes {
		ps[i] = new(big.Int).Set(p)
	}

	return &PrivateKey{
		PublicKey: PublicKey{N: n, E: e},
		D:         d,
		Primes:    ps,
	}, nil
}

// GenerateRandomKey builds a key from two random primes of bits/2 bits each
func GenerateRandomKey(random io.Reader, bits int) (*PrivateKey, error) {
	if bits < 24 {
		return nil, fmt.Errorf("cannot generate a %d-bit key: modulus must be at least 3 bytes", bits)
	}

	for {
		p, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, fmt.Errorf("failed to generate prime: %s", err)
		}
		q, err := rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, fmt.Errorf("failed to generate prime: %s", err)
		}

		// rand.Prime sets the top two bits, so the product has exactly the requested length unless p == q
		if p.Cmp(q) == 0 {
			continue
		}
		return GenerateKey(random, p, q)
	}
}

// Encrypt performs textbook RSA encryption of m, which must lie in [0, N)
func Encrypt(pub *PublicKey, m *big.Int) (*big.Int, error) {
	if m.Sign() < 0 || m.Cmp(pub.N) >= 0 {
		return nil, fmt.Errorf("%w: plaintext out of range", ErrInvalidInput)
	}
	return new(big.Int).Exp(m, pub.E, pub.N), nil
}

// decrypt performs an RSA decryption, resulting in a plaintext integer.
func decrypt(priv *PrivateKey, c *big.Int) (m *big.Int, err error) {
	if c.Sign() < 0 || c.Cmp(priv.N) >= 0 {
		err = fmt.Errorf("%w: ciphertext out of range", ErrInvalidInput)
		return
	}
	if priv.N.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero modulus", ErrArithmetic)
	}

	m = new(big.Int).Exp(c, priv.D, priv.N)

	return
}

// randomInRange returns a uniform random integer in [lo, hi)
func randomInRange(random io.Reader, lo *big.Int, hi *big.Int) (*big.Int, error) {
	width := new(big.Int).Sub(hi, lo)
	if width.Sign() <= 0 {
		return nil, fmt.Errorf("empty range [%v, %v)", lo, hi)
	}

	r, err := rand.Int(random, width)
	if err != nil {
		return nil, err
	}
	return r.Add(r, lo), nil
}
