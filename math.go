package bleichenbacher

import (
	"fmt"
	"math/big"

	bmath "github.com/bastionzero/bleichenbacher/math"
)

var (
	bigZero  = big.NewInt(0)
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigThree = big.NewInt(3)
)

// calculate the Euler totient of n using its prime factors, however many there are
func eulerTotient(primes []*big.Int) *big.Int {
	// multiply the first two primes (guaranteed to be at least 2)
	// phi <- (p[0] - 1) * (p[1] - 1)
	p0m1 := new(big.Int).Sub(primes[0], bigOne)
	p1m1 := new(big.Int).Sub(primes[1], bigOne)
	phi := new(big.Int).Mul(p0m1, p1m1)

	// iteratively multiply any additional primes to phi
	for i := 2; i < len(primes); i++ {
		// phi[i] <- phi[i-1] * (p[i] - 1)
		pim1 := new(big.Int).Sub(primes[i], bigOne)
		phi.Mul(phi, pim1)
	}

	return phi
}

// byteLen returns the length of z in bytes
func byteLen(z *big.Int) int {
	return (z.BitLen() + 7) / 8
}

// divCeil and divFloor tag arithmetic failures with ErrArithmetic so callers only need to check one sentinel
func divCeil(a, b *big.Int) (*big.Int, error) {
	q, err := bmath.DivCeil(a, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArithmetic, err)
	}
	return q, nil
}

func divFloor(a, b *big.Int) (*big.Int, error) {
	q, err := bmath.DivFloor(a, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArithmetic, err)
	}
	return q, nil
}

func modInverse(a, N *big.Int) (*big.Int, error) {
	inv, err := bmath.ModInverse(a, N)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArithmetic, err)
	}
	return inv, nil
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
