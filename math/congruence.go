package math

import (
	"math/big"
)

// check that n divides (a - b)
func CongruentModN(a *big.Int, b *big.Int, N *big.Int) bool {
	aModN := new(big.Int).Mod(a, N)
	bModN := new(big.Int).Mod(b, N)

	return aModN.Cmp(bModN) == 0
}

// ModInverse returns a^-1 (mod N), or ErrNotInvertible when gcd(a, N) != 1
func ModInverse(a *big.Int, N *big.Int) (*big.Int, error) {
	if N.Sign() <= 0 {
		return nil, ErrDivisionByZero
	}

	// big.Int.ModInverse leaves the receiver untouched and returns nil when no inverse exists
	inv := new(big.Int).ModInverse(a, N)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return inv, nil
}
