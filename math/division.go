package math

import (
	"errors"
	"math/big"
)

var (
	// ErrDivisionByZero is returned when a divisor or modulus is zero
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotInvertible is returned when an element has no inverse in the given ring
	ErrNotInvertible = errors.New("element is not invertible")

	bigOne = big.NewInt(1)
)

// DivFloor returns floor(a / b). b must be positive
func DivFloor(a *big.Int, b *big.Int) (*big.Int, error) {
	if b.Sign() <= 0 {
		return nil, ErrDivisionByZero
	}

	// for a positive divisor, Euclidean division already rounds toward negative infinity
	return new(big.Int).Div(a, b), nil
}

// DivCeil returns ceil(a / b). b must be positive
func DivCeil(a *big.Int, b *big.Int) (*big.Int, error) {
	if b.Sign() <= 0 {
		return nil, ErrDivisionByZero
	}

	q, r := new(big.Int).DivMod(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, bigOne)
	}
	return q, nil
}
