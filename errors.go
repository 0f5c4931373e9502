package bleichenbacher

import "errors"

var (
	// ErrInvalidInput is returned when the key, ciphertext or oracle passed to Recover cannot be attacked at all
	ErrInvalidInput = errors.New("invalid input")

	// ErrOracleViolation is returned when the target ciphertext is not accepted by the oracle and blinding is disabled
	ErrOracleViolation = errors.New("ciphertext is not PKCS #1 v1.5 conformant according to the oracle")

	// ErrSearchExhausted is returned when a multiplier search runs out of candidates, or when the
	// interval set becomes empty. Under a faithful oracle this cannot happen.
	ErrSearchExhausted = errors.New("search exhausted without finding a conformant multiplier")

	// ErrArithmetic is returned for division by zero or a missing modular inverse
	ErrArithmetic = errors.New("arithmetic error")

	// ErrMessageTooLong is returned when a message does not fit in a padded block
	ErrMessageTooLong = errors.New("message too long for RSA key size")

	// ErrInvalidPadding is returned when a block is not PKCS #1 v1.5 encryption padded
	ErrInvalidPadding = errors.New("invalid PKCS #1 v1.5 padding")
)
