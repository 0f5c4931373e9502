package bleichenbacher

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/cronokirby/safenum"
)

// A PaddingOracle reports whether a ciphertext decrypts to a PKCS #1 v1.5 conformant plaintext.
// It is the attacker's only source of information about the private key
type PaddingOracle interface {
	// Check returns true iff c is in [0, N) and its decryption is conformant
	Check(c *big.Int) bool
}

// OracleFunc adapts an ordinary function to the PaddingOracle interface
type OracleFunc func(c *big.Int) bool

// Check calls f(c)
func (f OracleFunc) Check(c *big.Int) bool {
	return f(c)
}

// OracleMode determines how much of the padding an oracle validates
type OracleMode int

const (
	// PrefixOnly accepts any plaintext that starts 00 02. This is the oracle the attack's interval bounds are built on
	PrefixOnly OracleMode = iota
	// Strict also requires at least 8 nonzero padding bytes followed by a 00 separator, as a real decryptor would
	Strict
)

func (m OracleMode) String() string {
	switch m {
	case PrefixOnly:
		return "prefix-only"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("OracleMode(%d)", int(m))
	}
}

// A KeyOracle is a padding oracle backed by an RSA private key. It owns a copy of the key material
// and decrypts in constant time, so the boolean it returns is all it reveals
type KeyOracle struct {
	n    *big.Int
	k    int
	nMod *safenum.Modulus
	d    *safenum.Nat
	mode OracleMode
}

// NewKeyOracle returns an oracle that decrypts with priv and validates padding according to mode
func NewKeyOracle(priv *PrivateKey, mode OracleMode) (*KeyOracle, error) {
	if priv == nil || priv.N == nil || priv.D == nil {
		return nil, fmt.Errorf("cannot build an oracle from a nil key")
	}

	switch mode {
	case PrefixOnly, Strict:
	default:
		return nil, fmt.Errorf("unrecognized oracle mode: %v", mode)
	}

	return &KeyOracle{
		n:    new(big.Int).Set(priv.N),
		k:    priv.Size(),
		nMod: safenum.ModulusFromBytes(priv.N.Bytes()),
		d:    new(safenum.Nat).SetBytes(priv.D.Bytes()),
		mode: mode,
	}, nil
}

// Check implements PaddingOracle
func (o *KeyOracle) Check(c *big.Int) bool {
	if c == nil || c.Sign() < 0 || c.Cmp(o.n) >= 0 {
		return false
	}

	cNat := new(safenum.Nat).SetBytes(c.Bytes())
	m := new(safenum.Nat).Exp(cNat, o.d, o.nMod)
	em := m.FillBytes(make([]byte, o.k))

	return o.mode.Accepts(em)
}

// Accepts reports whether a k-byte decrypted block passes the padding check of mode.
// Custom oracles can use it so that they judge plaintexts exactly like KeyOracle
func (m OracleMode) Accepts(em []byte) bool {
	switch m {
	case Strict:
		return isConformant(em)
	default:
		return hasPrefix(em)
	}
}

// A CountingOracle counts the queries made to the oracle it wraps. It is safe for concurrent use
type CountingOracle struct {
	oracle  PaddingOracle
	queries int64
}

// NewCountingOracle wraps oracle
func NewCountingOracle(oracle PaddingOracle) *CountingOracle {
	return &CountingOracle{oracle: oracle}
}

// Check implements PaddingOracle
func (o *CountingOracle) Check(c *big.Int) bool {
	atomic.AddInt64(&o.queries, 1)
	return o.oracle.Check(c)
}

// Queries returns the number of calls to Check so far
func (o *CountingOracle) Queries() int {
	return int(atomic.LoadInt64(&o.queries))
}

// Reset zeroes the query count
func (o *CountingOracle) Reset() {
	atomic.StoreInt64(&o.queries, 0)
}
