package bleichenbacher

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// SplitBy determines the algorithm used to split the private exponent and to combine partial decryptions
type SplitBy int

const (
	Multiplication SplitBy = iota
	Addition
)

func (s SplitBy) String() string {
	switch s {
	case Multiplication:
		return "multiplication"
	case Addition:
		return "addition"
	default:
		return fmt.Sprintf("SplitBy(%d)", int(s))
	}
}

// A KeyShard holds one piece of a split private exponent. The public key matches that of the whole original key
type KeyShard struct {
	PublicKey *PublicKey // public part
	D         *big.Int   // split private exponent
}

// SplitD returns k key shards that together compose priv.D
//
// If [SplitBy].Multiplication is used, the shards will be such that s1 * s2 * ... * sk ≡ D (mod phi(N))
//
// If [SplitBy].Addition is used, the shards will be such that s1 + s2 + ... + sk ≡ D (mod phi(N))
func SplitD(priv *PrivateKey, k int, splitBy SplitBy) ([]*KeyShard, error) {
	if k < 2 {
		return nil, fmt.Errorf("cannot split key into fewer than 2 shards")
	} else if priv == nil || len(priv.Primes) < 2 {
		return nil, fmt.Errorf("cannot split a key without its prime factors")
	}

	phi := eulerTotient(priv.Primes)

	switch splitBy {
	case Multiplication:
		return splitMultiplicative(priv, k, phi)
	case Addition:
		return splitAdditive(priv, k, phi)
	default:
		return nil, fmt.Errorf("unrecognized splitBy argument: %v", splitBy)
	}
}

// finds shards for priv.D by finding random pairs of factors whose cumulative product is congruent to priv.D (mod phi)
func splitMultiplicative(priv *PrivateKey, k int, phi *big.Int) ([]*KeyShard, error) {
	shards := make([]*KeyShard, 0, k)
	seed := priv.D

	// each call to splitSeed produces a pair of shards such that shardA * shardB ≡ seed (mod phi).
	// If we require more than two shards, we sacrifice one of them to become the new seed
	for len(shards) < k {
		shardA, shardB, err := splitSeed(seed, phi)
		if err != nil {
			return nil, err
		}
		shards = append(shards, &KeyShard{PublicKey: &priv.PublicKey, D: shardA})

		if len(shards) == k-1 {
			shards = append(shards, &KeyShard{PublicKey: &priv.PublicKey, D: shardB})
			break
		}

		// otherwise, use shardB as our new seed to be split
		seed = shardB
	}
	return shards, nil
}

// generate two shards of seed such that shardA * shardB ≡ seed (mod phi)
func splitSeed(seed *big.Int, phi *big.Int) (shardA *big.Int, shardB *big.Int, err error) {
	for {
		shardA, err = validRandomNumber(phi, seed)
		if err != nil {
			return
		}

		// validRandomNumber checks for coprimality with phi, so this should always succeed
		shardAInverse := new(big.Int).ModInverse(shardA, phi)
		if shardAInverse == nil {
			continue
		}

		// shardB <- seed/shardA mod phi
		shardB = new(big.Int).Mul(seed, shardAInverse)
		shardB.Mod(shardB, phi)
		return
	}
}

// finds shards for priv.D by picking k-1 random numbers and letting the last shard absorb the difference (mod phi)
func splitAdditive(priv *PrivateKey, k int, phi *big.Int) ([]*KeyShard, error) {
	// we use this outer loop as a restart mechanism in case of an undesirable combination of shards
ShardSearchLoop:
	for {
		shards := make([]*KeyShard, k)

		for i := 0; i < k-1; i++ {
			for {
				d, err := validRandomNumber(phi, priv.D)
				if err != nil {
					return nil, err
				}
				newShard := &KeyShard{PublicKey: &priv.PublicKey, D: d}
				if !shardIn(shards, newShard) {
					shards[i] = newShard
					break
				}
			}
		}

		// last <- D - [sum of shards] (mod phi)
		last := new(big.Int).Sub(priv.D, shardSum(shards))
		last.Mod(last, phi)
		lastShard := &KeyShard{PublicKey: &priv.PublicKey, D: last}

		// a zero or duplicate last shard is astronomically unlikely, but not allowed
		if last.Sign() == 0 || shardIn(shards, lastShard) {
			continue ShardSearchLoop
		}
		shards[k-1] = lastShard
		return shards, nil
	}
}

// returns a random number between 1 and phi that is
//   - coprime to phi
//   - not equal to 0, 1 or seed
func validRandomNumber(phi *big.Int, seed *big.Int) (r *big.Int, err error) {
	for {
		r, err = rand.Int(rand.Reader, phi)
		if err != nil {
			return
		}

		gcd := new(big.Int).GCD(nil, nil, r, phi)
		if gcd.Cmp(bigOne) != 0 {
			continue
		}

		if r.Cmp(bigZero) == 0 || r.Cmp(bigOne) == 0 || r.Cmp(seed) == 0 {
			continue
		}

		return
	}
}

// returns the sum of a slice of shards (nil shards count as 0)
func shardSum(shards []*KeyShard) *big.Int {
	result := big.NewInt(0)
	for _, s := range shards {
		if s != nil {
			result.Add(result, s.D)
		}
	}
	return result
}

func shardIn(shards []*KeyShard, shard *KeyShard) bool {
	for _, s := range shards {
		if s != nil && s.D != nil && s.D.Cmp(shard.D) == 0 {
			return true
		}
	}
	return false
}

// A SplitOracle is a padding oracle whose decryptor never holds the whole private exponent.
// Each shard produces a partial decryption and only the combined plaintext is checked
type SplitOracle struct {
	shards  []*KeyShard
	splitBy SplitBy
	mode    OracleMode
	n       *big.Int
	k       int
}

// NewSplitOracle returns an oracle over shards produced by SplitD with the same splitBy
func NewSplitOracle(shards []*KeyShard, splitBy SplitBy, mode OracleMode) (*SplitOracle, error) {
	if len(shards) < 2 {
		return nil, fmt.Errorf("cannot build a split oracle from %d shards", len(shards))
	}
	switch splitBy {
	case Multiplication, Addition:
	default:
		return nil, fmt.Errorf("unrecognized splitBy argument: %v", splitBy)
	}
	switch mode {
	case PrefixOnly, Strict:
	default:
		return nil, fmt.Errorf("unrecognized oracle mode: %v", mode)
	}

	n := shards[0].PublicKey.N
	for i, s := range shards {
		if s.PublicKey.N.Cmp(n) != 0 {
			return nil, fmt.Errorf("shard %d belongs to a different key", i)
		}
	}

	return &SplitOracle{
		shards:  shards,
		splitBy: splitBy,
		mode:    mode,
		n:       new(big.Int).Set(n),
		k:       byteLen(n),
	}, nil
}

// Check implements PaddingOracle
func (o *SplitOracle) Check(c *big.Int) bool {
	if c == nil || c.Sign() < 0 || c.Cmp(o.n) >= 0 {
		return false
	}

	m := o.combine(c)
	return o.mode.Accepts(m.FillBytes(make([]byte, o.k)))
}

// combine runs every shard over c
//
// If [SplitBy].Multiplication is used, m <- (((c^d1)^d2)...)^dk (mod N), i.e. a chain of exponentiation
//
// If [SplitBy].Addition is used, m <- c^d1 * c^d2 * ... * c^dk (mod N), i.e. a product of partial decryptions
func (o *SplitOracle) combine(c *big.Int) *big.Int {
	switch o.splitBy {
	case Multiplication:
		m := new(big.Int).Set(c)
		for _, s := range o.shards {
			m.Exp(m, s.D, o.n)
		}
		return m
	default:
		m := big.NewInt(1)
		partial := new(big.Int)
		for _, s := range o.shards {
			partial.Exp(c, s.D, o.n)
			m.Mul(m, partial)
			m.Mod(m, o.n)
		}
		return m
	}
}
