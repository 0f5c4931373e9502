package bleichenbacher

import (
	"io"
	"log"
	"math/big"
)

// A Round is a snapshot of the attack taken after each narrowing step
type Round struct {
	Iteration int        // 1-based
	Step      string     // "2a", "2b" or "2c": the search that produced S
	S         *big.Int   // multiplier used for this round
	Intervals []Interval // interval set after narrowing
	Queries   int        // oracle calls made so far, including the initial check
}

// An Option configures Recover
type Option func(*config)

type config struct {
	logger   *log.Logger
	blinding io.Reader
	observer func(Round)
}

func defaultConfig() *config {
	return &config{
		logger: log.New(io.Discard, "", 0),
	}
}

// WithLogger logs one line per iteration to l
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBlinding lets Recover attack a ciphertext that is not itself conformant. Random blinding
// factors are drawn from random until the oracle accepts the blinded ciphertext
func WithBlinding(random io.Reader) Option {
	return func(c *config) {
		c.blinding = random
	}
}

// WithObserver calls fn after every narrowing step. fn receives copies and may keep them
func WithObserver(fn func(Round)) Option {
	return func(c *config) {
		c.observer = fn
	}
}
