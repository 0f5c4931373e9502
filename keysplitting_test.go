package bleichenbacher

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"time"

	bmath "github.com/bastionzero/bleichenbacher/math"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const maxTestShards = 8

// randomize order of shards
func shuffleShards(shards []*KeyShard) {
	r := mrand.New(mrand.NewSource(time.Now().UnixMicro()))
	r.Shuffle(len(shards), func(i, j int) {
		shards[i], shards[j] = shards[j], shards[i]
	})
}

func shardProduct(shards []*KeyShard) *big.Int {
	result := big.NewInt(1)
	for _, s := range shards {
		result.Mul(result, s.D)
	}
	return result
}

// run a full workflow of splitting a key and using the shards to decrypt
func runSplitTest(priv *PrivateKey, i int, splitBy SplitBy) {
	var shards []*KeyShard
	var err error

	var label string
	switch splitBy {
	case Multiplication:
		label = "product"
	case Addition:
		label = "sum"
	}

	It("Successfully splits the key", func() {
		shards, err = SplitD(priv, i, splitBy)
		Expect(err).To(BeNil(), fmt.Sprintf("failed to split key into %d shards: %s", i, err))
		Expect(shards).To(HaveLen(i))
	})

	It(fmt.Sprintf("Produces shards whose %s is congruent to the original exponent mod phi(N)", label), func() {
		phi := eulerTotient(priv.Primes)

		switch splitBy {
		case Multiplication:
			product := shardProduct(shards)
			Expect(bmath.CongruentModN(product, priv.D, phi)).To(BeTrue(), fmt.Sprintf("%v ≢ %v (mod %v)", product, priv.D, phi))
		case Addition:
			sum := shardSum(shards)
			Expect(bmath.CongruentModN(sum, priv.D, phi)).To(BeTrue(), fmt.Sprintf("%v ≢ %v (mod %v)", sum, priv.D, phi))
		}
	})

	It("Decrypts like the whole key, in any order", func() {
		By("Shuffling the shards to demonstrate that the order of partial decryptions doesn't matter")
		shuffleShards(shards)

		splitOracle, err := NewSplitOracle(shards, splitBy, PrefixOnly)
		Expect(err).To(BeNil(), fmt.Sprintf("failed to build split oracle: %s", err))

		for k := 0; k < 20; k++ {
			c, err := rand.Int(rand.Reader, priv.N)
			Expect(err).To(BeNil())

			want, err := decrypt(priv, c)
			Expect(err).To(BeNil())
			Expect(splitOracle.combine(c).Cmp(want)).To(BeZero(), "combined partial decryptions must match the plaintext")
		}

		// no proper subset of the shards decrypts
		partial, err := NewSplitOracle(shards[1:], splitBy, PrefixOnly)
		if err == nil {
			c, err := EncryptPKCS1v15(rand.Reader, priv.Public(), []byte("partial"))
			Expect(err).To(BeNil())
			want, _ := decrypt(priv, c)
			Expect(partial.combine(c).Cmp(want)).NotTo(BeZero(), "a partial set of shards must not decrypt")
		}
	})
}

var _ = Describe("Keysplitting", func() {

	priv, _ := GenerateRandomKey(rand.Reader, 256)

	Context("Basic interfacing", func() {
		When("Attempting to split a key into 1 shard", func() {
			It("Should fail", func() {
				_, err := SplitD(priv, 1, Addition)
				Expect(err).NotTo(BeNil(), "Shouldn't be able to split a key into 1 shard")
			})
		})

		When("Using an unknown split algorithm", func() {
			It("Should fail", func() {
				_, err := SplitD(priv, 2, SplitBy(9))
				Expect(err).NotTo(BeNil())

				shards, err := SplitD(priv, 2, Addition)
				Expect(err).To(BeNil())
				_, err = NewSplitOracle(shards, SplitBy(9), PrefixOnly)
				Expect(err).NotTo(BeNil())
			})
		})

		When("Mixing shards of different keys", func() {
			It("Should fail", func() {
				other, err := GenerateRandomKey(rand.Reader, 256)
				Expect(err).To(BeNil())

				a, err := SplitD(priv, 2, Addition)
				Expect(err).To(BeNil())
				b, err := SplitD(other, 2, Addition)
				Expect(err).To(BeNil())

				_, err = NewSplitOracle([]*KeyShard{a[0], b[1]}, Addition, PrefixOnly)
				Expect(err).NotTo(BeNil())
			})
		})
	})

	Context("Splitting keys multiplicatively", func() {
		for i := 2; i <= maxTestShards; i++ {
			When(fmt.Sprintf("Splitting a key %d ways", i), Ordered, func() {
				runSplitTest(priv, i, Multiplication)
			})
		}
	})

	Context("Splitting keys additively", func() {
		for i := 2; i <= maxTestShards; i++ {
			When(fmt.Sprintf("Splitting a key %d ways", i), Ordered, func() {
				runSplitTest(priv, i, Addition)
			})
		}
	})

	// the attack only sees the oracle's answers, so splitting the key must not make any difference to it
	Context("Attacking a split oracle", func() {
		for _, splitBy := range []SplitBy{Addition, Multiplication} {
			splitBy := splitBy
			It(fmt.Sprintf("Recovers the plaintext through %v shards", splitBy), func() {
				key, err := GenerateKey(rand.Reader, fromBase16(testP), fromBase16(testQ))
				Expect(err).To(BeNil())

				shards, err := SplitD(key, 3, splitBy)
				Expect(err).To(BeNil())
				oracle, err := NewSplitOracle(shards, splitBy, PrefixOnly)
				Expect(err).To(BeNil())

				c, err := EncryptPKCS1v15(rand.Reader, key.Public(), []byte("kick it, CC"))
				Expect(err).To(BeNil())
				Expect(oracle.Check(c)).To(BeTrue())

				m, err := Recover(context.Background(), oracle, c, key.Public())
				Expect(err).To(BeNil(), fmt.Sprintf("failed to recover plaintext: %s", err))

				msg, err := ExtractMessage(m, key.Size())
				Expect(err).To(BeNil())
				Expect(string(msg)).To(Equal("kick it, CC"))
			})
		}
	})
})
