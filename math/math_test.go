package math

import (
	"fmt"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Math", func() {

	Context("Rounding division", func() {
		DescribeTable("DivFloor and DivCeil",
			func(a, b, floor, ceil int64) {
				f, err := DivFloor(big.NewInt(a), big.NewInt(b))
				Expect(err).To(BeNil())
				Expect(f.Int64()).To(Equal(floor), fmt.Sprintf("floor(%d / %d)", a, b))

				c, err := DivCeil(big.NewInt(a), big.NewInt(b))
				Expect(err).To(BeNil())
				Expect(c.Int64()).To(Equal(ceil), fmt.Sprintf("ceil(%d / %d)", a, b))
			},
			Entry("exact", int64(12), int64(4), int64(3), int64(3)),
			Entry("remainder", int64(13), int64(4), int64(3), int64(4)),
			Entry("zero numerator", int64(0), int64(7), int64(0), int64(0)),
			Entry("negative numerator", int64(-13), int64(4), int64(-4), int64(-3)),
			Entry("negative exact", int64(-12), int64(4), int64(-3), int64(-3)),
		)

		It("Refuses a zero divisor", func() {
			_, err := DivCeil(big.NewInt(1), big.NewInt(0))
			Expect(err).To(MatchError(ErrDivisionByZero))

			_, err = DivFloor(big.NewInt(1), big.NewInt(0))
			Expect(err).To(MatchError(ErrDivisionByZero))
		})

		It("Does not modify its arguments", func() {
			a, b := big.NewInt(13), big.NewInt(4)
			_, err := DivCeil(a, b)
			Expect(err).To(BeNil())
			Expect(a.Int64()).To(Equal(int64(13)))
			Expect(b.Int64()).To(Equal(int64(4)))
		})
	})

	Context("Modular inverse", func() {
		It("Finds the inverse of a unit", func() {
			N := big.NewInt(3120)
			inv, err := ModInverse(big.NewInt(17), N)
			Expect(err).To(BeNil())
			Expect(inv.Int64()).To(Equal(int64(2753)))

			product := new(big.Int).Mul(inv, big.NewInt(17))
			Expect(CongruentModN(product, big.NewInt(1), N)).To(BeTrue())
		})

		It("Fails on a non-unit", func() {
			_, err := ModInverse(big.NewInt(6), big.NewInt(9))
			Expect(err).To(MatchError(ErrNotInvertible))
		})
	})

	It("Detects congruence", func() {
		Expect(CongruentModN(big.NewInt(17), big.NewInt(2), big.NewInt(5))).To(BeTrue())
		Expect(CongruentModN(big.NewInt(17), big.NewInt(3), big.NewInt(5))).To(BeFalse())
		Expect(CongruentModN(big.NewInt(-3), big.NewInt(2), big.NewInt(5))).To(BeTrue())
	})
})
