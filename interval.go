package bleichenbacher

import (
	"fmt"
	"math/big"
	"strings"
)

// An Interval is a closed range [Lo, Hi] of candidate plaintexts
type Interval struct {
	Lo *big.Int
	Hi *big.Int
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%x, %x]", iv.Lo, iv.Hi)
}

// An IntervalSet is a union of intervals kept sorted by Lo. No two members overlap or touch
type IntervalSet struct {
	ivals []Interval
}

// NewIntervalSet returns a set holding the union of ivals
func NewIntervalSet(ivals ...Interval) *IntervalSet {
	s := &IntervalSet{}
	for _, iv := range ivals {
		s.Insert(iv.Lo, iv.Hi)
	}
	return s
}

// Insert adds [lo, hi] to the set, merging it with every member it overlaps or touches.
// An empty range (lo > hi) is ignored
func (s *IntervalSet) Insert(lo *big.Int, hi *big.Int) {
	if lo.Cmp(hi) > 0 {
		return
	}

	mergedLo := new(big.Int).Set(lo)
	mergedHi := new(big.Int).Set(hi)

	// members strictly below lo-1 stay in front, members strictly above hi+1 stay behind,
	// and anything in between is absorbed
	loMinusOne := new(big.Int).Sub(lo, bigOne)
	hiPlusOne := new(big.Int).Add(hi, bigOne)

	before := make([]Interval, 0, len(s.ivals)+1)
	var after []Interval
	for _, iv := range s.ivals {
		switch {
		case iv.Hi.Cmp(loMinusOne) < 0:
			before = append(before, iv)
		case iv.Lo.Cmp(hiPlusOne) > 0:
			after = append(after, iv)
		default:
			if iv.Lo.Cmp(mergedLo) < 0 {
				mergedLo.Set(iv.Lo)
			}
			if iv.Hi.Cmp(mergedHi) > 0 {
				mergedHi.Set(iv.Hi)
			}
		}
	}

	s.ivals = append(append(before, Interval{Lo: mergedLo, Hi: mergedHi}), after...)
}

// Len returns the number of disjoint intervals in the set
func (s *IntervalSet) Len() int {
	return len(s.ivals)
}

// Intervals returns a copy of the members in ascending order
func (s *IntervalSet) Intervals() []Interval {
	out := make([]Interval, len(s.ivals))
	for i, iv := range s.ivals {
		out[i] = Interval{Lo: new(big.Int).Set(iv.Lo), Hi: new(big.Int).Set(iv.Hi)}
	}
	return out
}

// Contains reports whether x lies in some member of the set
func (s *IntervalSet) Contains(x *big.Int) bool {
	for _, iv := range s.ivals {
		if iv.Lo.Cmp(x) <= 0 && x.Cmp(iv.Hi) <= 0 {
			return true
		}
	}
	return false
}

// Size returns the number of integers covered by the set
func (s *IntervalSet) Size() *big.Int {
	size := new(big.Int)
	width := new(big.Int)
	for _, iv := range s.ivals {
		width.Sub(iv.Hi, iv.Lo)
		size.Add(size, width)
		size.Add(size, bigOne)
	}
	return size
}

// Point returns the single integer in the set, if the set has collapsed to one
func (s *IntervalSet) Point() (*big.Int, bool) {
	if len(s.ivals) != 1 || s.ivals[0].Lo.Cmp(s.ivals[0].Hi) != 0 {
		return nil, false
	}
	return new(big.Int).Set(s.ivals[0].Lo), true
}

func (s *IntervalSet) String() string {
	parts := make([]string, len(s.ivals))
	for i, iv := range s.ivals {
		parts[i] = iv.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
