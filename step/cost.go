package step

import (
	"math"
	"unicode"
)

// CostFunc maps a step identifier to the time units it takes to process,
// not counting the fixed per-step overhead.
type CostFunc func(id string) int

// Ordinal returns the 1-based position of id in the alphabetic identifier
// space: A=1 ... Z=26, AA=27 and so on. Case is ignored. Identifiers that
// are empty, contain anything other than ASCII letters, or whose ordinal
// would exceed math.MaxInt32 have ordinal 0.
func Ordinal(id string) int {
	if id == "" {
		return 0
	}

	n := 0
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return 0
		}
		if n > (math.MaxInt32-26)/26 {
			return 0
		}
		n = n*26 + int(unicode.ToUpper(r)-'A') + 1
	}
	return n
}

// AlphabetCost returns the canonical cost function: the identifier's
// ordinal plus a fixed base.
func AlphabetCost(base int) CostFunc {
	return func(id string) int {
		if Ordinal(id) == 0 {
			return 0
		}
		return Ordinal(id) + base
	}
}
