package mask

import (
	"fmt"
	"regexp/syntax"
)

// maxPatternLength bounds accepted pattern sources.
const maxPatternLength = 512

// checkPatternSafety rejects patterns that could exhibit catastrophic
// backtracking: nested unbounded repetitions such as (a+)+ or (a*)*, and
// patterns over the size bound. The check runs once at rule registration,
// so a bad pattern can never reach Process.
func checkPatternSafety(pattern string) error {
	if len(pattern) > maxPatternLength {
		return fmt.Errorf("%w: pattern exceeds %d bytes", ErrUnsafePattern, maxPatternLength)
	}

	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	if hasNestedRepetition(re, false) {
		return fmt.Errorf("%w: nested unbounded repetition in %q", ErrUnsafePattern, pattern)
	}
	return nil
}

// hasNestedRepetition walks the syntax tree looking for a repetition
// operator inside the subtree of another repetition operator.
func hasNestedRepetition(re *syntax.Regexp, inRepeat bool) bool {
	repeats := false
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		repeats = true
	case syntax.OpRepeat:
		// Unbounded {n,} behaves like a star; large bounded repeats are
		// close enough to count.
		repeats = re.Max < 0 || re.Max > 64
	}

	if repeats && inRepeat {
		return true
	}

	for _, sub := range re.Sub {
		if hasNestedRepetition(sub, inRepeat || repeats) {
			return true
		}
	}
	return false
}
