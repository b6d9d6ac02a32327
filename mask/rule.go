package mask

import (
	"regexp"
	"strings"
)

// Strategy selects how a matched leaf value is redacted.
type Strategy int

const (
	// StrategyFull replaces the whole value with mask characters.
	StrategyFull Strategy = iota
	// StrategyPartial keeps a shape-revealing prefix/suffix and masks the rest.
	StrategyPartial
	// StrategyToken replaces the value with a fixed sentinel token.
	StrategyToken
	// StrategyCustom delegates to the rule's Custom function.
	StrategyCustom
	// StrategyHash replaces the value with a salted one-way digest.
	StrategyHash
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyFull:
		return "full"
	case StrategyPartial:
		return "partial"
	case StrategyToken:
		return "token"
	case StrategyCustom:
		return "custom"
	case StrategyHash:
		return "hash"
	default:
		return "unknown"
	}
}

// CustomFunc transforms a matched value. Its return value is used verbatim.
// A panic inside it is caught by the engine and converted to a fallback
// masked marker.
type CustomFunc func(value any) string

// Rule governs how one family of sensitive leaves is redacted.
//
// Exactly one matcher is consulted, in this order: ValuePattern if set,
// otherwise Name, otherwise Pattern. Name and Pattern match the leaf's
// terminal key; ValuePattern matches the leaf's string value.
type Rule struct {
	// Name matches the terminal key exactly. Case-insensitive unless
	// CaseSensitive is set.
	Name string

	// Pattern matches the terminal key by regular expression.
	Pattern string

	// ValuePattern matches the leaf value by regular expression.
	ValuePattern string

	// Strategy is the redaction strategy. Default: StrategyFull
	Strategy Strategy

	// Priority orders rules; higher wins. Rules with equal priority apply
	// in registration order, earlier first.
	Priority int

	// MaskChar is the replacement character. Default: the engine's mask
	// character.
	MaskChar rune

	// PreserveLength keeps the masked value as long as the original.
	PreserveLength bool

	// Token is the replacement for StrategyToken. Default: the engine's
	// token.
	Token string

	// CaseSensitive disables case-insensitive key matching for this rule.
	CaseSensitive bool

	// Custom is the transformation for StrategyCustom.
	Custom CustomFunc

	// Salt, when set, scopes StrategyHash digests to this rule instead of
	// the per-call random salt.
	Salt []byte
}

// compiledRule is a Rule with its patterns compiled and its registration
// sequence recorded for tie-breaking.
type compiledRule struct {
	Rule
	keyRe   *regexp.Regexp
	valueRe *regexp.Regexp
	seq     int
}

// matches reports whether the rule applies to a leaf with the given terminal
// key and string value.
func (r *compiledRule) matches(key, value string, isString bool) bool {
	switch {
	case r.valueRe != nil:
		return isString && r.valueRe.MatchString(value)
	case r.Name != "":
		if r.CaseSensitive {
			return key == r.Name
		}
		return strings.EqualFold(key, r.Name)
	case r.keyRe != nil:
		return r.keyRe.MatchString(key)
	default:
		return false
	}
}
