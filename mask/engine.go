package mask

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// DefaultToken is the sentinel used by TOKEN rules unless overridden.
const DefaultToken = "[REDACTED]"

// DefaultMaskChar is the replacement character unless overridden.
const DefaultMaskChar = '*'

// Config configures an Engine.
type Config struct {
	// MaskChar is the engine-wide replacement character.
	// Default: '*'
	MaskChar rune

	// Token is the engine-wide TOKEN sentinel.
	// Default: "[REDACTED]"
	Token string

	// DisableDefaults skips installation of the built-in sensitive-field
	// rules (password/secret/token family, email, card- and SSN-shaped
	// values).
	DisableDefaults bool

	// OnError receives internal diagnostics from Process. Process itself
	// never fails; this is the only place its failures become visible.
	OnError func(err error)
}

// Engine redacts sensitive leaves according to its rule list.
//
// Contract:
// - Concurrency: Process is safe for concurrent use; AddRule may run
//   concurrently with Process but normally happens at startup.
// - Errors: Process never panics and never returns an error.
type Engine struct {
	maskChar rune
	token    string
	onError  func(error)

	mu    sync.RWMutex
	rules []*compiledRule
	cache map[string]*regexp.Regexp
	seq   int
}

// New creates an Engine with the built-in rule set unless disabled.
func New(cfg Config) (*Engine, error) {
	if cfg.MaskChar == 0 {
		cfg.MaskChar = DefaultMaskChar
	}
	if cfg.Token == "" {
		cfg.Token = DefaultToken
	}
	if cfg.OnError == nil {
		cfg.OnError = func(error) {}
	}

	e := &Engine{
		maskChar: cfg.MaskChar,
		token:    cfg.Token,
		onError:  cfg.OnError,
		cache:    make(map[string]*regexp.Regexp),
	}

	if !cfg.DisableDefaults {
		for _, r := range defaultRules() {
			if err := e.AddRule(r); err != nil {
				return nil, fmt.Errorf("mask: installing default rule: %w", err)
			}
		}
	}
	return e, nil
}

// AddRule validates, compiles, and inserts a rule. Pattern compilation is
// cached by source, so no pattern is compiled twice across rules. The rule
// list stays ordered by priority, registration order breaking ties.
func (e *Engine) AddRule(r Rule) error {
	if r.Name == "" && r.Pattern == "" && r.ValuePattern == "" {
		return ErrNoMatcher
	}
	if r.Strategy < StrategyFull || r.Strategy > StrategyHash {
		return fmt.Errorf("%w: %d", ErrUnknownStrategy, int(r.Strategy))
	}
	if r.Strategy == StrategyCustom && r.Custom == nil {
		return ErrMissingCustomFunc
	}
	if r.MaskChar == 0 {
		r.MaskChar = e.maskChar
	}
	if r.Token == "" {
		r.Token = e.token
	}

	cr := &compiledRule{Rule: r}

	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if r.Pattern != "" {
		cr.keyRe, err = e.compileLocked(r.Pattern, !r.CaseSensitive)
		if err != nil {
			return err
		}
	}
	if r.ValuePattern != "" {
		cr.valueRe, err = e.compileLocked(r.ValuePattern, false)
		if err != nil {
			return err
		}
	}

	cr.seq = e.seq
	e.seq++

	// Process iterates its snapshot of the rule list unlocked, so the
	// list is never mutated in place: sort a copy, then swap it in.
	next := make([]*compiledRule, len(e.rules), len(e.rules)+1)
	copy(next, e.rules)
	next = append(next, cr)
	sort.SliceStable(next, func(i, j int) bool {
		if next[i].Priority != next[j].Priority {
			return next[i].Priority > next[j].Priority
		}
		return next[i].seq < next[j].seq
	})
	e.rules = next
	return nil
}

// compileLocked checks pattern safety and returns the cached compilation.
func (e *Engine) compileLocked(pattern string, foldCase bool) (*regexp.Regexp, error) {
	source := pattern
	if foldCase {
		source = "(?i)" + pattern
	}
	if re, ok := e.cache[source]; ok {
		return re, nil
	}

	if err := checkPatternSafety(pattern); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	e.cache[source] = re
	return re, nil
}

// Rules returns the number of registered rules.
func (e *Engine) Rules() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Process returns a structurally identical copy of data with sensitive
// leaves redacted. Leaves whose terminal key and value match no rule come
// back untouched. On any internal failure the original data is returned
// unchanged and the failure is reported through OnError.
func (e *Engine) Process(data any) (result any) {
	result = data
	defer func() {
		if r := recover(); r != nil {
			e.onError(fmt.Errorf("mask: process recovered: %v", r))
			result = data
		}
	}()

	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	pairs := flatten(data)
	if len(pairs) == 0 {
		return data
	}

	salt := newCallSalt()
	changed := false
	for i := range pairs {
		if e.applyRules(rules, &pairs[i], salt) {
			changed = true
		}
	}
	if !changed {
		return data
	}
	return rebuild(pairs)
}

// applyRules applies the first matching rule to the pair's value, returning
// whether the value changed.
func (e *Engine) applyRules(rules []*compiledRule, p *pair, salt []byte) bool {
	if p.kind != kindLeaf || p.value == nil {
		return false
	}
	s, isString := stringLeaf(p.value)
	if !isString && s == "" {
		// Non-data leaf (func, chan, opaque map): pass through.
		return false
	}

	for _, r := range rules {
		if !r.matches(p.key, s, isString) {
			continue
		}
		p.value = e.applyStrategy(r, p.value, s, salt)
		return true
	}
	return false
}

// newCallSalt produces the per-call HASH salt: digests are stable within
// one Process call but do not correlate across calls.
func newCallSalt() []byte {
	salt := make([]byte, 16)
	_, _ = rand.Read(salt)
	return salt
}
