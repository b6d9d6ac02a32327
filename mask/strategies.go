package mask

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fallbackMask replaces the output of a CUSTOM function that panicked.
const fallbackMask = "[MASKED]"

// fixedMaskLength is the FULL mask width when length is not preserved.
const fixedMaskLength = 8

// stringLeaf renders a leaf as a string for matching and masking. The second
// result reports whether the leaf really is a string. Leaves that are not
// data (functions, channels, opaque containers) come back as ("", false).
func stringLeaf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v), false
	default:
		return "", false
	}
}

// applyStrategy produces the redacted replacement for a matched leaf.
// v is the original value, s its string rendering.
func (e *Engine) applyStrategy(r *compiledRule, v any, s string, salt []byte) string {
	switch r.Strategy {
	case StrategyPartial:
		return partialMask(s, r.MaskChar)
	case StrategyToken:
		return r.Token
	case StrategyCustom:
		return safeCustom(r.Custom, v)
	case StrategyHash:
		if len(r.Salt) > 0 {
			salt = r.Salt
		}
		return hashMask(s, salt)
	default: // StrategyFull
		return fullMask(s, r.MaskChar, r.PreserveLength)
	}
}

func safeCustom(fn CustomFunc, v any) (out string) {
	defer func() {
		if recover() != nil {
			out = fallbackMask
		}
	}()
	return fn(v)
}

func fullMask(s string, c rune, preserveLength bool) string {
	n := fixedMaskLength
	if preserveLength {
		n = utf8.RuneCountInString(s)
	}
	return strings.Repeat(string(c), n)
}

// hashMask is a salted one-way digest: stable for equal values under the
// same salt, unlinkable across salts. The salt itself is never part of the
// output.
func hashMask(s string, salt []byte) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(s))
	return "sha256:" + hex.EncodeToString(h.Sum(nil)[:12])
}

// partialMask keeps enough of the value to hint at its shape: an email keeps
// its first character and domain, card- and SSN-shaped values keep their
// last four digits, everything else keeps its first and last character.
func partialMask(s string, c rune) string {
	switch {
	case looksLikeEmail(s):
		return maskEmail(s, c)
	case looksLikeSSN(s):
		return maskSSN(s, c)
	case looksLikeCard(s):
		return maskCard(s, c)
	default:
		return maskGeneric(s, c)
	}
}

func looksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at >= 1 && at < len(s)-1 && strings.Contains(s[at:], ".")
}

func maskEmail(s string, c rune) string {
	at := strings.LastIndex(s, "@")
	local := []rune(s[:at])
	var b strings.Builder
	b.WriteRune(local[0])
	for range local[1:] {
		b.WriteRune(c)
	}
	b.WriteString(s[at:])
	return b.String()
}

func looksLikeSSN(s string) bool {
	if len(s) != 11 {
		return false
	}
	for i, r := range s {
		if i == 3 || i == 6 {
			if r != '-' {
				return false
			}
		} else if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func maskSSN(s string, c rune) string {
	m := string(c)
	return strings.Repeat(m, 3) + "-" + strings.Repeat(m, 2) + "-" + s[len(s)-4:]
}

func looksLikeCard(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 12 && digits <= 19
}

func maskCard(s string, c rune) string {
	runes := []rune(s)
	if len(runes) <= 4 {
		return strings.Repeat(string(c), len(runes))
	}
	return strings.Repeat(string(c), len(runes)-4) + string(runes[len(runes)-4:])
}

func maskGeneric(s string, c rune) string {
	runes := []rune(s)
	if len(runes) <= 4 {
		return strings.Repeat(string(c), len(runes))
	}
	return string(runes[0]) + strings.Repeat(string(c), len(runes)-2) + string(runes[len(runes)-1])
}
