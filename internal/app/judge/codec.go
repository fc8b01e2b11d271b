package judge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrFixtureDecode marks a test fixture whose stored text could not be
// decoded. A malformed fixture is a data integrity problem; it surfaces as an
// execution error for that test case instead of being silently defaulted.
var ErrFixtureDecode = errors.New("fixture decode failed")

// Fixtures are authored as readable object-literal text, so bare identifier
// keys are allowed. They are rewritten to quoted-key form before the strict
// JSON parse.
var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)\s*:`)

// quoteBareKeys rewrites bare identifier keys to quoted form. String literals
// pass through untouched, so a value like "hello, world: test" never gets
// mangled by the key rewrite.
func quoteBareKeys(text string) string {
	var b strings.Builder
	start := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				b.WriteString(text[start : i+1])
				start = i + 1
				inString = false
			}
			continue
		}
		if c == '"' {
			b.WriteString(bareKeyRe.ReplaceAllString(text[start:i], `$1"$2":`))
			start = i
			inString = true
		}
	}
	tail := text[start:]
	if inString {
		// Unterminated literal; leave it for the parser to report.
		b.WriteString(tail)
	} else {
		b.WriteString(bareKeyRe.ReplaceAllString(tail, `$1"$2":`))
	}
	return b.String()
}

// DecodeValue decodes loosely formatted fixture text into a structured value.
// Numbers come back as json.Number so their textual fidelity survives the
// round trip into the sandbox.
func DecodeValue(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(quoteBareKeys(text)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFixtureDecode, err)
	}
	// Anything after the first value means the fixture is not one literal.
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after value", ErrFixtureDecode)
	}
	return v, nil
}

// DecodeArgs decodes a fixture input into the positional argument list for the
// entry point. The fixture must be a mapping; its values are taken in the
// mapping's own declaration order, so fixture authors declare keys in
// parameter order. Reordering keys changes call semantics.
func DecodeArgs(text string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(quoteBareKeys(text)))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFixtureDecode, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: input must be an object literal", ErrFixtureDecode)
	}

	var args []any
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return nil, fmt.Errorf("%w: %v", ErrFixtureDecode, err)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFixtureDecode, err)
		}
		valDec := json.NewDecoder(bytes.NewReader(raw))
		valDec.UseNumber()
		var v any
		if err := valDec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFixtureDecode, err)
		}
		args = append(args, v)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, fmt.Errorf("%w: %v", ErrFixtureDecode, err)
	}
	return args, nil
}

// Canonical produces a stable textual form for structural comparison: object
// keys are sorted, and numbers converge to one representation no matter which
// decode path produced them. Two structurally equal objects with different key
// orders canonicalize identically.
func Canonical(v any) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

// Equal reports canonical equality of two decoded values. Type matters:
// the string "5" and the number 5 are not equal.
func Equal(a, b any) bool {
	return Canonical(a) == Canonical(b)
}

func writeCanonical(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		b.WriteString(strconv.Quote(val))
	case json.Number:
		b.WriteString(canonicalNumber(val))
	case int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))
	case float64:
		b.WriteString(canonicalFloat(val))
	case []any:
		b.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, elem)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeCanonical(b, val[k])
		}
		b.WriteByte('}')
	default:
		// Last resort for values the sandbox exported as something exotic.
		fmt.Fprintf(b, "%v", val)
	}
}

func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return canonicalFloat(f)
	}
	return n.String()
}

func canonicalFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
