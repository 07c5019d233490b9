package selector

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSignature is returned when a signature can't be parsed.
var ErrMalformedSignature = errors.New("malformed signature")

// dropped holds the keywords that have no bearing on the selector. They
// describe where a value lives or how an event indexes it.
var dropped = map[string]bool{
	"memory":   true,
	"calldata": true,
	"storage":  true,
	"indexed":  true,
	"payable":  true,
}

// aliases maps shorthand types to the names used in canonical signatures.
var aliases = map[string]string{
	"uint": "uint256",
	"int":  "int256",
}

// Canonicalize reduces a signature or function declaration to the form used
// for hashing: name(type,type,...). Parameter names, location keywords and
// whitespace are removed. A leading "function" keyword and anything after
// the parameter list, such as visibility or returns clauses, is ignored.
// Canonicalizing a canonical signature returns it unchanged.
func Canonicalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "function"); ok && rest != "" && isSpace(rest[0]) {
		s = strings.TrimSpace(rest)
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", malformed(raw, "missing parameter list")
	}

	name := strings.TrimSpace(s[:open])
	if name == "" {
		return "", malformed(raw, "empty name")
	}
	if !isIdentifier(name) {
		return "", malformed(raw, "invalid name %q", name)
	}

	end := matchParen(s, open)
	if end < 0 {
		return "", malformed(raw, "unbalanced parentheses")
	}
	if !balanced(s[end+1:]) {
		return "", malformed(raw, "unbalanced parentheses")
	}

	types, err := canonicalList(s[open+1 : end])
	if err != nil {
		return "", malformed(raw, "%s", err)
	}

	return name + "(" + types + ")", nil
}

// =============================================================================

// canonicalList canonicalizes a comma separated parameter list. Commas
// nested inside tuple types don't split the list.
func canonicalList(list string) (string, error) {
	if strings.TrimSpace(list) == "" {
		return "", nil
	}

	params, err := splitTopLevel(list)
	if err != nil {
		return "", err
	}

	types := make([]string, len(params))
	for i, param := range params {
		typ, err := canonicalParam(param)
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", i, err)
		}
		types[i] = typ
	}

	return strings.Join(types, ","), nil
}

// canonicalParam reduces a single parameter declaration to its type.
func canonicalParam(param string) (string, error) {
	p := normalize(param)
	if p == "" {
		return "", errors.New("empty parameter")
	}

	if rest, ok := strings.CutPrefix(p, "tuple"); ok && strings.HasPrefix(strings.TrimSpace(rest), "(") {
		p = strings.TrimSpace(rest)
	}

	if p[0] == '(' {
		return canonicalTuple(p)
	}

	tokens := keep(strings.Fields(p))
	if len(tokens) == 0 {
		return "", fmt.Errorf("no type in %q", p)
	}
	if len(tokens) > 2 {
		return "", fmt.Errorf("unexpected tokens in %q", p)
	}
	if len(tokens) == 2 && !isIdentifier(tokens[1]) {
		return "", fmt.Errorf("invalid parameter name %q", tokens[1])
	}

	return canonicalType(tokens[0])
}

// canonicalTuple handles a parameter whose type is a parenthesised tuple,
// optionally followed by array dimensions and a name.
func canonicalTuple(p string) (string, error) {
	end := matchParen(p, 0)
	if end < 0 {
		return "", errors.New("unbalanced parentheses")
	}

	inner, err := canonicalList(p[1:end])
	if err != nil {
		return "", err
	}

	rest := p[end+1:]
	var dims strings.Builder
	for strings.HasPrefix(rest, "[") {
		rb := strings.IndexByte(rest, ']')
		if rb < 0 {
			return "", errors.New("unterminated array dimension")
		}
		dim := rest[:rb+1]
		if !isDimension(dim) {
			return "", fmt.Errorf("invalid array dimension %q", dim)
		}
		dims.WriteString(dim)
		rest = rest[rb+1:]
	}

	tokens := keep(strings.Fields(rest))
	if len(tokens) > 1 || (len(tokens) == 1 && !isIdentifier(tokens[0])) {
		return "", fmt.Errorf("unexpected tokens after tuple in %q", p)
	}

	return "(" + inner + ")" + dims.String(), nil
}

// canonicalType validates an elementary type with optional array dimensions
// and expands integer aliases.
func canonicalType(typ string) (string, error) {
	base, dims, _ := strings.Cut(typ, "[")
	if dims != "" {
		dims = "[" + dims
	}

	if !isIdentifier(base) {
		return "", fmt.Errorf("invalid type %q", typ)
	}

	for rest := dims; rest != ""; {
		rb := strings.IndexByte(rest, ']')
		if rb < 0 || !isDimension(rest[:rb+1]) {
			return "", fmt.Errorf("invalid array dimension in %q", typ)
		}
		rest = rest[rb+1:]
	}

	if alias, exists := aliases[base]; exists {
		base = alias
	}

	return base + dims, nil
}

// =============================================================================

// normalize collapses whitespace and removes it around brackets, commas and
// parentheses so a type is always a single token.
func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' && (strings.IndexByte("([,", s[i-1]) >= 0 || strings.IndexByte("()[],", s[i+1]) >= 0) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// keep filters out the keywords that don't contribute to the selector.
func keep(tokens []string) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		if !dropped[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// splitTopLevel splits on commas that are not nested in parentheses.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	var depth, start int

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, errors.New("unbalanced parentheses")
	}

	return append(parts, s[start:]), nil
}

// matchParen returns the index of the parenthesis closing the one at open,
// or -1 if there is none.
func matchParen(s string, open int) int {
	var depth int
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// balanced reports whether every parenthesis in s is matched.
func balanced(s string) bool {
	var depth int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// isDimension reports whether s is an array dimension like [] or [4].
func isDimension(s string) bool {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return false
	}

	for i := 1; i < len(s)-1; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func malformed(raw string, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrMalformedSignature, raw, fmt.Sprintf(format, args...))
}
