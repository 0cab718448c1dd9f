package dot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

var (
	// ErrSyntax is wrapped by every PARSE_ERROR returned from Parse.
	ErrSyntax = errors.New("invalid DOT syntax")

	// ErrUnsupported is wrapped when the text is valid DOT but uses a
	// construct the engine does not store (edge attributes, default
	// attribute statements, subgraph blocks, undirected graphs).
	ErrUnsupported = errors.New("unsupported DOT construct")
)

var (
	bareIDRe  = regexp.MustCompile(`^[A-Za-z_\x{80}-\x{10FFFF}][A-Za-z0-9_\x{80}-\x{10FFFF}]*$`)
	numeralRe = regexp.MustCompile(`^-?(\.[0-9]+|[0-9]+(\.[0-9]*)?)$`)
	integerRe = regexp.MustCompile(`^-?[0-9]+$`)
)

// keywords cannot be used as bare identifiers.
var keywords = map[string]bool{
	"node": true, "edge": true, "graph": true,
	"digraph": true, "subgraph": true, "strict": true,
}

// Parse converts a DOT text into a graph.
//
// All whitespace is removed before parsing, so producers that format the
// same graph differently yield the same result. The text must be a single
// digraph with an optional name; its body is a sequence of node statements
// (id or id[k=v,...]) and edge statements (a->b, chains a->b->c allowed)
// separated by semicolons.
//
// Duplicate node declarations and edges to undeclared nodes are kept; they
// are invariant violations for [dag.Graph.Validate], not syntax errors.
//
// Every error is a PARSE_ERROR wrapping ErrSyntax or ErrUnsupported.
func Parse(text string) (*dag.Graph, error) {
	src := StripSpace(text)

	body, err := graphBody(src)
	if err != nil {
		return nil, err
	}

	stmts, err := split(body, ';')
	if err != nil {
		return nil, err
	}

	g := dag.New()
	for _, s := range stmts {
		if s == "" {
			continue
		}
		if err := parseStatement(g, s); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// StripSpace removes every Unicode whitespace character from text.
func StripSpace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

func syntaxErr(format string, args ...any) error {
	return apperr.ParseError(ErrSyntax, format, args...)
}

func unsupported(format string, args ...any) error {
	return apperr.ParseError(ErrUnsupported, format, args...)
}

// graphBody validates the digraph header and returns the text between the
// outer braces.
func graphBody(src string) (string, error) {
	open := strings.IndexByte(src, '{')
	if open < 0 {
		return "", syntaxErr("missing '{'")
	}
	if !strings.HasSuffix(src, "}") {
		return "", syntaxErr("missing closing '}'")
	}

	header := src[:open]
	if hasFoldPrefix(header, "strict") {
		header = header[len("strict"):]
	}
	switch {
	case hasFoldPrefix(header, "digraph"):
		if name := header[len("digraph"):]; name != "" {
			if _, err := parseID(name); err != nil {
				return "", syntaxErr("invalid graph name %q", name)
			}
		}
	case hasFoldPrefix(header, "graph"):
		return "", unsupported("undirected graphs")
	default:
		return "", syntaxErr("expected 'digraph', got %q", src[:open])
	}

	return src[open+1 : len(src)-1], nil
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// split cuts s at every sep outside quoted strings and brackets.
func split(s string, sep byte) ([]string, error) {
	var (
		parts   []string
		start   int
		depth   int
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth < 0 {
				return nil, syntaxErr("unbalanced ']'")
			}
		case c == '{' || c == '}':
			return nil, unsupported("subgraph blocks")
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if inQuote {
		return nil, syntaxErr("unterminated quoted string")
	}
	if depth != 0 {
		return nil, syntaxErr("unbalanced '['")
	}
	return append(parts, s[start:]), nil
}

// indexOutside returns the index of the first occurrence of sub outside
// quoted strings, or -1.
func indexOutside(s, sub string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
			continue
		}
		if c == '"' {
			inQuote = true
			continue
		}
		if strings.HasPrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}

func parseStatement(g *dag.Graph, s string) error {
	if indexOutside(s, "->") >= 0 {
		return parseEdges(g, s)
	}
	if indexOutside(s, "--") >= 0 {
		return unsupported("undirected edge in %q", s)
	}
	return parseNode(g, s)
}

func parseEdges(g *dag.Graph, s string) error {
	var ids []string
	rest := s
	for {
		i := indexOutside(rest, "->")
		if i < 0 {
			ids = append(ids, rest)
			break
		}
		ids = append(ids, rest[:i])
		rest = rest[i+2:]
	}

	if last := ids[len(ids)-1]; indexOutside(last, "[") >= 0 {
		return unsupported("edge attributes in %q", s)
	}

	parsed := make([]string, len(ids))
	for i, raw := range ids {
		id, err := parseID(raw)
		if err != nil {
			return fmt.Errorf("edge %q: %w", s, err)
		}
		parsed[i] = id
	}
	for i := 0; i+1 < len(parsed); i++ {
		if err := g.AddEdge(dag.Edge{From: parsed[i], To: parsed[i+1]}); err != nil {
			return syntaxErr("edge %q: %v", s, err)
		}
	}
	return nil
}

func parseNode(g *dag.Graph, s string) error {
	raw, list := s, ""
	if i := indexOutside(s, "["); i >= 0 {
		raw, list = s[:i], s[i:]
	} else if indexOutside(s, "=") >= 0 {
		return unsupported("graph attribute statement %q", s)
	}

	if keywords[strings.ToLower(raw)] {
		return unsupported("default attribute statement %q", s)
	}

	id, err := parseID(raw)
	if err != nil {
		return fmt.Errorf("node %q: %w", s, err)
	}

	attrs := dag.Attrs{}
	if list != "" {
		if attrs, err = parseAttrs(list); err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}
	}
	return g.DeclareNode(dag.Node{ID: id, Attrs: attrs})
}

// parseAttrs parses a single bracketed attribute list such as
// [subgraph=12,title="Collect_data"]. Pairs may be separated by ',' or ';'.
func parseAttrs(list string) (dag.Attrs, error) {
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return nil, syntaxErr("malformed attribute list %q", list)
	}
	inner := list[1 : len(list)-1]
	if indexOutside(inner, "[") >= 0 {
		return nil, unsupported("multiple attribute lists %q", list)
	}

	attrs := dag.Attrs{}
	commaParts, err := split(inner, ',')
	if err != nil {
		return nil, err
	}
	for _, cp := range commaParts {
		pairs, err := split(cp, ';')
		if err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			if pair == "" {
				continue
			}
			eq := indexOutside(pair, "=")
			if eq < 0 {
				return nil, syntaxErr("attribute %q has no value", pair)
			}
			key, err := parseID(pair[:eq])
			if err != nil {
				return nil, err
			}
			val, err := parseID(pair[eq+1:])
			if err != nil {
				return nil, err
			}
			attrs[key] = val
		}
	}
	return attrs, nil
}

// parseID accepts a bare identifier, a numeral or a double-quoted string and
// returns its value without quotes.
func parseID(raw string) (string, error) {
	if raw == "" {
		return "", syntaxErr("empty identifier")
	}
	if raw[0] == '"' {
		return unquote(raw)
	}
	if strings.HasPrefix(raw, "<") {
		return "", unsupported("HTML string %q", raw)
	}
	if !bareIDRe.MatchString(raw) && !numeralRe.MatchString(raw) {
		return "", syntaxErr("invalid identifier %q", raw)
	}
	return raw, nil
}

func unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[len(raw)-1] != '"' {
		return "", syntaxErr("unterminated quoted string %q", raw)
	}
	var b strings.Builder
	inner := raw[1 : len(raw)-1]
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner) && (inner[i+1] == '"' || inner[i+1] == '\\'):
			b.WriteByte(inner[i+1])
			i++
		case c == '"':
			return "", syntaxErr("unescaped quote in %q", raw)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
