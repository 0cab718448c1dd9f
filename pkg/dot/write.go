package dot

import (
	"strings"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
)

// Default is the text of a freshly created graph: start, finish and the
// edge between them.
const Default = "digraph{A;B;A->B;}"

// Serialize renders g in the canonical compact form, for example
//
//	digraph{A;1[subgraph=12,title="Collect_data"];B;A->1;1->B;}
//
// Statements are written in insertion order, each terminated by ';'.
// Attribute keys are sorted. Integer values are written bare and every
// other value is quoted. Identifiers are quoted only when they are not
// valid bare DOT identifiers.
//
// Parse(Serialize(g)) reproduces g's statements exactly.
func Serialize(g *dag.Graph) string {
	var b strings.Builder
	b.WriteString("digraph{")
	for _, s := range g.Statements() {
		if s.Edge != nil {
			b.WriteString(formatID(s.Edge.From))
			b.WriteString("->")
			b.WriteString(formatID(s.Edge.To))
			b.WriteByte(';')
			continue
		}
		b.WriteString(formatID(s.Node.ID))
		if len(s.Node.Attrs) > 0 {
			b.WriteByte('[')
			for i, k := range s.Node.Attrs.Keys() {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(formatID(k))
				b.WriteByte('=')
				b.WriteString(formatValue(s.Node.Attrs[k]))
			}
			b.WriteByte(']')
		}
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String()
}

func formatID(id string) string {
	if (bareIDRe.MatchString(id) && !keywords[strings.ToLower(id)]) || numeralRe.MatchString(id) {
		return id
	}
	return quote(id)
}

func formatValue(v string) string {
	if integerRe.MatchString(v) {
		return v
	}
	return quote(v)
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote wraps s in double quotes, escaping backslashes and quotes so a
// value ending in a backslash cannot swallow the closing quote.
func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
