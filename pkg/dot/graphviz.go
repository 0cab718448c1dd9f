package dot

import (
	"fmt"

	"github.com/goccy/go-graphviz"

	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

// CheckGraphviz reports whether text is accepted by the Graphviz parser.
// Serialized graphs are exported to external DOT tooling, so the canonical
// form has to stay within what Graphviz itself reads.
func CheckGraphviz(text string) error {
	g, err := graphviz.ParseBytes([]byte(text))
	if err != nil {
		return apperr.ParseError(ErrSyntax, "graphviz rejected text: %v", err)
	}
	if err := g.Close(); err != nil {
		return fmt.Errorf("close graphviz graph: %w", err)
	}
	return nil
}
