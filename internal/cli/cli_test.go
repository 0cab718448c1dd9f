package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/engine"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
	pkgio "github.com/AnastasiaP261/sci-activity-doc/pkg/io"
)

const chainLevels = `{"0":{"A":[]},"1":{"1":["A"]},"2":{"B":["1"]}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func exported(t *testing.T, cfg, id string) string {
	t.Helper()
	return strings.TrimSpace(mustRun(t, cfg, "export", id))
}

func TestNewShowList(t *testing.T) {
	cfg := testConfig(t)

	out := mustRun(t, cfg, "new", "Sample preparation", "--study", "rs-1")
	if !strings.Contains(out, "Created graph 1") {
		t.Errorf("new output = %q", out)
	}

	out = mustRun(t, cfg, "show", "1", "--json")
	var view pkgio.View
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode show output: %v\n%s", err, out)
	}
	if got := view.Levels[1]["B"]; len(got) != 1 || got[0] != "A" {
		t.Errorf("parents of B = %v, want [A]", got)
	}
	if len(view.Metadata) != 2 {
		t.Errorf("metadata = %v, want A and B", view.Metadata)
	}

	out = mustRun(t, cfg, "show", "1")
	for _, want := range []string{"Sample preparation", "rs-1", "Level 0", "Level 1", "2 nodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	mustRun(t, cfg, "new", "Other", "--study", "rs-2")
	out = mustRun(t, cfg, "list", "--study", "rs-1")
	if !strings.Contains(out, "Sample preparation") || strings.Contains(out, "Other") {
		t.Errorf("list --study rs-1 output:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	out := mustRun(t, testConfig(t), "list")
	if !strings.Contains(out, "No graphs stored") {
		t.Errorf("list output = %q", out)
	}
}

func TestNewRequiresStudy(t *testing.T) {
	if _, err := runCLI(t, testConfig(t), "new", "Plan"); err == nil {
		t.Error("new without --study succeeded")
	}
}

func TestRewriteEditDelete(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "new", "Plan", "--study", "rs-1")

	mustRun(t, cfg, "rewrite", "1", writeFile(t, "levels.json", chainLevels))
	if got, want := exported(t, cfg, "1"), "digraph{A;1;A->1;B;1->B;}"; got != want {
		t.Errorf("after rewrite = %q, want %q", got, want)
	}

	out := mustRun(t, cfg, "node", "edit", "1", "1", "--title", "Collect data")
	if !strings.Contains(out, "retitle") {
		t.Errorf("node edit output = %q", out)
	}
	if got, want := exported(t, cfg, "1"), `digraph{A;1[title="Collect_data"];A->1;B;1->B;}`; got != want {
		t.Errorf("after edit = %q, want %q", got, want)
	}

	mustRun(t, cfg, "node", "delete", "1", "1")
	if got := exported(t, cfg, "1"); got != dot.Default {
		t.Errorf("after delete = %q, want %q", got, dot.Default)
	}
}

func TestRewriteRejected(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "new", "Plan", "--study", "rs-1")

	_, err := runCLI(t, cfg, "rewrite", "1", writeFile(t, "levels.json", `{"0":{"A":[]},"1":{"1":["A"]}}`))
	if !apperr.Is(err, apperr.ErrCodeValidation) || !errors.Is(err, dag.ErrMissingTerminal) {
		t.Fatalf("rewrite = %v, want VALIDATION_ERROR", err)
	}
	if got := exported(t, cfg, "1"); got != dot.Default {
		t.Errorf("stored text = %q, want it untouched", got)
	}
}

func TestNodeEditLink(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "new", "Plan", "--study", "rs-1")
	mustRun(t, cfg, "new", "Method", "--study", "rs-1")
	mustRun(t, cfg, "rewrite", "1", writeFile(t, "levels.json", chainLevels))

	out := mustRun(t, cfg, "node", "edit", "1", "1", "--subgraph", "2")
	if !strings.Contains(out, "link") {
		t.Errorf("link output = %q", out)
	}

	// A title change keeps the existing link.
	mustRun(t, cfg, "node", "edit", "1", "1", "--title", "Run method")
	if got, want := exported(t, cfg, "1"), `digraph{A;1[subgraph=2,title="Run_method"];A->1;B;1->B;}`; got != want {
		t.Errorf("after edits = %q, want %q", got, want)
	}

	_, err := runCLI(t, cfg, "node", "edit", "1", "1", "--subgraph", "1")
	if !errors.Is(err, engine.ErrSelfLink) {
		t.Errorf("self link = %v, want %v", err, engine.ErrSelfLink)
	}
	_, err = runCLI(t, cfg, "node", "edit", "1", "1", "--subgraph", "99")
	if !apperr.Is(err, apperr.ErrCodeNotFound) {
		t.Errorf("missing link target = %v, want NOT_FOUND", err)
	}

	out = mustRun(t, cfg, "node", "edit", "1", "1", "--unlink")
	if !strings.Contains(out, "unlink") {
		t.Errorf("unlink output = %q", out)
	}

	_, err = runCLI(t, cfg, "node", "edit", "1", "1", "--unlink", "--subgraph", "2")
	if !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("conflicting flags = %v, want INVALID_INPUT", err)
	}
}

func TestNodeDeleteReserved(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "new", "Plan", "--study", "rs-1")

	_, err := runCLI(t, cfg, "node", "delete", "1", "A")
	if !errors.Is(err, dag.ErrReservedNode) {
		t.Errorf("node delete A = %v, want %v", err, dag.ErrReservedNode)
	}
}

func TestImportExport(t *testing.T) {
	cfg := testConfig(t)

	src := writeFile(t, "sampling.dot", `digraph {
		A; 1 [title="Collect_data"]; B;
		A -> 1 -> B;
	}`)
	out := mustRun(t, cfg, "import", src, "--study", "rs-1")
	if !strings.Contains(out, "Imported graph 1") {
		t.Errorf("import output = %q", out)
	}
	if out := mustRun(t, cfg, "list"); !strings.Contains(out, "sampling") {
		t.Errorf("list output missing file-name title:\n%s", out)
	}

	jsonPath := filepath.Join(t.TempDir(), "graph.json")
	mustRun(t, cfg, "export", "1", "--format", "json", "-o", jsonPath)
	mustRun(t, cfg, "import", jsonPath, "--study", "rs-1", "--title", "Copy")

	mdOut := mustRun(t, cfg, "show", "2", "--json")
	var view pkgio.View
	if err := json.Unmarshal([]byte(mdOut), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Metadata["1"].Title != "Collect data" {
		t.Errorf("title of 1 = %q, want %q", view.Metadata["1"].Title, "Collect data")
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	cfg := testConfig(t)

	_, err := runCLI(t, cfg, "import", writeFile(t, "cycle.dot", `digraph{A;1;B;A->1;1->1;1->B;}`), "--study", "rs-1")
	if !errors.Is(err, dag.ErrCycle) {
		t.Errorf("import = %v, want %v", err, dag.ErrCycle)
	}
	_, err = runCLI(t, cfg, "import", writeFile(t, "bad.dot", `graph{A--B}`), "--study", "rs-1")
	if !apperr.Is(err, apperr.ErrCodeParse) {
		t.Errorf("import = %v, want PARSE_ERROR", err)
	}
}

func TestLevelsOutput(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "new", "Plan", "--study", "rs-1")

	out := mustRun(t, cfg, "levels", "1")
	levels, err := pkgio.ReadLevels(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadLevels: %v\n%s", err, out)
	}
	if len(levels) != 2 {
		t.Errorf("levels = %v, want 2 levels", levels)
	}

	path := filepath.Join(t.TempDir(), "levels.json")
	mustRun(t, cfg, "levels", "1", "-o", path)
	if _, err := pkgio.ImportLevels(path); err != nil {
		t.Errorf("ImportLevels: %v", err)
	}
}

func TestRenameAndRm(t *testing.T) {
	cfg := testConfig(t)
	mustRun(t, cfg, "new", "Plan", "--study", "rs-1")

	mustRun(t, cfg, "rename", "1", "Data analysis")
	if out := mustRun(t, cfg, "list"); !strings.Contains(out, "Data analysis") {
		t.Errorf("list after rename:\n%s", out)
	}

	mustRun(t, cfg, "rm", "1")
	_, err := runCLI(t, cfg, "show", "1")
	if !apperr.Is(err, apperr.ErrCodeNotFound) {
		t.Errorf("show after rm = %v, want NOT_FOUND", err)
	}
}

func TestInvalidGraphID(t *testing.T) {
	for _, arg := range []string{"0", "abc", "1.5"} {
		if _, err := runCLI(t, testConfig(t), "show", arg); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
			t.Errorf("show %s = %v, want INVALID_INPUT", arg, err)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := testConfig(t)
	good := writeFile(t, "good.dot", `digraph{A;1;B;A->1;1->B;}`)
	bad := writeFile(t, "bad.dot", `digraph{A;1;1;2;A->1;3->2;}`)

	out := mustRun(t, cfg, "validate", good, "--graphviz")
	if !strings.Contains(out, iconSuccess+" "+good) {
		t.Errorf("validate output = %q", out)
	}

	out, err := runCLI(t, cfg, "validate", good, bad)
	if !apperr.Is(err, apperr.ErrCodeValidation) {
		t.Fatalf("validate = %v, want VALIDATION_ERROR", err)
	}
	if !strings.Contains(out, iconError+" "+bad) {
		t.Errorf("validate output missing failure for %s:\n%s", bad, out)
	}
	if n := strings.Count(out, "VALIDATION_ERROR"); n != 1 {
		t.Errorf("reported %d violations, want 1:\n%s", n, out)
	}

	out, _ = runCLI(t, cfg, "validate", "--all", bad)
	if n := strings.Count(out, "VALIDATION_ERROR"); n < 3 {
		t.Errorf("--all reported %d violations, want at least 3:\n%s", n, out)
	}
}

func TestValidateMissingFile(t *testing.T) {
	out, err := runCLI(t, testConfig(t), "validate", filepath.Join(t.TempDir(), "missing.dot"))
	if err == nil {
		t.Fatal("validate of missing file succeeded")
	}
	if !strings.Contains(out, "missing.dot") {
		t.Errorf("output = %q", out)
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("boom"), "boom"},
		{"coded", apperr.New(apperr.ErrCodeNotFound, "graph 4"), "graph 4 [NOT_FOUND]"},
		{"coded with cause", apperr.ValidationError(dag.ErrCycle, "node %q", "1"), `node "1": graph contains a cycle [VALIDATION_ERROR]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatError(tt.err); got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}
