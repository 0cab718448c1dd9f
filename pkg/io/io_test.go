package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/meta"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
)

func TestJSONRoundTrip(t *testing.T) {
	g, err := dot.Parse(`digraph{A[title="Start"];1[subgraph=12,title=Collect_data];B;A->1;1->B;}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	want := `digraph{A[title="Start"];1[subgraph=12,title="Collect_data"];B;A->1;1->B;}`
	if text := dot.Serialize(got); text != want {
		t.Errorf("round trip = %s, want %s", text, want)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"malformed", `{"nodes": [`, nil},
		{"duplicate node", `{"nodes": [{"id": "A"}, {"id": "A"}], "edges": []}`, dag.ErrDuplicateNodeID},
		{"empty id", `{"nodes": [{"id": ""}], "edges": []}`, dag.ErrInvalidNodeID},
		{"empty endpoint", `{"nodes": [{"id": "A"}], "edges": [{"from": "A"}]}`, dag.ErrInvalidNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadJSON succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("ReadJSON() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLevelsRoundTrip(t *testing.T) {
	levels := transform.Levels{
		0: {"A": {}},
		1: {"1": {"A"}, "2": {"A"}},
		2: {"B": {"1", "2"}},
	}

	var buf bytes.Buffer
	if err := WriteLevels(levels, &buf); err != nil {
		t.Fatalf("WriteLevels: %v", err)
	}
	got, err := ReadLevels(&buf)
	if err != nil {
		t.Fatalf("ReadLevels: %v", err)
	}
	if !reflect.DeepEqual(got, levels) {
		t.Errorf("ReadLevels() = %v, want %v", got, levels)
	}
}

func TestReadLevels(t *testing.T) {
	got, err := ReadLevels(strings.NewReader(`{"0": {"A": null}, "1": {"B": ["A"]}}`))
	if err != nil {
		t.Fatalf("ReadLevels: %v", err)
	}
	want := transform.Levels{0: {"A": {}}, 1: {"B": {"A"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLevels() = %v, want %v", got, want)
	}

	if _, err := ReadLevels(strings.NewReader(`{"first": {"A": []}}`)); err == nil {
		t.Error("ReadLevels accepted a non-integer level")
	}
}

func TestImportLevelsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.json")
	levels := transform.Levels{0: {"A": {}}, 1: {"B": {"A"}}}
	if err := ExportLevels(levels, path); err != nil {
		t.Fatalf("ExportLevels: %v", err)
	}
	got, err := ImportLevels(path)
	if err != nil {
		t.Fatalf("ImportLevels: %v", err)
	}
	if !reflect.DeepEqual(got, levels) {
		t.Errorf("ImportLevels() = %v, want %v", got, levels)
	}

	if _, err := ImportLevels(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportLevels succeeded on a missing file")
	}
}

func TestWriteView(t *testing.T) {
	v := View{
		Levels:   transform.Levels{0: {"A": {}}, 1: {"B": {"A"}}},
		Metadata: map[string]meta.NodeMeta{"A": {}, "B": {Title: "Finish"}},
	}
	var buf bytes.Buffer
	if err := WriteView(v, &buf); err != nil {
		t.Fatalf("WriteView: %v", err)
	}
	for _, want := range []string{`"levels"`, `"metadata"`, `"title": "Finish"`, `"subgraph": 0`, `"A": []`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %s:\n%s", want, buf.String())
		}
	}
}
