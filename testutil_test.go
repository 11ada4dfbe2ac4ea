package partitura

import (
	"testing"

	xml "github.com/subchen/go-xmldom"
)

func intp(v int) *int { return &v }

// mkNote builds a quarter-ish pitched note; tests override fields as needed.
func mkNote(id string, start, end, voice int) *GenericNote {
	return &GenericNote{
		Kind:   KindNote,
		ID:     id,
		Start:  start,
		End:    end,
		Step:   "C",
		Octave: 4,
		Voice:  voice,
	}
}

func mkRest(start, end, voice int) *GenericNote {
	return &GenericNote{Kind: KindRest, Start: start, End: end, Voice: voice}
}

func mkGrace(id string, start, voice int, graceType string) *GenericNote {
	return &GenericNote{
		Kind:      KindGrace,
		ID:        id,
		Start:     start,
		End:       start,
		Step:      "D",
		Octave:    5,
		Voice:     voice,
		GraceType: graceType,
	}
}

func childNames(n *xml.Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func nodeNames(nodes []*xml.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func findChild(n *xml.Node, name string) *xml.Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func findChildren(n *xml.Node, name string) []*xml.Node {
	var res []*xml.Node
	for _, c := range n.Children {
		if c.Name == name {
			res = append(res, c)
		}
	}
	return res
}

func wantNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %v, want %v", i, got, want)
		}
	}
}

// countByName counts nodes named name in the whole subtree.
func countByName(n *xml.Node, name string) int {
	count := 0
	if n.Name == name {
		count++
	}
	for _, c := range n.Children {
		count += countByName(c, name)
	}
	return count
}

// linearize runs the full measure pipeline for a part's only measure.
func linearize(t *testing.T, p *Part) []*xml.Node {
	t.Helper()
	if len(p.Measures) != 1 {
		t.Fatalf("linearize helper expects exactly one measure, got %d", len(p.Measures))
	}
	ctx := newExportContext()
	contents, err := linearizeMeasureContents(p, p.Measures[0].Start, p.Measures[0].End, ctx)
	if err != nil {
		t.Fatalf("linearize: %v", err)
	}
	return contents
}
