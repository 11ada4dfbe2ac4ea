package partitura

import (
	"testing"
)

func TestForwardBackupIfNeeded(t *testing.T) {
	els, cost := forwardBackupIfNeeded(10, 4)
	if cost != 6 || len(els) != 1 {
		t.Fatalf("forward: cost=%d els=%d", cost, len(els))
	}
	if els[0].el.Name != "forward" || findChild(els[0].el, "duration").Text != "6" {
		t.Errorf("forward element wrong: %s", els[0].el.Name)
	}
	if els[0].onset != 4 || els[0].dur != 6 {
		t.Errorf("forward anchoring: onset=%d dur=%d", els[0].onset, els[0].dur)
	}

	els, cost = forwardBackupIfNeeded(4, 10)
	if cost != 6 || len(els) != 1 {
		t.Fatalf("backup: cost=%d els=%d", cost, len(els))
	}
	if els[0].el.Name != "backup" || findChild(els[0].el, "duration").Text != "6" {
		t.Errorf("backup element wrong")
	}
	if els[0].dur != -6 {
		t.Errorf("backup dur: got %d, want -6", els[0].dur)
	}

	els, cost = forwardBackupIfNeeded(7, 7)
	if cost != 0 || len(els) != 0 {
		t.Errorf("no jump expected: cost=%d els=%d", cost, len(els))
	}
}

func TestSingleVoiceExactFillNoJumps(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Number: 1, Start: 0, End: 8}}
	p.Notes = []*GenericNote{
		mkNote("n1", 0, 2, 1),
		mkNote("n2", 2, 4, 1),
		mkNote("n3", 4, 8, 1),
	}

	contents := linearize(t, p)
	wantNames(t, nodeNames(contents), []string{"note", "note", "note"})
	for _, n := range contents {
		if countByName(n, "forward")+countByName(n, "backup") != 0 {
			t.Errorf("unexpected jump marker in %s", n.XML())
		}
	}
}

func TestChordDetectionAndCursor(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 4}}
	p.Notes = []*GenericNote{
		mkNote("a", 0, 2, 1),
		mkNote("b", 0, 2, 1),
		mkNote("c", 2, 4, 1),
	}

	contents := linearize(t, p)
	// The cursor advances once for the chord pair, so the following note
	// needs no jump.
	wantNames(t, nodeNames(contents), []string{"note", "note", "note"})
	if hasChild(contents[0], "chord") {
		t.Errorf("first chord member must not carry a chord tag")
	}
	if !hasChild(contents[1], "chord") {
		t.Errorf("second chord member must carry a chord tag")
	}
	if contents[1].Children[0].Name != "chord" {
		t.Errorf("chord must be the first child, got %v", childNames(contents[1]))
	}
	if hasChild(contents[2], "chord") {
		t.Errorf("note at a new onset must not be chorded")
	}
}

func TestCheapestVoiceHostsDirections(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 4}}
	p.Notes = []*GenericNote{
		mkNote("v1", 0, 4, 1), // hosting here would cost a backup of 2
		mkNote("v2", 0, 2, 2), // hosting here is free: the note ends at tick 2
	}
	p.Directions = []*Direction{{Start: 2, Text: "dolce"}}

	contents := linearize(t, p)
	// Voice 1 is emitted bare, then one backup repositions to voice 2,
	// whose merged stream hosts the direction jump-free.
	wantNames(t, nodeNames(contents), []string{"note", "backup", "note", "direction"})
	if d := findChild(contents[1], "duration"); d == nil || d.Text != "4" {
		t.Errorf("voice switch backup should have duration 4")
	}
}

func TestEqualCostTieBreakPicksLowestVoice(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 4}}
	p.Notes = []*GenericNote{
		mkNote("v1", 0, 2, 1),
		mkNote("v2", 0, 2, 2),
	}
	p.Directions = []*Direction{{Start: 2, Text: "dolce"}}

	contents := linearize(t, p)
	// Costs are equal (zero either way: both notes end where the direction
	// starts); voice 1 wins the tie and hosts the direction ahead of the
	// voice-switch backup.
	wantNames(t, nodeNames(contents), []string{"note", "direction", "backup", "note"})
}

func TestFirstVoiceGapFilledWithForward(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 8}}
	p.Notes = []*GenericNote{
		mkNote("a", 0, 2, 1),
		mkNote("b", 4, 6, 1),
		mkNote("c", 0, 6, 2),
	}
	p.Directions = []*Direction{{Start: 6, Text: "dolce"}}

	contents := linearize(t, p)
	// Voice 2 hosts the direction (cost zero), so voice 1 is emitted through
	// the attributes interleave, which fills its internal gap with a forward.
	// The voice-switch backup then rewinds from tick 6, not tick 4.
	wantNames(t, nodeNames(contents),
		[]string{"note", "forward", "note", "backup", "note", "direction"})
	if d := findChild(contents[1], "duration"); d == nil || d.Text != "2" {
		t.Errorf("gap forward should have duration 2")
	}
	if d := findChild(contents[3], "duration"); d == nil || d.Text != "6" {
		t.Errorf("voice switch backup should have duration 6")
	}
}

func TestGappedWinnerVoiceKeepsForward(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 8}}
	p.Notes = []*GenericNote{
		mkNote("a", 0, 2, 1),
		mkNote("b", 4, 6, 1),
		mkNote("c", 0, 6, 2),
	}
	p.Directions = []*Direction{{Start: 2, Text: "dolce"}}

	contents := linearize(t, p)
	// Voice 1 hosts the direction (a forward of 2 beats voice 2's backup of
	// 4). Its merged stream already carries the gap forward, and the
	// attributes interleave leaves it unchanged.
	wantNames(t, nodeNames(contents),
		[]string{"note", "direction", "forward", "note", "backup", "note"})
}

func TestAttributesAlwaysInFirstVoice(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 4}}
	p.Divisions = []*Divisions{{Start: 0, Divs: 12}}
	p.Notes = []*GenericNote{
		mkNote("v1", 0, 4, 1),
		mkNote("v2", 0, 2, 2),
	}
	p.Directions = []*Direction{{Start: 2, Text: "dolce"}}

	contents := linearize(t, p)
	// Voice 2 hosts the direction, but the attributes block still lands in
	// voice 1, ahead of its note at the same onset.
	wantNames(t, nodeNames(contents),
		[]string{"attributes", "note", "backup", "note", "direction"})
}

func TestEmptyMeasureZeroCostBaseCase(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 8}}
	p.Divisions = []*Divisions{{Start: 0, Divs: 12}}
	p.Times = []*TimeSignature{{Start: 0, Beats: 4, BeatType: 4}}
	p.Fermatas = []*Fermata{{Start: 0}}

	contents := linearize(t, p)
	// Barlines sort before attribute blocks at the same onset; no notes
	// means no jump markers at all.
	wantNames(t, nodeNames(contents), []string{"barline", "attributes"})
	for _, n := range contents {
		if countByName(n, "forward")+countByName(n, "backup") != 0 {
			t.Errorf("empty measure must not produce jumps")
		}
	}
}

func TestIntraTickPriorityOrder(t *testing.T) {
	p := NewPart("P1", "")
	p.Measures = []*Measure{{Start: 0, End: 4}}
	p.Divisions = []*Divisions{{Start: 0, Divs: 12}}
	p.Notes = []*GenericNote{mkNote("n1", 0, 4, 1)}
	p.Fermatas = []*Fermata{{Start: 0}}

	contents := linearize(t, p)
	// At one tick: barline first, then the attributes block, then notes.
	wantNames(t, nodeNames(contents), []string{"barline", "attributes", "note"})
}
