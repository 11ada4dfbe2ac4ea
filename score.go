// Score model: parts, measures and timed objects anchored on an integer
// tick timeline. The export engine only reads this model; construction and
// cross-referencing (ties, slurs) happen before export.
package partitura

import (
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"
)

// NoteKind discriminates the closed set of note variants.
type NoteKind int

const (
	KindNote NoteKind = iota
	KindRest
	KindGrace
)

// Grace note renderings. Acciaccatura gets a slashed flag.
const (
	GraceAcciaccatura = "acciaccatura"
	GraceAppoggiatura = "appoggiatura"
)

// SymbolicDuration describes the notated duration of a note independently
// of its tick length: type name ("quarter", "eighth", ...), dot count and
// an optional tuplet ratio. ActualNotes/NormalNotes are unset when zero.
type SymbolicDuration struct {
	Type        string
	Dots        int
	ActualNotes int
	NormalNotes int
}

// GenericNote is the shared envelope for notes, rests and grace notes.
// Pitch fields are meaningful for KindNote and KindGrace only; GraceType
// for KindGrace only. Voice 0 means "no voice", which is a fatal condition
// at export time. Tie and slur fields are cross-references into the same
// part, never owned.
type GenericNote struct {
	Kind  NoteKind
	ID    string
	Start int
	End   int

	Step   string
	Alter  *int
	Octave int

	Voice int
	Staff int

	Duration  SymbolicDuration
	GraceType string

	TiePrev *GenericNote
	TieNext *GenericNote

	SlurStarts []*Slur
	SlurStops  []*Slur

	Fermata bool
}

// IsGrace reports whether the note occupies no performed time.
func (n *GenericNote) IsGrace() bool { return n.Kind == KindGrace }

func (n *GenericNote) String() string {
	switch n.Kind {
	case KindRest:
		return fmt.Sprintf("Rest(%d-%d v%d)", n.Start, n.End, n.Voice)
	case KindGrace:
		return fmt.Sprintf("Grace(%s%d @%d v%d)", n.Step, n.Octave, n.Start, n.Voice)
	default:
		return fmt.Sprintf("Note(%s%d %d-%d v%d)", n.Step, n.Octave, n.Start, n.End, n.Voice)
	}
}

// Slur is a phrasing span between two notes. Identity (the pointer) is what
// the export numbering table is keyed on.
type Slur struct {
	StartNote *GenericNote
	EndNote   *GenericNote
}

// Direction is a textual or dynamic performance direction. End is nil for
// a point-like direction; a non-nil End produces a dashed span. Staff 0
// means no staff assignment.
type Direction struct {
	Start   int
	End     *int
	Text    string
	RawText string
	Staff   int
}

// DisplayText returns the text to export, preferring the raw form.
func (d *Direction) DisplayText() string {
	if d.RawText != "" {
		return d.RawText
	}
	return d.Text
}

// Divisions sets the number of ticks per quarter note from Start onward,
// until superseded by a later change.
type Divisions struct {
	Start int
	Divs  int
}

// KeySignature change. Mode is empty when unspecified.
type KeySignature struct {
	Start  int
	Fifths int
	Mode   string
}

// TimeSignature change.
type TimeSignature struct {
	Start    int
	Beats    int
	BeatType int
}

// Clef change. Number is the staff number (0 when unset), OctaveChange the
// transposition in octaves (0 when unset).
type Clef struct {
	Start        int
	Number       int
	Sign         string
	Line         int
	OctaveChange int
}

// Fermata is anchored at a single point. Ref disambiguates a fermata that
// sits on a boundary shared by two measures: "", "left", "middle" or
// "right".
type Fermata struct {
	Start int
	Ref   string
}

// Repeat marks a repeated passage. Start and End are each optional: a
// repeat with only Start produces a forward repeat sign, one with only End
// a backward repeat sign.
type Repeat struct {
	Start *int
	End   *int
}

// Ending is a numbered volta bracket with optional open and close points.
type Ending struct {
	Number int
	Start  *int
	End    *int
}

// Measure is a contiguous [Start, End) time range. Number 0 means the
// measure carries no number attribute. Measures of a part must tile its
// timeline without gaps or overlaps.
type Measure struct {
	Number int
	Start  int
	End    int
}

// Part owns all timed objects of one instrument/staff group. Slices are in
// insertion order; range queries make no ordering promise, callers sort.
type Part struct {
	ID   string
	Name string

	Measures   []*Measure
	Notes      []*GenericNote
	Directions []*Direction
	Divisions  []*Divisions
	Keys       []*KeySignature
	Times      []*TimeSignature
	Clefs      []*Clef
	Fermatas   []*Fermata
	Repeats    []*Repeat
	Endings    []*Ending
}

// NewPart returns an empty part.
func NewPart(id, name string) *Part {
	return &Part{ID: id, Name: name}
}

// MeasuresInOrder returns the part's measures sorted by start time.
func (p *Part) MeasuresInOrder() []*Measure {
	ms := make([]*Measure, len(p.Measures))
	copy(ms, p.Measures)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Start < ms[j].Start })
	return ms
}

// NotesIn returns all notes (any kind) whose start lies in [start, end).
func (p *Part) NotesIn(start, end int) []*GenericNote {
	var res []*GenericNote
	for _, n := range p.Notes {
		if n.Start >= start && n.Start < end {
			res = append(res, n)
		}
	}
	return res
}

// DirectionsIn returns directions starting in [start, end).
func (p *Part) DirectionsIn(start, end int) []*Direction {
	var res []*Direction
	for _, d := range p.Directions {
		if d.Start >= start && d.Start < end {
			res = append(res, d)
		}
	}
	return res
}

// DivisionsIn returns divisions changes starting in [start, end), in
// ascending start order.
func (p *Part) DivisionsIn(start, end int) []*Divisions {
	var res []*Divisions
	for _, d := range p.Divisions {
		if d.Start >= start && d.Start < end {
			res = append(res, d)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Start < res[j].Start })
	return res
}

// DivisionsAt returns the divisions value in effect at tick t, or def when
// no change has happened yet.
func (p *Part) DivisionsAt(t, def int) int {
	divs := def
	best := -1
	for _, d := range p.Divisions {
		if d.Start <= t && d.Start > best {
			best = d.Start
			divs = d.Divs
		}
	}
	return divs
}

// KeysIn returns key signature changes starting in [start, end).
func (p *Part) KeysIn(start, end int) []*KeySignature {
	var res []*KeySignature
	for _, k := range p.Keys {
		if k.Start >= start && k.Start < end {
			res = append(res, k)
		}
	}
	return res
}

// TimesIn returns time signature changes starting in [start, end).
func (p *Part) TimesIn(start, end int) []*TimeSignature {
	var res []*TimeSignature
	for _, t := range p.Times {
		if t.Start >= start && t.Start < end {
			res = append(res, t)
		}
	}
	return res
}

// ClefsIn returns clef changes starting in [start, end).
func (p *Part) ClefsIn(start, end int) []*Clef {
	var res []*Clef
	for _, c := range p.Clefs {
		if c.Start >= start && c.Start < end {
			res = append(res, c)
		}
	}
	return res
}

// FermatasIn returns fermatas anchored in [start, end).
func (p *Part) FermatasIn(start, end int) []*Fermata {
	var res []*Fermata
	for _, f := range p.Fermatas {
		if f.Start >= start && f.Start < end {
			res = append(res, f)
		}
	}
	return res
}

// RepeatsStartingIn returns repeats whose open point lies in [start, end).
func (p *Part) RepeatsStartingIn(start, end int) []*Repeat {
	var res []*Repeat
	for _, r := range p.Repeats {
		if r.Start != nil && *r.Start >= start && *r.Start < end {
			res = append(res, r)
		}
	}
	return res
}

// RepeatsEndingIn returns repeats whose close point lies in (start, end].
// The shifted bounds capture closes sitting exactly on the segment end.
func (p *Part) RepeatsEndingIn(start, end int) []*Repeat {
	var res []*Repeat
	for _, r := range p.Repeats {
		if r.End != nil && *r.End > start && *r.End <= end {
			res = append(res, r)
		}
	}
	return res
}

// EndingsStartingIn returns volta brackets opening in [start, end).
func (p *Part) EndingsStartingIn(start, end int) []*Ending {
	var res []*Ending
	for _, e := range p.Endings {
		if e.Start != nil && *e.Start >= start && *e.Start < end {
			res = append(res, e)
		}
	}
	return res
}

// EndingsEndingIn returns volta brackets closing in (start, end].
func (p *Part) EndingsEndingIn(start, end int) []*Ending {
	var res []*Ending
	for _, e := range p.Endings {
		if e.End != nil && *e.End > start && *e.End <= end {
			res = append(res, e)
		}
	}
	return res
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
