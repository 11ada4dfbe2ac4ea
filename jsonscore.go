package partitura

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// scoreFile is the JSON interchange form of the score model: a minimal
// on-disk representation so the CLI and test fixtures have an input format.
// Cross-references (ties, slurs) are written as note ids and resolved after
// decoding.
type scoreFile struct {
	Parts []*jsonPart `json:"parts"`
}

type jsonPart struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Measures   []*Measure       `json:"measures"`
	Divisions  []*Divisions     `json:"divisions,omitempty"`
	Keys       []*KeySignature  `json:"keys,omitempty"`
	Times      []*TimeSignature `json:"times,omitempty"`
	Clefs      []*Clef          `json:"clefs,omitempty"`
	Directions []*jsonDirection `json:"directions,omitempty"`
	Fermatas   []*Fermata       `json:"fermatas,omitempty"`
	Repeats    []*Repeat        `json:"repeats,omitempty"`
	Endings    []*Ending        `json:"endings,omitempty"`
	Notes      []*jsonNote      `json:"notes,omitempty"`
	Slurs      []*jsonSlur      `json:"slurs,omitempty"`
}

type jsonDirection struct {
	Start   int    `json:"start"`
	End     *int   `json:"end,omitempty"`
	Text    string `json:"text"`
	RawText string `json:"raw_text,omitempty"`
	Staff   int    `json:"staff,omitempty"`
}

type jsonNote struct {
	ID          string `json:"id,omitempty"`
	Kind        string `json:"kind,omitempty"` // "note" (default), "rest", "grace"
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Step        string `json:"step,omitempty"`
	Alter       *int   `json:"alter,omitempty"`
	Octave      int    `json:"octave,omitempty"`
	Voice       int    `json:"voice,omitempty"`
	Staff       int    `json:"staff,omitempty"`
	Type        string `json:"type,omitempty"`
	Dots        int    `json:"dots,omitempty"`
	ActualNotes int    `json:"actual_notes,omitempty"`
	NormalNotes int    `json:"normal_notes,omitempty"`
	GraceType   string `json:"grace_type,omitempty"`
	Fermata     bool   `json:"fermata,omitempty"`
	TieNext     string `json:"tie_next,omitempty"` // id of the tied-to note
}

type jsonSlur struct {
	StartNote string `json:"start_note"`
	EndNote   string `json:"end_note"`
}

// LoadScore decodes a JSON score from r into parts ready for export.
func LoadScore(r io.Reader) ([]*Part, error) {
	var sf scoreFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode score: %w", err)
	}

	parts := make([]*Part, 0, len(sf.Parts))
	for _, jp := range sf.Parts {
		p, err := jp.toPart()
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", jp.ID, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// LoadScoreFile decodes a JSON score from the named file.
func LoadScoreFile(name string) ([]*Part, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadScore(f)
}

func (jp *jsonPart) toPart() (*Part, error) {
	p := NewPart(jp.ID, jp.Name)
	p.Measures = jp.Measures
	p.Divisions = jp.Divisions
	p.Keys = jp.Keys
	p.Times = jp.Times
	p.Clefs = jp.Clefs
	p.Fermatas = jp.Fermatas
	p.Repeats = jp.Repeats
	p.Endings = jp.Endings

	for _, jd := range jp.Directions {
		p.Directions = append(p.Directions, &Direction{
			Start:   jd.Start,
			End:     jd.End,
			Text:    jd.Text,
			RawText: jd.RawText,
			Staff:   jd.Staff,
		})
	}

	byID := make(map[string]*GenericNote)
	for _, jn := range jp.Notes {
		n := &GenericNote{
			ID:     jn.ID,
			Start:  jn.Start,
			End:    jn.End,
			Step:   jn.Step,
			Alter:  jn.Alter,
			Octave: jn.Octave,
			Voice:  jn.Voice,
			Staff:  jn.Staff,
			Duration: SymbolicDuration{
				Type:        jn.Type,
				Dots:        jn.Dots,
				ActualNotes: jn.ActualNotes,
				NormalNotes: jn.NormalNotes,
			},
			GraceType: jn.GraceType,
			Fermata:   jn.Fermata,
		}
		switch jn.Kind {
		case "", "note":
			n.Kind = KindNote
		case "rest":
			n.Kind = KindRest
		case "grace":
			n.Kind = KindGrace
		default:
			return nil, fmt.Errorf("unknown note kind %q", jn.Kind)
		}
		p.Notes = append(p.Notes, n)
		if jn.ID != "" {
			byID[jn.ID] = n
		}
	}

	// Resolve ties after all notes exist; forward references are fine.
	for i, jn := range jp.Notes {
		if jn.TieNext == "" {
			continue
		}
		next, ok := byID[jn.TieNext]
		if !ok {
			return nil, fmt.Errorf("tie_next %q: no such note", jn.TieNext)
		}
		p.Notes[i].TieNext = next
		next.TiePrev = p.Notes[i]
	}

	for _, js := range jp.Slurs {
		startNote, ok := byID[js.StartNote]
		if !ok {
			return nil, fmt.Errorf("slur start_note %q: no such note", js.StartNote)
		}
		endNote, ok := byID[js.EndNote]
		if !ok {
			return nil, fmt.Errorf("slur end_note %q: no such note", js.EndNote)
		}
		s := &Slur{StartNote: startNote, EndNote: endNote}
		startNote.SlurStarts = append(startNote.SlurStarts, s)
		endNote.SlurStops = append(endNote.SlurStops, s)
	}

	return p, nil
}
