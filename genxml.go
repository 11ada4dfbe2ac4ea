package partitura

import (
	"fmt"
	"io"
	"os"
	"strings"

	xml "github.com/subchen/go-xmldom"
)

const doctype = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`

const measureSepComment = `=======================================================`

// Detached node helpers. Measure contents are built and reordered before
// they have a home in the document, so nodes start without a Document and
// are adopted when the measure is assembled.

func newElement(name string) *xml.Node {
	return &xml.Node{Name: name}
}

func appendChild(parent, child *xml.Node) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

func createText(parent *xml.Node, name, text string) *xml.Node {
	n := newElement(name)
	n.Text = text
	appendChild(parent, n)
	return n
}

func prependChild(parent, child *xml.Node) {
	child.Parent = parent
	parent.Children = append([]*xml.Node{child}, parent.Children...)
}

func hasChild(n *xml.Node, name string) bool {
	for _, c := range n.Children {
		if c.Name == name {
			return true
		}
	}
	return false
}

func adopt(doc *xml.Document, n *xml.Node) {
	n.Document = doc
	for _, c := range n.Children {
		adopt(doc, c)
	}
}

// makeNote builds a complete note element. Child order is fixed:
// grace, pitch/rest, duration, tie stop, tie start, voice, type, dots,
// time-modification, staff, notations. The chord marker, when needed, is
// prepended later by addChordTags.
func (ctx *exportContext) makeNote(n *GenericNote, dur int) *xml.Node {
	noteE := newElement("note")

	if n.ID != "" {
		noteE.SetAttributeValue("id", ctx.noteID(n.ID))
	}

	switch n.Kind {
	case KindNote, KindGrace:
		if n.Kind == KindGrace {
			graceE := newElement("grace")
			if n.GraceType == GraceAcciaccatura {
				graceE.SetAttributeValue("slash", "yes")
			}
			appendChild(noteE, graceE)
		}
		pitchE := newElement("pitch")
		appendChild(noteE, pitchE)
		createText(pitchE, "step", n.Step)
		if n.Alter != nil {
			createText(pitchE, "alter", fmt.Sprint(*n.Alter))
		}
		createText(pitchE, "octave", fmt.Sprint(n.Octave))
	case KindRest:
		appendChild(noteE, newElement("rest"))
	}

	// Grace notes occupy no time and get no duration element.
	if n.Kind != KindGrace {
		createText(noteE, "duration", fmt.Sprint(dur))
	}

	var notations []*xml.Node

	if n.TiePrev != nil {
		appendChild(noteE, newElement("tie").SetAttributeValue("type", "stop"))
		notations = append(notations, newElement("tied").SetAttributeValue("type", "stop"))
	}
	if n.TieNext != nil {
		appendChild(noteE, newElement("tie").SetAttributeValue("type", "start"))
		notations = append(notations, newElement("tied").SetAttributeValue("type", "start"))
	}

	if n.Voice != 0 {
		createText(noteE, "voice", fmt.Sprint(n.Voice))
	}

	if n.Fermata {
		notations = append(notations, newElement("fermata"))
	}

	if n.Duration.Type != "" {
		createText(noteE, "type", n.Duration.Type)
	}
	for i := 0; i < n.Duration.Dots; i++ {
		appendChild(noteE, newElement("dot"))
	}
	if n.Duration.ActualNotes > 0 && n.Duration.NormalNotes > 0 {
		tm := newElement("time-modification")
		appendChild(noteE, tm)
		createText(tm, "actual-notes", fmt.Sprint(n.Duration.ActualNotes))
		createText(tm, "normal-notes", fmt.Sprint(n.Duration.NormalNotes))
	}

	if n.Staff != 0 {
		createText(noteE, "staff", fmt.Sprint(n.Staff))
	}

	for _, s := range n.SlurStops {
		slurE := newElement("slur").SetAttributeValue("type", "stop")
		if num, ok := ctx.closeSlur(s); ok {
			slurE.SetAttributeValue("number", fmt.Sprint(num))
		}
		notations = append(notations, slurE)
	}
	for _, s := range n.SlurStarts {
		num := ctx.openSlur(s)
		slurE := newElement("slur").SetAttributeValue("type", "start")
		slurE.SetAttributeValue("number", fmt.Sprint(num))
		notations = append(notations, slurE)
	}

	if len(notations) > 0 {
		notationsE := newElement("notations")
		appendChild(noteE, notationsE)
		for _, e := range notations {
			appendChild(notationsE, e)
		}
	}

	return noteE
}

// ScoreToXML serializes parts to a MusicXML score-partwise document and
// returns the rendered bytes.
func ScoreToXML(parts []*Part) ([]byte, error) {
	doc := xml.NewDocument("score-partwise")
	doc.Directives = append(doc.Directives, doctype)

	partList := doc.Root.CreateNode("part-list")
	ctx := newExportContext()

	for _, part := range parts {
		sp := partList.CreateNode("score-part").SetAttributeValue("id", part.ID)
		if part.Name != "" {
			pn := sp.CreateNode("part-name")
			pn.Text = part.Name
		}
	}

	for _, part := range parts {
		partE := doc.Root.CreateNode("part").SetAttributeValue("id", part.ID)
		for _, m := range part.MeasuresInOrder() {
			measureE := partE.CreateNode("measure")
			if m.Number != 0 {
				measureE.SetAttributeValue("number", fmt.Sprint(m.Number))
			}
			contents, err := linearizeMeasureContents(part, m.Start, m.End, ctx)
			if err != nil {
				return nil, fmt.Errorf("part %s measure [%d,%d): %w", part.ID, m.Start, m.End, err)
			}
			for _, e := range contents {
				appendChild(measureE, e)
				adopt(doc, e)
			}
		}
	}

	return []byte(insertMeasureComments(doc.XMLPretty())), nil
}

// WriteScore serializes parts to w.
func WriteScore(w io.Writer, parts []*Part) error {
	data, err := ScoreToXML(parts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteScoreFile serializes parts to the named file.
func WriteScoreFile(name string, parts []*Part) error {
	data, err := ScoreToXML(parts)
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}

// insertMeasureComments splices a separator comment before every measure
// element. go-xmldom has no comment node type, so the separators go into
// the rendered text.
func insertMeasureComments(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "<measure") {
			b.WriteString(line[:len(line)-len(trimmed)])
			b.WriteString("<!--" + measureSepComment + "-->\n")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	out := b.String()
	return strings.TrimSuffix(out, "\n")
}
