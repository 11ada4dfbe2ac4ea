package partitura

import (
	"errors"
	"fmt"
	"sort"

	xml "github.com/subchen/go-xmldom"
)

// ErrNoVoice aborts an export: without a voice assignment on every note,
// voice grouping cannot proceed.
var ErrNoVoice = errors.New("note without voice assignment")

// linearizeMeasureContents determines the document order of everything
// starting in [start, end). Mid-measure divisions changes split the measure
// into segments that are linearized separately, each consistent with a
// single divisions value, and concatenated.
func linearizeMeasureContents(part *Part, start, end int, ctx *exportContext) ([]*xml.Node, error) {
	splits := []int{start}
	for _, d := range part.DivisionsIn(start, end) {
		if d.Start != splits[len(splits)-1] {
			splits = append(splits, d.Start)
		}
	}
	splits = append(splits, end)

	var contents []*xml.Node
	for i := 1; i < len(splits); i++ {
		segment, err := linearizeSegmentContents(part, splits[i-1], splits[i], ctx)
		if err != nil {
			return nil, err
		}
		contents = append(contents, segment...)
	}
	return contents, nil
}

// linearizeSegmentContents orders the events of one segment: notes grouped
// by voice and turned into timed elements, attribute blocks, directions and
// barlines, all reconciled into a single stream by the voice merger.
func linearizeSegmentContents(part *Part, start, end int, ctx *exportContext) ([]*xml.Node, error) {
	notesByVoice, err := groupNotesByVoice(part.NotesIn(start, end))
	if err != nil {
		return nil, err
	}

	voices := make(map[int][]timedElement, len(notesByVoice))
	for _, voice := range sortedKeys(notesByVoice) {
		voiceNotes := notesByVoice[voice]

		// Grace notes precede other notes at the same onset.
		sort.SliceStable(voiceNotes, func(i, j int) bool {
			if voiceNotes[i].Start != voiceNotes[j].Start {
				return voiceNotes[i].Start < voiceNotes[j].Start
			}
			return voiceNotes[i].IsGrace() && !voiceNotes[j].IsGrace()
		})

		events := make([]timedElement, 0, len(voiceNotes))
		for _, n := range voiceNotes {
			dur := 0
			if !n.IsGrace() {
				dur = n.End - n.Start
			}
			events = append(events, timedElement{onset: n.Start, dur: dur, el: ctx.makeNote(n, dur)})
		}
		addChordTags(events)
		voices[voice] = events
	}

	attributes := doAttributes(part, start, end)
	other := append(doDirections(part, start, end), doBarlines(part, start, end)...)

	return mergeMeasureContents(voices, attributes, other, start), nil
}

func groupNotesByVoice(notes []*GenericNote) (map[int][]*GenericNote, error) {
	byVoice := make(map[int][]*GenericNote)
	for _, n := range notes {
		if n.Voice == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoVoice, n)
		}
		byVoice[n.Voice] = append(byVoice[n.Voice], n)
	}
	return byVoice, nil
}

// addChordTags marks every note sharing its onset with the preceding
// non-grace note as a chord member. A grace note never becomes a chord
// member and clears the previous-onset reference, so a grace run neither
// chords against the note that follows nor suppresses a genuine chord tag.
func addChordTags(events []timedElement) {
	prev, havePrev := 0, false
	for _, ev := range events {
		if havePrev && ev.onset == prev {
			prependChild(ev.el, newElement("chord"))
		}
		if hasChild(ev.el, "grace") {
			havePrev = false
		} else {
			prev, havePrev = ev.onset, true
		}
	}
}
