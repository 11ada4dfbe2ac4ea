package partitura

import (
	"fmt"
	"sort"

	xml "github.com/subchen/go-xmldom"
)

// timedElement is an element anchored at its onset tick. dur is the time
// the element occupies in the document cursor's terms: the tick duration
// for notes, zero for grace notes and non-note content, negative for a
// backup marker.
type timedElement struct {
	onset int
	dur   int
	el    *xml.Node
}

// Intra-tick tie break: barlines come first, then attribute blocks, then
// notes, then everything else (directions, jump markers).
var mergeOrder = map[string]int{
	"barline":    0,
	"attributes": 1,
	"note":       2,
}

func mergePriority(name string) int {
	if p, ok := mergeOrder[name]; ok {
		return p
	}
	return len(mergeOrder)
}

// forwardBackupIfNeeded emits a forward or backup marker when the next
// element's onset t differs from the document cursor tPrev. The second
// result is the absolute jump magnitude, the merge cost contribution.
func forwardBackupIfNeeded(t, tPrev int) ([]timedElement, int) {
	switch {
	case t > tPrev:
		gap := t - tPrev
		e := newElement("forward")
		createText(e, "duration", fmt.Sprint(gap))
		return []timedElement{{onset: tPrev, dur: gap, el: e}}, gap
	case t < tPrev:
		gap := tPrev - t
		e := newElement("backup")
		createText(e, "duration", fmt.Sprint(gap))
		return []timedElement{{onset: tPrev, dur: -gap, el: e}}, gap
	default:
		return nil, 0
	}
}

// mergeWithVoice interleaves a voice's note events with non-note content by
// ascending onset, inserting jump markers wherever the document cursor is
// off position. Chord members rewind the cursor to the hosting note's onset
// instead of triggering a jump. Returns the merged stream and its total
// jump cost. The inputs are not modified; trial merges are discarded
// wholesale when a cheaper voice wins.
func mergeWithVoice(notes, other []timedElement, measureStart int) ([]timedElement, int) {
	byOnset := make(map[int][]timedElement)
	for _, ev := range notes {
		byOnset[ev.onset] = append(byOnset[ev.onset], ev)
	}
	for _, ev := range other {
		byOnset[ev.onset] = append(byOnset[ev.onset], ev)
	}

	var result []timedElement
	lastT := measureStart
	lastNoteOnset := measureStart
	cost := 0

	for _, onset := range sortedKeys(byOnset) {
		elems := byOnset[onset]
		sort.SliceStable(elems, func(i, j int) bool {
			return mergePriority(elems[i].el.Name) < mergePriority(elems[j].el.Name)
		})

		for _, ev := range elems {
			if ev.el.Name == "note" {
				if hasChild(ev.el, "chord") {
					lastT = lastNoteOnset
				}
				lastNoteOnset = onset
			}
			jumps, c := forwardBackupIfNeeded(onset, lastT)
			cost += c
			result = append(result, jumps...)
			result = append(result, ev)
			lastT = onset + ev.dur
		}
	}
	return result, cost
}

// mergeMeasureContents reconciles the per-voice event lists with attribute
// blocks and the remaining non-note content into one document-ordered
// stream. The non-note content is hosted by the voice it is cheapest to
// merge into (ties broken by lowest voice id); attribute blocks always go
// into the first voice, since attributes take effect in score order, not
// document order. Voices are concatenated in ascending id order with a
// single repositioning jump in between when needed.
func mergeMeasureContents(voices map[int][]timedElement, attributes, other []timedElement, measureStart int) []*xml.Node {
	voiceIDs := sortedKeys(voices)

	// A measure without notes still carries its attributes, barlines and
	// directions; merge them against an empty event list.
	if len(voiceIDs) == 0 {
		merged, _ := mergeWithVoice(nil, other, measureStart)
		merged, _ = mergeWithVoice(merged, attributes, measureStart)
		result := make([]*xml.Node, 0, len(merged))
		for _, ev := range merged {
			result = append(result, ev.el)
		}
		return result
	}

	merged := make(map[int][]timedElement, len(voiceIDs))
	mergeVoice := voiceIDs[0]
	bestCost := -1
	for _, voice := range voiceIDs {
		trial, cost := mergeWithVoice(voices[voice], other, measureStart)
		merged[voice] = trial
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			mergeVoice = voice
		}
	}

	var result []*xml.Node
	pos := measureStart
	for i, voice := range voiceIDs {
		var elements []timedElement
		if voice == mergeVoice {
			elements = merged[voice]
		} else {
			elements = voices[voice]
		}
		// The first voice always takes the attributes interleave, empty
		// attribute list included: the re-merge inserts forward markers at
		// internal gaps of the voice, keeping the document cursor in step
		// with the voice-switch bookkeeping below.
		if i == 0 {
			elements, _ = mergeWithVoice(elements, attributes, measureStart)
		}

		// Reposition the cursor when switching voices.
		if len(elements) > 0 {
			if jumps, _ := forwardBackupIfNeeded(elements[0].onset, pos); len(jumps) > 0 {
				result = append(result, jumps[0].el)
			}
		}

		for _, ev := range elements {
			result = append(result, ev.el)
		}

		if len(elements) > 0 {
			last := elements[len(elements)-1]
			pos = last.onset + last.dur
		}
	}
	return result
}
