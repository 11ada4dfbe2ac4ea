package partitura

import (
	"fmt"

	xml "github.com/subchen/go-xmldom"
)

// dynDirections is the set of direction texts rendered as a dynamics mark
// rather than literal words (the standard MusicXML dynamics elements).
var dynDirections = map[string]bool{
	"p": true, "pp": true, "ppp": true, "pppp": true, "ppppp": true, "pppppp": true,
	"f": true, "ff": true, "fff": true, "ffff": true, "fffff": true, "ffffff": true,
	"mp": true, "mf": true,
	"sf": true, "sfp": true, "sfpp": true, "fp": true,
	"rf": true, "rfz": true, "sfz": true, "sffz": true, "fz": true,
}

// doAttributes gathers the divisions/key/time/clef changes starting in
// [start, end) into one attributes block per distinct onset. Within a
// block the sub-elements keep the divisions, key, time, clef order.
func doAttributes(part *Part, start, end int) []timedElement {
	type attrEntry struct {
		div  *Divisions
		key  *KeySignature
		time *TimeSignature
		clef *Clef
	}
	byOnset := make(map[int][]attrEntry)
	for _, d := range part.DivisionsIn(start, end) {
		byOnset[d.Start] = append(byOnset[d.Start], attrEntry{div: d})
	}
	for _, k := range part.KeysIn(start, end) {
		byOnset[k.Start] = append(byOnset[k.Start], attrEntry{key: k})
	}
	for _, t := range part.TimesIn(start, end) {
		byOnset[t.Start] = append(byOnset[t.Start], attrEntry{time: t})
	}
	for _, c := range part.ClefsIn(start, end) {
		byOnset[c.Start] = append(byOnset[c.Start], attrEntry{clef: c})
	}

	var result []timedElement
	for _, onset := range sortedKeys(byOnset) {
		attrE := newElement("attributes")
		for _, entry := range byOnset[onset] {
			switch {
			case entry.div != nil:
				createText(attrE, "divisions", fmt.Sprint(entry.div.Divs))
			case entry.key != nil:
				keyE := newElement("key")
				appendChild(attrE, keyE)
				createText(keyE, "fifths", fmt.Sprint(entry.key.Fifths))
				if entry.key.Mode != "" {
					createText(keyE, "mode", entry.key.Mode)
				}
			case entry.time != nil:
				timeE := newElement("time")
				appendChild(attrE, timeE)
				createText(timeE, "beats", fmt.Sprint(entry.time.Beats))
				createText(timeE, "beat-type", fmt.Sprint(entry.time.BeatType))
			case entry.clef != nil:
				clefE := newElement("clef")
				appendChild(attrE, clefE)
				if entry.clef.Number != 0 {
					clefE.SetAttributeValue("number", fmt.Sprint(entry.clef.Number))
				}
				createText(clefE, "sign", entry.clef.Sign)
				createText(clefE, "line", fmt.Sprint(entry.clef.Line))
				if entry.clef.OctaveChange != 0 {
					createText(clefE, "clef-octave-change", fmt.Sprint(entry.clef.OctaveChange))
				}
			}
		}
		result = append(result, timedElement{onset: onset, el: attrE})
	}
	return result
}

// doDirections builds one direction element per direction starting in
// [start, end). A direction with an end point additionally opens a dashed
// span at its start and closes it with a second element at the end tick.
func doDirections(part *Part, start, end int) []timedElement {
	var result []timedElement
	for _, d := range part.DirectionsIn(start, end) {
		text := d.DisplayText()
		dirE := newElement("direction")
		typeE := newElement("direction-type")
		appendChild(dirE, typeE)
		if dynDirections[text] {
			dynE := newElement("dynamics")
			appendChild(typeE, dynE)
			appendChild(dynE, newElement(text))
		} else {
			createText(typeE, "words", text)
		}

		if d.End != nil {
			dashesE := newElement("direction-type")
			appendChild(dirE, dashesE)
			appendChild(dashesE, newElement("dashes").SetAttributeValue("type", "start"))
		}

		if d.Staff != 0 {
			createText(dirE, "staff", fmt.Sprint(d.Staff))
		}

		result = append(result, timedElement{onset: d.Start, el: dirE})

		if d.End != nil {
			stopE := newElement("direction")
			stopTypeE := newElement("direction-type")
			appendChild(stopE, stopTypeE)
			appendChild(stopTypeE, newElement("dashes").SetAttributeValue("type", "stop"))
			result = append(result, timedElement{onset: *d.End, el: stopE})
		}
	}
	return result
}

// doBarlines gathers fermatas, repeat signs and volta brackets into one
// barline element per onset, with the location attribute derived from the
// onset's position in the segment. A fermata anchored exactly at the
// segment end belongs here only when its ref says "right"; otherwise it is
// the next measure's.
func doBarlines(part *Part, start, end int) []timedElement {
	byOnset := make(map[int][]*xml.Node)

	for _, f := range part.FermatasIn(start, end) {
		switch f.Ref {
		case "", "left", "middle", "right":
			byOnset[f.Start] = append(byOnset[f.Start], newElement("fermata"))
		}
	}
	for _, f := range part.FermatasIn(end, end+1) {
		if f.Ref == "right" {
			byOnset[f.Start] = append(byOnset[f.Start], newElement("fermata"))
		}
	}
	for _, r := range part.RepeatsStartingIn(start, end) {
		byOnset[*r.Start] = append(byOnset[*r.Start],
			newElement("repeat").SetAttributeValue("direction", "forward"))
	}
	for _, e := range part.EndingsStartingIn(start, end) {
		endingE := newElement("ending").SetAttributeValue("type", "start")
		endingE.SetAttributeValue("number", fmt.Sprint(e.Number))
		byOnset[*e.Start] = append(byOnset[*e.Start], endingE)
	}
	for _, r := range part.RepeatsEndingIn(start, end) {
		byOnset[*r.End] = append(byOnset[*r.End],
			newElement("repeat").SetAttributeValue("direction", "backward"))
	}
	for _, e := range part.EndingsEndingIn(start, end) {
		endingE := newElement("ending").SetAttributeValue("type", "stop")
		endingE.SetAttributeValue("number", fmt.Sprint(e.Number))
		byOnset[*e.End] = append(byOnset[*e.End], endingE)
	}

	var result []timedElement
	for _, onset := range sortedKeys(byOnset) {
		barlineE := newElement("barline")
		switch {
		case onset == start:
			barlineE.SetAttributeValue("location", "left")
		case onset == end:
			barlineE.SetAttributeValue("location", "right")
		default:
			barlineE.SetAttributeValue("location", "middle")
		}
		for _, child := range byOnset[onset] {
			appendChild(barlineE, child)
		}
		result = append(result, timedElement{onset: onset, el: barlineE})
	}
	return result
}
