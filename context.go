package partitura

import (
	"fmt"
	"log"
)

// exportContext carries the mutable state of one export call: the note-id
// de-duplication counter, the live slur numbering table and collected
// warnings. A single instance spans all parts and measures of the call; it
// is threaded through the call chain, never stored globally.
type exportContext struct {
	idCount  map[string]int
	slurNum  map[*Slur]int
	warnings []string
}

func newExportContext() *exportContext {
	return &exportContext{
		idCount: make(map[string]int),
		slurNum: make(map[*Slur]int),
	}
}

func (ctx *exportContext) warn(format string, args ...any) {
	w := fmt.Sprintf(format, args...)
	log.Println("Warning:", w)
	ctx.warnings = append(ctx.warnings, w)
}

// noteID returns the id to export for a note, suffixing _N for the N-th
// repetition of the same id within this export call.
func (ctx *exportContext) noteID(id string) string {
	ctx.idCount[id]++
	if c := ctx.idCount[id]; c > 1 {
		return fmt.Sprintf("%s_%d", id, c)
	}
	return id
}

// openSlur registers a slur in the numbering table and returns its number,
// the smallest one not currently live; a number freed by a close is reused.
// A slur that is already open is a duplicate start; its stale entry is
// dropped and the old number returned.
func (ctx *exportContext) openSlur(s *Slur) int {
	if num, ok := ctx.slurNum[s]; ok {
		ctx.warn("duplicate slur start (number %d)", num)
		delete(ctx.slurNum, s)
		return num
	}
	live := make(map[int]bool, len(ctx.slurNum))
	for _, n := range ctx.slurNum {
		live[n] = true
	}
	num := 1
	for live[num] {
		num++
	}
	ctx.slurNum[s] = num
	return num
}

// closeSlur removes a slur from the numbering table, freeing its number for
// reuse. The second result is false for an unmatched close.
func (ctx *exportContext) closeSlur(s *Slur) (int, bool) {
	num, ok := ctx.slurNum[s]
	if !ok {
		ctx.warn("unmatched slur stop")
		return 0, false
	}
	delete(ctx.slurNum, s)
	return num, true
}
