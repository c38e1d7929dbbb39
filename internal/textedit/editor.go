// Package textedit applies offset-based edits to a source string and
// produces a source map from the edited output back to the original.
package textedit

import (
	"fmt"
	"sort"
	"strings"
)

type span struct {
	start, end int
}

// Editor records removals against the original text. All offsets are byte
// offsets into the original string, regardless of earlier edits.
type Editor struct {
	original string
	removed  []span
}

// New creates an editor over original
func New(original string) *Editor {
	return &Editor{original: original}
}

// Remove deletes the half-open byte range [start, end). Overlapping and
// repeated removals are allowed.
func (e *Editor) Remove(start, end int) error {
	if start < 0 || end > len(e.original) || start > end {
		return fmt.Errorf("invalid range [%d, %d) for text of length %d", start, end, len(e.original))
	}
	if start == end {
		return nil
	}
	e.removed = append(e.removed, span{start: start, end: end})
	return nil
}

// HasChanged reports whether any edit would alter the output
func (e *Editor) HasChanged() bool {
	return len(e.removed) > 0
}

// String renders the edited text
func (e *Editor) String() string {
	var b strings.Builder
	b.Grow(len(e.original))
	for _, r := range e.retained() {
		b.WriteString(e.original[r.start:r.end])
	}
	return b.String()
}

// retained returns the ranges of the original that survive, in order
func (e *Editor) retained() []span {
	removed := e.mergedRemovals()

	var out []span
	pos := 0
	for _, r := range removed {
		if r.start > pos {
			out = append(out, span{start: pos, end: r.start})
		}
		pos = r.end
	}
	if pos < len(e.original) {
		out = append(out, span{start: pos, end: len(e.original)})
	}
	return out
}

func (e *Editor) mergedRemovals() []span {
	if len(e.removed) == 0 {
		return nil
	}
	sorted := append([]span(nil), e.removed...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	merged := []span{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
