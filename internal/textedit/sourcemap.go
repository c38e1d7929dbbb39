package textedit

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MapOptions controls source map generation
type MapOptions struct {
	// Source is the name recorded in the map's sources list
	Source string
	// File is the name of the generated file
	File string
	// IncludeContent embeds the original text as sourcesContent
	IncludeContent bool
	// Hires emits a mapping for every retained character instead of one per
	// retained chunk and line
	Hires bool
}

// SourceMap is a revision 3 source map
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON encodes the map
func (m *SourceMap) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// DataURL encodes the map as an inline base64 data URL
func (m *SourceMap) DataURL() (string, error) {
	raw, err := m.JSON()
	if err != nil {
		return "", err
	}
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// GenerateMap builds a map from the edited output to the original text.
// Columns are counted in UTF-16 code units.
func (e *Editor) GenerateMap(opts MapOptions) *SourceMap {
	m := &mappings{firstOnLine: true}

	origLine, origCol := 0, 0
	advance := func(text string) {
		for _, r := range text {
			if r == '\n' {
				origLine++
				origCol = 0
				continue
			}
			origCol += utf16Len(r)
		}
	}

	pos := 0
	for _, chunk := range e.retained() {
		advance(e.original[pos:chunk.start])

		needSegment := true
		for i := chunk.start; i < chunk.end; {
			r, size := utf8.DecodeRuneInString(e.original[i:])
			if r == '\n' {
				m.newLine()
				origLine++
				origCol = 0
				needSegment = true
			} else {
				if needSegment || opts.Hires {
					m.add(origLine, origCol)
					needSegment = false
				}
				w := utf16Len(r)
				m.genCol += w
				origCol += w
			}
			i += size
		}
		pos = chunk.end
	}

	sm := &SourceMap{
		Version:  3,
		File:     opts.File,
		Sources:  []string{opts.Source},
		Names:    []string{},
		Mappings: m.b.String(),
	}
	if opts.IncludeContent {
		sm.SourcesContent = []string{e.original}
	}
	return sm
}

// mappings accumulates the VLQ mappings string
type mappings struct {
	b           strings.Builder
	genCol      int
	prevGenCol  int
	prevLine    int
	prevCol     int
	firstOnLine bool
}

func (m *mappings) newLine() {
	m.b.WriteByte(';')
	m.genCol = 0
	m.prevGenCol = 0
	m.firstOnLine = true
}

func (m *mappings) add(origLine, origCol int) {
	if !m.firstOnLine {
		m.b.WriteByte(',')
	}
	m.firstOnLine = false

	writeVLQ(&m.b, m.genCol-m.prevGenCol)
	writeVLQ(&m.b, 0)
	writeVLQ(&m.b, origLine-m.prevLine)
	writeVLQ(&m.b, origCol-m.prevCol)

	m.prevGenCol = m.genCol
	m.prevLine = origLine
	m.prevCol = origCol
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func writeVLQ(b *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = (-value << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64Digits[digit])
		if v == 0 {
			return
		}
	}
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
