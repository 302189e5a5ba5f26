// Package dictionary turns the text output of a StarDict console lookup (sdcv)
// into discrete records.
package dictionary

import (
	"strings"
)

// headerMarker starts a line naming the dictionary the following lines came from.
const headerMarker = "-->"

// minGroupLines is the smallest group worth keeping: source, headword and at
// least one definition. Smaller groups are sources that matched without
// defining anything.
const minGroupLines = 3

// Record is one dictionary's answer for a looked-up term.
type Record struct {
	Source      string
	Headword    string
	Definitions []string
}

// group is the record being accumulated under the most recent header.
type group struct {
	source string
	lines  []string // headword first, then definitions
}

func (g *group) size() int {
	return 1 + len(g.lines)
}

// parser is the fold state. A nil pending group means no header has been
// seen since the last flush.
type parser struct {
	records []Record
	pending *group
}

// Parse reconstructs records from raw lookup output, in the order their
// headers appear. Incomplete groups are dropped; malformed lines never fail.
func Parse(raw string) []Record {
	var p parser
	for _, line := range strings.Split(raw, "\n") {
		p = p.step(strings.TrimRight(line, "\r"))
	}
	return p.flush().records
}

func (p parser) step(line string) parser {
	switch {
	case strings.TrimSpace(line) == "":
		return p
	case strings.HasPrefix(line, headerMarker):
		p = p.flush()
		p.pending = &group{source: strings.TrimSpace(line[len(headerMarker):])}
		return p
	case p.pending == nil:
		// Content before the first header has no source to belong to.
		return p
	default:
		p.pending.lines = append(p.pending.lines, line)
		return p
	}
}

func (p parser) flush() parser {
	g := p.pending
	p.pending = nil
	if g == nil || g.size() < minGroupLines {
		return p
	}
	defs := make([]string, len(g.lines)-1)
	copy(defs, g.lines[1:])
	p.records = append(p.records, Record{
		Source:      g.source,
		Headword:    g.lines[0],
		Definitions: defs,
	})
	return p
}
