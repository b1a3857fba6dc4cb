// Package comment implements the comment store (spec component C6): a
// two-level [bus][kind] index of ordered, multi-value-per-address comment
// text, with prepend entries always rendered ahead of appended ones.
package comment

import (
	"sort"

	"github.com/retrodis/dasmfw/bus"
)

// Kind selects where a comment renders relative to its address's line.
type Kind int

const (
	Before Kind = iota
	After
	Line
)

// Comment is one stored comment-store entry.
type Comment struct {
	Address bus.Address
	Kind    Kind
	Prepend bool
	// Verbatim marks a line that renders exactly as Text, with no
	// comment-prefix decoration — the info interpreter's INSERT/PREPEND
	// directives (spec §4.8: "lines are verbatim (no comment prefix)").
	Verbatim bool
	Text     string
	seq      int
}

// Store holds every comment, indexed by bus and kind.
type Store struct {
	entries [bus.Count][3][]*Comment
	seq     int
}

// New creates an empty comment store.
func New() *Store {
	return &Store{}
}

// Add appends (or, if prepend is set, logically prepends) a comment at
// addr. Prepend entries are rendered ahead of appended ones regardless of
// insertion order between the two groups; within a group, insertion order
// is preserved.
func (s *Store) Add(b bus.Bus, addr bus.Address, kind Kind, text string, prepend bool) *Comment {
	return s.add(b, addr, kind, text, prepend, false)
}

// AddVerbatim stores text with Verbatim set, for the INSERT/PREPEND
// directives.
func (s *Store) AddVerbatim(b bus.Bus, addr bus.Address, kind Kind, text string, prepend bool) *Comment {
	return s.add(b, addr, kind, text, prepend, true)
}

func (s *Store) add(b bus.Bus, addr bus.Address, kind Kind, text string, prepend, verbatim bool) *Comment {
	s.seq++
	c := &Comment{Address: addr, Kind: kind, Prepend: prepend, Verbatim: verbatim, Text: text, seq: s.seq}
	s.entries[b][kind] = append(s.entries[b][kind], c)
	return c
}

// At returns the comments for (bus, kind, addr) in render order: prepend
// entries first (insertion order), then appended entries (insertion
// order).
func (s *Store) At(b bus.Bus, kind Kind, addr bus.Address) []*Comment {
	var pre, post []*Comment
	for _, c := range s.entries[b][kind] {
		if c.Address != addr {
			continue
		}
		if c.Prepend {
			pre = append(pre, c)
		} else {
			post = append(post, c)
		}
	}
	return append(pre, post...)
}

// HasAny reports whether any comment of any kind exists at addr on the
// bus — used to force the BREAK attribute (spec §4.6).
func (s *Store) HasAny(b bus.Bus, addr bus.Address) bool {
	for k := 0; k < 3; k++ {
		for _, c := range s.entries[b][k] {
			if c.Address == addr {
				return true
			}
		}
	}
	return false
}

// RemoveRange deletes every comment of the given kind in [from,to) on the
// bus, e.g. for the UNCOMMENT/UNLCOMMENT info directives.
func (s *Store) RemoveRange(b bus.Bus, kind Kind, from, to bus.Address) int {
	kept := s.entries[b][kind][:0]
	n := 0
	for _, c := range s.entries[b][kind] {
		if c.Address >= from && c.Address < to {
			n++
			continue
		}
		kept = append(kept, c)
	}
	s.entries[b][kind] = kept
	return n
}

// sortedAddresses returns the distinct addresses on b that carry comments
// of kind, in ascending order.
func (s *Store) sortedAddresses(b bus.Bus, kind Kind) []bus.Address {
	seen := map[bus.Address]bool{}
	var out []bus.Address
	for _, c := range s.entries[b][kind] {
		if !seen[c.Address] {
			seen[c.Address] = true
			out = append(out, c.Address)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
