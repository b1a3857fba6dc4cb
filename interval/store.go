// Package interval implements the sparse interval store shared by the
// memory map, attribute overlay and address-transform layers: an ordered
// set of non-overlapping [start,len) spans, each carrying a type tag and a
// dense per-cell payload.
package interval

import (
	"fmt"
	"sort"
)

// Span is one contiguous, non-overlapping range of addresses.
type Span[T any, E any] struct {
	Start uint64
	Len   uint64
	Tag   T
	Cells []E
}

// End returns the address one past the last cell of the span.
func (s *Span[T, E]) End() uint64 {
	return s.Start + s.Len
}

// Store is an ordered collection of non-overlapping spans, searchable by
// address in O(log N) over span starts.
type Store[T any, E any] struct {
	spans []*Span[T, E]
}

// New creates an empty store.
func New[T any, E any]() *Store[T, E] {
	return &Store[T, E]{}
}

// Add inserts a new span of the given length, tag and fill value. It fails
// if the new span touches or overlaps an existing one; the store never
// merges spans, even adjacent same-tag ones — callers that want a bigger
// span remove and re-add explicitly.
func (s *Store[T, E]) Add(start, length uint64, tag T, fill E) (*Span[T, E], error) {
	if length == 0 {
		return nil, fmt.Errorf("interval: zero-length span at %#x", start)
	}
	end := start + length
	i := s.indexAtOrAfter(start)
	if i > 0 {
		prev := s.spans[i-1]
		if prev.End() >= start {
			return nil, fmt.Errorf("interval: span [%#x,%#x) overlaps existing [%#x,%#x)", start, end, prev.Start, prev.End())
		}
	}
	if i < len(s.spans) {
		next := s.spans[i]
		if end >= next.Start {
			return nil, fmt.Errorf("interval: span [%#x,%#x) overlaps existing [%#x,%#x)", start, end, next.Start, next.End())
		}
	}
	cells := make([]E, length)
	for j := range cells {
		cells[j] = fill
	}
	span := &Span[T, E]{Start: start, Len: length, Tag: tag, Cells: cells}
	s.spans = append(s.spans, nil)
	copy(s.spans[i+1:], s.spans[i:])
	s.spans[i] = span
	return span, nil
}

// Remove deletes the span starting exactly at start, if any.
func (s *Store[T, E]) Remove(start uint64) bool {
	i := s.indexAtOrAfter(start)
	if i >= len(s.spans) || s.spans[i].Start != start {
		return false
	}
	s.spans = append(s.spans[:i], s.spans[i+1:]...)
	return true
}

// indexAtOrAfter returns the index of the first span whose Start >= addr.
func (s *Store[T, E]) indexAtOrAfter(addr uint64) int {
	return sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].Start >= addr
	})
}

// FindSpan returns the span containing addr, if any.
func (s *Store[T, E]) FindSpan(addr uint64) (*Span[T, E], bool) {
	i := s.indexAtOrAfter(addr)
	if i < len(s.spans) && s.spans[i].Start == addr {
		return s.spans[i], true
	}
	if i == 0 {
		return nil, false
	}
	prev := s.spans[i-1]
	if addr >= prev.Start && addr < prev.End() {
		return prev, true
	}
	return nil, false
}

// Get returns the cell value at addr and whether addr is mapped.
func (s *Store[T, E]) Get(addr uint64) (E, bool) {
	var zero E
	span, ok := s.FindSpan(addr)
	if !ok {
		return zero, false
	}
	return span.Cells[addr-span.Start], true
}

// Set writes the cell value at addr; it is a no-op (returns false) if addr
// is unmapped.
func (s *Store[T, E]) Set(addr uint64, v E) bool {
	span, ok := s.FindSpan(addr)
	if !ok {
		return false
	}
	span.Cells[addr-span.Start] = v
	return true
}

// Spans returns the spans in ascending start-address order. The returned
// slice is shared with the store and must not be mutated by the caller.
func (s *Store[T, E]) Spans() []*Span[T, E] {
	return s.spans
}

// Len reports the number of spans.
func (s *Store[T, E]) Len() int {
	return len(s.spans)
}
