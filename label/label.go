// Package label implements the label registry (spec component C5): labels
// and DefLabels, multi-indexed by address and text, with arithmetic
// expression-label resolution and engine-driven auto-naming.
package label

import (
	"fmt"
	"sort"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// Source records who created a label, for diagnostics and so expression
// resolution can tell an auto-named label (address already concrete) apart
// from a user/info-authored one that may reference a not-yet-placed base.
type Source int

const (
	SourceUser Source = iota
	SourceInfo
	SourceAuto
)

// Label is one named reference into a bus's address space. Multiple labels
// may share an address; text must be unique within a bus.
type Label struct {
	Seq     int
	Address bus.Address
	MemType memmap.MemoryType
	Text    string
	Used    bool
	Source  Source
}

// DefLabel is a symbolic constant (EQU-style) that is not bound to a
// physical address, though the interpreter may associate one with it for
// indexing purposes.
type DefLabel struct {
	Text       string
	Definition string
	MemType    memmap.MemoryType
}

type perBus struct {
	labels    []*Label
	byText    map[string]*Label
	defLabels []*DefLabel
	defByText map[string]*DefLabel
	seq       int
}

func newPerBus() *perBus {
	return &perBus{
		byText:    make(map[string]*Label),
		defByText: make(map[string]*DefLabel),
	}
}

// Registry holds the label and DefLabel tables for every bus.
type Registry struct {
	// MultiLabel disables (addr,memType,text) dedup when true: every
	// AddLabel call inserts a new record even if an identical one exists.
	MultiLabel bool

	buses [bus.Count]*perBus
}

// New creates an empty label registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.buses {
		r.buses[i] = newPerBus()
	}
	return r
}

// AddLabel inserts a label, de-duplicating by (address, memType, text)
// unless r.MultiLabel is set. A duplicate call with used=true promotes an
// existing label to used.
func (r *Registry) AddLabel(b bus.Bus, addr bus.Address, memType memmap.MemoryType, text string, used bool, source Source) *Label {
	pb := r.buses[b]
	if !r.MultiLabel {
		if existing, ok := pb.byText[text]; ok && existing.Address == addr && existing.MemType == memType {
			if used {
				existing.Used = true
			}
			return existing
		}
	}
	pb.seq++
	l := &Label{Seq: pb.seq, Address: addr, MemType: memType, Text: text, Used: used, Source: source}
	pb.labels = append(pb.labels, l)
	pb.byText[text] = l
	return l
}

// RemoveLabel deletes the label with the given text, if any.
func (r *Registry) RemoveLabel(b bus.Bus, text string) bool {
	pb := r.buses[b]
	existing, ok := pb.byText[text]
	if !ok {
		return false
	}
	delete(pb.byText, text)
	for i, l := range pb.labels {
		if l == existing {
			pb.labels = append(pb.labels[:i], pb.labels[i+1:]...)
			break
		}
	}
	return true
}

// RemoveRange deletes every label in [from,to) on the bus, e.g. for the
// info-script UNLABEL directive.
func (r *Registry) RemoveRange(b bus.Bus, from, to bus.Address) int {
	pb := r.buses[b]
	kept := pb.labels[:0]
	n := 0
	for _, l := range pb.labels {
		if l.Address >= from && l.Address < to {
			delete(pb.byText, l.Text)
			n++
			continue
		}
		kept = append(kept, l)
	}
	pb.labels = kept
	return n
}

// FindLabel returns the most-recently-added label at addr matching
// memTypeFilter (any memType if anyMemType is true), or nil.
func (r *Registry) FindLabel(b bus.Bus, addr bus.Address, memTypeFilter memmap.MemoryType, anyMemType bool) *Label {
	pb := r.buses[b]
	var found *Label
	for _, l := range pb.labels {
		if l.Address != addr {
			continue
		}
		if !anyMemType && l.MemType != memTypeFilter {
			continue
		}
		found = l
	}
	return found
}

// FindByText returns the label with the given text on the bus, or nil.
func (r *Registry) FindByText(b bus.Bus, text string) *Label {
	return r.buses[b].byText[text]
}

// InRange returns labels in [from,to) ordered ascending by address, then by
// insertion order (spec §8 invariant).
func (r *Registry) InRange(b bus.Bus, from, to bus.Address) []*Label {
	pb := r.buses[b]
	var out []*Label
	for _, l := range pb.labels {
		if l.Address >= from && l.Address < to {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// All returns every label on the bus, sorted ascending by address then
// insertion order.
func (r *Registry) All(b bus.Bus) []*Label {
	return r.InRange(b, 0, bus.NoAddress)
}

// MarkUnused marks every label on addr not used — e.g. an info UNLABEL that
// removes usage without deleting the record is not part of this spec, so
// this is provided for completeness of the mutation surface.
func (r *Registry) MarkUnused(b bus.Bus, addr bus.Address) {
	for _, l := range r.buses[b].labels {
		if l.Address == addr {
			l.Used = false
		}
	}
}

// AddDefLabel inserts or replaces a symbolic constant.
func (r *Registry) AddDefLabel(b bus.Bus, text, definition string, memType memmap.MemoryType) *DefLabel {
	pb := r.buses[b]
	d := &DefLabel{Text: text, Definition: definition, MemType: memType}
	pb.defByText[text] = d
	pb.defLabels = append(pb.defLabels, d)
	return d
}

// DefLabels returns every DefLabel on the bus in insertion order.
func (r *Registry) DefLabels(b bus.Bus) []*DefLabel {
	return r.buses[b].defLabels
}

func (l *Label) String() string {
	return fmt.Sprintf("%s@%s(%s)", l.Text, l.Address, l.MemType)
}
