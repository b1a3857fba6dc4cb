// Package info implements the two-pass info-script interpreter (spec
// component C8): a line-oriented directive language that selects the
// binaries to load, then annotates the resulting memory map with types,
// labels, comments, and address transforms.
package info

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/loader"
)

// FileReader abstracts reading a named file's contents, so tests can supply
// an in-memory fixture set without touching disk; the default is
// os.ReadFile.
type FileReader func(path string) ([]byte, error)

// queuedFile is one FILE directive collected during Pass A.
type queuedFile struct {
	path   string
	offset bus.Address
	bus    bus.Bus
}

// Interpreter runs an info script against a backend.Context.
type Interpreter struct {
	Ctx     *backend.Context
	Backend backend.Backend
	Read    FileReader

	// Radix is the default base used to parse bare (unprefixed) numbers;
	// spec §4.8 default is 10, with a literal "0x" prefix always forcing
	// hex regardless of Radix.
	Radix int

	bus     bus.Bus
	queue   []queuedFile
	visited map[string]bool // include-stack membership for the pass in progress
	remaps  []remapWindow
}

// New creates an interpreter bound to ctx and be (the selected backend,
// which gets first refusal on every directive via ProcessInfo).
func New(ctx *backend.Context, be backend.Backend) *Interpreter {
	return &Interpreter{
		Ctx:     ctx,
		Backend: be,
		Read:    os.ReadFile,
		Radix:   10,
		bus:     bus.Code,
	}
}

// Run executes the two-pass protocol described in spec §4.8 against the
// top-level info file at path: Pass A (INCLUDE/OPTION/FILE only) bootstraps
// option state and the list of binaries to load; those binaries are then
// loaded; Pass B (everything except FILE) annotates the now-populated
// memory map.
func (ip *Interpreter) Run(path string) error {
	ip.bus = bus.Code
	ip.visited = map[string]bool{}
	if err := ip.runPass(path, passBootstrap); err != nil {
		return fmt.Errorf("info: pass A: %w", err)
	}

	for _, qf := range ip.queue {
		data, err := ip.Read(qf.path)
		if err != nil {
			glog.Warningf("info: FILE %s: %v", qf.path, err)
			continue
		}
		opts := loader.Options{
			Bus:         qf.bus,
			DefaultType: ip.Backend.DefaultMemoryType(qf.bus),
			Offset:      qf.offset,
			Low:         ip.Backend.LowestAddr(qf.bus),
			High:        ip.Backend.HighestAddr(qf.bus),
		}
		if _, err := loader.Load(ip.Ctx.Mem, data, opts); err != nil {
			glog.Warningf("info: FILE %s: %v", qf.path, err)
			continue
		}
		ip.Ctx.Attrs.SyncSpans(qf.bus)
	}

	ip.bus = bus.Code
	ip.visited = map[string]bool{}
	if err := ip.runPass(path, passFull); err != nil {
		return fmt.Errorf("info: pass B: %w", err)
	}
	return nil
}

type passKind int

const (
	passBootstrap passKind = iota // only INCLUDE/OPTION/FILE
	passFull                      // everything except FILE
)

// runPass reads and executes one info file (and any INCLUDE'd files) under
// the given pass's directive filter, breaking cycles silently (spec §4.8,
// supplemented from original_source/'s load-stack).
func (ip *Interpreter) runPass(path string, pass passKind) error {
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = path
	}
	if ip.visited[canon] {
		glog.Warningf("info: INCLUDE cycle detected at %s, skipping", path)
		return nil
	}
	ip.visited[canon] = true
	defer delete(ip.visited, canon)

	data, err := ip.Read(path)
	if err != nil {
		return err
	}
	lines := joinContinuations(splitLines(string(data)))
	for _, line := range lines {
		if err := ip.execLine(line, pass, filepath.Dir(path)); err != nil {
			if errors.Is(err, errEndFile) {
				return nil
			}
			return err
		}
	}
	return nil
}
