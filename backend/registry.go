package backend

import "fmt"

// Factory constructs a fresh Backend instance.
type Factory func() Backend

// registry is the process-wide disassembler-factory list (spec §9:
// "initialize once at startup, freeze thereafter"). Backend packages
// register themselves from an init() function.
var registry = map[string]Factory{}

// Register adds a named backend factory. Calling Register twice for the
// same name is a programming error and panics, matching "freeze
// thereafter" — this only ever happens at package init time, never during
// a run.
func Register(name string, f Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("backend: duplicate registration for %q", name))
	}
	registry[name] = f
}

// Lookup constructs a fresh backend instance by name.
func Lookup(name string) (Backend, bool) {
	f, ok := registry[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Names returns every registered backend name.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
