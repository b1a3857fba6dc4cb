// Command dasmfw is the retargetable disassembler's CLI front end (spec
// §6): it loads one or more binary files, optionally runs an info script
// over the result, and writes a column-aligned listing.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/retrodis/dasmfw/attrs"
	"github.com/retrodis/dasmfw/backend"
	_ "github.com/retrodis/dasmfw/backend/m6800"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/comment"
	"github.com/retrodis/dasmfw/engine"
	"github.com/retrodis/dasmfw/info"
	"github.com/retrodis/dasmfw/label"
	"github.com/retrodis/dasmfw/listing"
	"github.com/retrodis/dasmfw/loader"
	"github.com/retrodis/dasmfw/memmap"
	"github.com/retrodis/dasmfw/xform"
)

// config is the plain run configuration built from program arguments plus
// environment lookup (SPEC_FULL.md §1 "no global mutable config singleton
// except the backend registry").
type config struct {
	backendName string
	outPath     string
	infoFiles   []string
	showAddr    bool
	showHex     bool
	showASCII   bool
	files       []fileArg
}

type fileArg struct {
	path       string
	interleave int
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	progName := filepath.Base(args[0])
	cfg := config{backendName: defaultBackendName(progName)}

	be, err := parseArgs(args[1:], &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dasmfw: %v\n", err)
		return 1
	}
	if be == nil {
		printUsage(progName)
		return 1
	}
	if len(cfg.files) == 0 {
		printUsage(progName)
		return 1
	}

	mem := memmap.New(be.Endianness())
	ctx := &backend.Context{
		Mem:      mem,
		Attrs:    attrs.New(mem),
		Labels:   label.New(),
		Xform:    xform.New(),
		Comments: comment.New(),
	}

	for _, fa := range cfg.files {
		if err := loadFile(ctx, be, fa); err != nil {
			fmt.Fprintf(os.Stderr, "dasmfw: %v\n", err)
			continue
		}
	}

	for _, path := range infoScriptPaths(progName, cfg.infoFiles) {
		ip := info.New(ctx, be)
		if err := ip.Run(path); err != nil {
			glog.Warningf("dasmfw: info script %s: %v", path, err)
		}
	}

	out := os.Stdout
	if cfg.outPath != "" && cfg.outPath != "console" {
		f, err := os.Create(cfg.outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dasmfw: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	e := engine.New(ctx, be)
	fmt.Fprintf(out, "; %s — %s\n", be.Name(), be.Architecture())
	for _, b := range e.Buses() {
		e.Parse(b)
		f := &listing.Formatter{
			W: out,
			Opts: listing.Options{
				ShowAddress: cfg.showAddr,
				ShowHex:     cfg.showHex,
				ShowASCII:   cfg.showASCII,
				AddrDigits:  (be.BusWidth(b) + 3) / 4,
			},
			Bytes: func(bb bus.Bus, addr bus.Address, size int) []byte {
				raw, _ := ctx.Mem.GetRange(bb, addr, size)
				return raw
			},
		}
		e.Render(b, f.Emit)
	}
	return 0
}

// defaultBackendName derives the default backend from the program name's
// "dasmN" suffix (spec §6: "dasm6800 -> 6800"). The framework's own name
// "dasmfw" picks no default, so a -dasm option becomes mandatory.
func defaultBackendName(progName string) string {
	const prefix = "dasm"
	if strings.HasPrefix(progName, prefix) && len(progName) > len(prefix) {
		name := strings.TrimSuffix(strings.TrimPrefix(progName, prefix), filepath.Ext(progName))
		if name == "fw" {
			return ""
		}
		return name
	}
	return ""
}

// parseArgs walks args left-to-right: top-level options mutate cfg
// directly, anything else is forwarded to the backend's own option set
// once it's known, and bare words are file arguments.
func parseArgs(args []string, cfg *config) (backend.Backend, error) {
	var be backend.Backend
	resolve := func() error {
		if be != nil {
			return nil
		}
		if cfg.backendName == "" {
			return nil
		}
		b, ok := backend.Lookup(cfg.backendName)
		if !ok {
			return fmt.Errorf("unknown backend %q", cfg.backendName)
		}
		be = b
		return nil
	}

	for _, arg := range args {
		if arg == "" {
			continue
		}
		if arg[0] != '-' {
			fa, err := parseFileArg(arg)
			if err != nil {
				return nil, err
			}
			cfg.files = append(cfg.files, fa)
			continue
		}

		name, value, hasValue := splitOption(arg[1:])
		switch name {
		case "?", "help":
			return nil, nil
		case "dasm":
			cfg.backendName = value
		case "out":
			cfg.outPath = value
		case "info":
			cfg.infoFiles = append(cfg.infoFiles, value)
		case "addr":
			cfg.showAddr = boolOption(value, hasValue)
		case "hex":
			cfg.showHex = boolOption(value, hasValue)
		case "asc":
			cfg.showASCII = boolOption(value, hasValue)
		default:
			if err := resolve(); err != nil {
				return nil, err
			}
			if be == nil {
				return nil, fmt.Errorf("option %q given before a backend is selected", name)
			}
			// "-XXX=" and "-noXXX" carry an explicit empty value, meaning off.
			if hasValue && value == "" {
				value = "off"
			}
			if err := be.SetOption(name, value); err != nil {
				glog.Warningf("dasmfw: %v", err)
			}
		}
	}
	if err := resolve(); err != nil {
		return nil, err
	}
	return be, nil
}

// splitOption splits "name=value", "name:value", or a bare "name" (an
// implicit boolean-on toggle), after first rewriting a "noXXX" spelling to
// "XXX" with an explicit empty value (spec §6: "-noXXX is a synonym for
// -XXX= (empty, meaning off)").
func splitOption(s string) (name, value string, hasValue bool) {
	if strings.HasPrefix(s, "no") && len(s) > 2 {
		return strings.TrimPrefix(s, "no"), "", true
	}
	if i := strings.IndexAny(s, "=:"); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func boolOption(value string, hasValue bool) bool {
	if !hasValue {
		return true
	}
	switch value {
	case "", "off", "0", "false", "no":
		return false
	default:
		return true
	}
}

// parseFileArg splits a "path[:interleave]" file argument (spec §6).
func parseFileArg(arg string) (fileArg, error) {
	path, rest, ok := strings.Cut(arg, ":")
	if !ok {
		return fileArg{path: arg, interleave: 1}, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return fileArg{}, fmt.Errorf("file %q: invalid interleave %q", path, rest)
	}
	return fileArg{path: path, interleave: n}, nil
}

func loadFile(ctx *backend.Context, be backend.Backend, fa fileArg) error {
	data, err := os.ReadFile(fa.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", fa.path, err)
	}
	opts := loader.Options{
		Bus:         bus.Code,
		DefaultType: be.DefaultMemoryType(bus.Code),
		Interleave:  fa.interleave,
		Low:         be.LowestAddr(bus.Code),
		High:        be.HighestAddr(bus.Code),
	}
	_, err = loader.Load(ctx.Mem, data, opts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", fa.path, err)
	}
	ctx.Attrs.SyncSpans(bus.Code)
	return nil
}

// infoScriptPaths assembles the default search-path files (spec §6:
// "~/.dasmfw/<progname>.nfo" then "./<progname>.nfo", both optional) ahead
// of any -info files named explicitly, skipping defaults that don't exist.
func infoScriptPaths(progName string, explicit []string) []string {
	var out []string
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE")
	}
	if home != "" {
		if p := filepath.Join(home, ".dasmfw", progName+".nfo"); fileExists(p) {
			out = append(out, p)
		}
	}
	if p := progName + ".nfo"; fileExists(p) {
		out = append(out, p)
	}
	return append(out, explicit...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func printUsage(progName string) {
	fmt.Fprintf(os.Stderr, "Usage: %s [-option[:|=]value] [file[:interleave]]...\n", progName)
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  -dasm <code>     select the processor backend (e.g. 6800)")
	fmt.Fprintln(os.Stderr, "  -out <path>      write the listing to path instead of stdout")
	fmt.Fprintln(os.Stderr, "  -info <file>     run an additional info script")
	fmt.Fprintln(os.Stderr, "  -addr/-hex/-asc  toggle address/hex/ASCII gutter columns")
	fmt.Fprintln(os.Stderr, "  -?, -help        show this text")
	for _, b := range backend.Names() {
		be, _ := backend.Lookup(b)
		fmt.Fprintf(os.Stderr, "\nBackend %q options:\n", b)
		for _, o := range be.Options() {
			fmt.Fprintf(os.Stderr, "  -%-28s %s (default %s)\n", o.Name, o.Help, o.Default)
		}
	}
}
