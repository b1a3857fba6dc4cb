package memmap

// MemoryType tags a span of the memory map with how its bytes are meant to
// be interpreted. It starts out as whatever the loader defaulted to and is
// later refined by info-script directives (CODE/DATA/CONST/RMB/UNUSED).
type MemoryType int

const (
	Untyped MemoryType = iota
	CodeMem
	DataMem
	Const
	Bss
	IOMem
)

func (t MemoryType) String() string {
	switch t {
	case Untyped:
		return "untyped"
	case CodeMem:
		return "code"
	case DataMem:
		return "data"
	case Const:
		return "const"
	case Bss:
		return "bss"
	case IOMem:
		return "io"
	default:
		return "?"
	}
}
