package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

type sRecordLoader struct{}

func (sRecordLoader) Format() Format { return SRecord }

func (sRecordLoader) Detect(data []byte) bool {
	return len(data) > 0 && data[0] == 'S'
}

func (sRecordLoader) Load(mem *memmap.Map, data []byte, opts Options) (Result, error) {
	b := newSpanBuilder(mem, opts.Bus, opts.DefaultType)
	var entry bus.Address
	hasEntry := false

	scan := bufio.NewScanner(bytes.NewReader(data))
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		if len(line) < 4 || line[0] != 'S' {
			return Result{}, fmt.Errorf("s-record: line %q missing 'S' marker", line)
		}
		recType := line[1]
		body := line[2:]
		if len(body)%2 != 0 {
			return Result{}, fmt.Errorf("s-record: malformed line %q", line)
		}
		raw := make([]byte, len(body)/2)
		for i := range raw {
			v, err := strconv.ParseUint(body[i*2:i*2+2], 16, 8)
			if err != nil {
				return Result{}, fmt.Errorf("s-record: bad hex digit in %q: %w", line, err)
			}
			raw[i] = byte(v)
		}
		if len(raw) < 2 {
			return Result{}, fmt.Errorf("s-record: truncated record %q", line)
		}

		count := int(raw[0])
		if count != len(raw)-1 {
			return Result{}, fmt.Errorf("s-record: byte count mismatch in %q", line)
		}

		sum := byte(0)
		for _, v := range raw[:len(raw)-1] {
			sum += v
		}
		checksum := raw[len(raw)-1]
		if byte(^sum) != checksum {
			return Result{}, fmt.Errorf("s-record: checksum mismatch in %q", line)
		}

		addrLen, isData, isStart := 0, false, false
		switch recType {
		case '0':
			continue // header, no address of interest
		case '1':
			addrLen, isData = 2, true
		case '2':
			addrLen, isData = 3, true
		case '3':
			addrLen, isData = 4, true
		case '7':
			addrLen, isStart = 4, true
		case '8':
			addrLen, isStart = 3, true
		case '9':
			addrLen, isStart = 2, true
		default:
			continue // S5/S6 record counts, not address data
		}

		payload := raw[1 : len(raw)-1] // byte-count field already excluded
		if len(payload) < addrLen {
			return Result{}, fmt.Errorf("s-record: short address field in %q", line)
		}
		var addr uint32
		for i := 0; i < addrLen; i++ {
			addr = addr<<8 | uint32(payload[i])
		}
		payloadData := payload[addrLen:]

		switch {
		case isData:
			base := bus.Address(addr)
			for i, v := range payloadData {
				a := base + bus.Address(i)
				if opts.inRange(a) {
					b.put(a, v)
				}
			}
		case isStart:
			entry, hasEntry = bus.Address(addr), true
		}
	}
	if err := scan.Err(); err != nil {
		return Result{}, fmt.Errorf("s-record: %w", err)
	}
	added, err := b.finish()
	if err != nil {
		return Result{}, err
	}
	return Result{Bus: opts.Bus, SpansAdded: added, Format: SRecord, EntryPoint: entry, HasEntry: hasEntry}, nil
}
