package retroarch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const readCoreMemory = "READ_CORE_MEMORY"

// errNoMemoryMap is returned by RetroArch when no content is loaded or the core exposes no memory map.
var errNoMemoryMap = errors.New("retroarch: no core memory available")

func formatReadCoreMemory(address uint32, size int) []byte {
	return []byte(fmt.Sprintf("%s %x %d\n", readCoreMemory, address, size))
}

// parseReadCoreMemory decodes a response of the form "READ_CORE_MEMORY <addr> <b0> <b1> ..." where the
// address and bytes are hex, or "READ_CORE_MEMORY <addr> -1 <message>" on failure.
func parseReadCoreMemory(rsp []byte) (address uint32, data []byte, err error) {
	fields := strings.Fields(string(rsp))
	if len(fields) < 3 || fields[0] != readCoreMemory {
		err = fmt.Errorf("retroarch: unexpected response %q", truncate(rsp, 40))
		return
	}

	var a uint64
	a, err = strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		err = fmt.Errorf("retroarch: bad response address %q: %w", fields[1], err)
		return
	}
	address = uint32(a)

	if strings.HasPrefix(fields[2], "-") {
		err = errNoMemoryMap
		return
	}

	data = make([]byte, 0, len(fields)-2)
	for _, f := range fields[2:] {
		var b uint64
		b, err = strconv.ParseUint(f, 16, 8)
		if err != nil {
			err = fmt.Errorf("retroarch: bad response byte %q: %w", f, err)
			return
		}
		data = append(data, byte(b))
	}

	return
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
