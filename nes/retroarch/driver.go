package retroarch

import (
	"arcadia/nes"
	"arcadia/udpclient"
	"arcadia/util"
	"errors"
	"fmt"
	"log"
	"net"
	"time"
)

const driverName = "retroarch"

// default network_cmd_port for RetroArch:
const defaultAddress = "localhost:55355"

type Driver struct {
	// Timeout bounds each request/response exchange with RetroArch.
	Timeout time.Duration
	// ChunkSize is the maximum number of bytes requested per READ_CORE_MEMORY command.
	ChunkSize int
}

func (d *Driver) DisplayOrder() int {
	return 2
}

func (d *Driver) DisplayName() string {
	return "RetroArch"
}

func (d *Driver) DisplayDescription() string {
	return "Read NES RAM from a RetroArch emulator via network commands"
}

// Open connects to RetroArch at address (host:port) and probes it. It returns nes.ErrMemoryUnavailable
// when RetroArch does not answer or has no content loaded.
func (d *Driver) Open(address string) (nes.Conn, error) {
	addr, err := net.ResolveUDPAddr("udp", util.OrElse(address, defaultAddress))
	if err != nil {
		return nil, fmt.Errorf("%s: resolve %q: %w", driverName, address, err)
	}

	c := &Conn{
		timeout:   d.Timeout,
		chunkSize: d.ChunkSize,
	}
	udpclient.MakeUDPClient(fmt.Sprintf("%s[%s]", driverName, addr), &c.UDPClient)
	if err = c.Connect(addr); err != nil {
		return nil, fmt.Errorf("%s: connect: %w", driverName, err)
	}

	// probe a single byte to find out if anyone is listening with a game loaded:
	var probe [1]byte
	if _, err = c.ReadAt(probe[:], 0); err != nil {
		c.Disconnect()
		if errors.Is(err, nes.ErrMemoryUnavailable) || nes.IsTerminal(err) {
			return nil, fmt.Errorf("%s: probe %s: %v: %w", driverName, addr, err, nes.ErrMemoryUnavailable)
		}
		return nil, err
	}

	return c, nil
}

func init() {
	if util.IsTruthy(util.GetOrDefault("ARCADIA_RETROARCH_DISABLE", "0")) {
		log.Printf("disabling retroarch memory driver\n")
		return
	}
	nes.Register(driverName, &Driver{
		Timeout:   250 * time.Millisecond,
		ChunkSize: 256,
	})
}
