package grpcmem

import (
	"arcadia/nes"
	"arcadia/util"
	"fmt"
	"log"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const driverName = "grpcmem"

const defaultAddress = "localhost:8191"

type Driver struct {
	Timeout time.Duration

	lock sync.Mutex
	ccs  map[string]*grpc.ClientConn
}

func (d *Driver) DisplayOrder() int {
	return 1
}

func (d *Driver) DisplayName() string {
	return "Memory Host"
}

func (d *Driver) DisplayDescription() string {
	return "Read emulator memory from a gRPC memory host"
}

// Open dials (or reuses a connection to) the memory host at address.
func (d *Driver) Open(address string) (nes.Conn, error) {
	address = util.OrElse(address, defaultAddress)

	d.lock.Lock()
	cc, ok := d.ccs[address]
	if !ok {
		var err error
		cc, err = grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			d.lock.Unlock()
			return nil, fmt.Errorf("%s: dial %s: %w", driverName, address, err)
		}
		if d.ccs == nil {
			d.ccs = make(map[string]*grpc.ClientConn)
		}
		d.ccs[address] = cc
	}
	d.lock.Unlock()

	return NewConn(NewMemoryClient(cc), d.Timeout)
}

func init() {
	if util.IsTruthy(util.GetOrDefault("ARCADIA_GRPCMEM_DISABLE", "0")) {
		log.Printf("disabling grpcmem memory driver\n")
		return
	}
	nes.Register(driverName, &Driver{Timeout: time.Second})
}
