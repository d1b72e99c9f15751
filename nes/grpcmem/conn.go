package grpcmem

import (
	"arcadia/nes"
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Conn is a nes.View over a remote memory host. It remembers the host generation it was opened
// against and reports itself invalid once the host restarts its emulator.
type Conn struct {
	client     MemoryClient
	timeout    time.Duration
	size       int
	kind       nes.Kind
	generation uint64
	closed     atomic.Bool
}

type description struct {
	size       int
	generation uint64
	kind       nes.Kind
}

func describe(ctx context.Context, client MemoryClient) (d description, err error) {
	var rsp *structpb.Struct
	rsp, err = client.Describe(ctx, &emptypb.Empty{})
	if err != nil {
		return
	}

	fields := rsp.GetFields()
	d.size = int(fields["size"].GetNumberValue())
	d.generation = uint64(fields["generation"].GetNumberValue())
	if fields["kind"].GetStringValue() == nes.KindRAM.String() {
		d.kind = nes.KindRAM
	}
	return
}

// NewConn describes the host and returns a Conn, or an error wrapping nes.ErrMemoryUnavailable when the
// host is unreachable or has no memory to serve yet.
func NewConn(client MemoryClient, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	d, err := describe(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("%s: describe: %v: %w", driverName, err, nes.ErrMemoryUnavailable)
	}
	if d.size <= 0 {
		return nil, fmt.Errorf("%s: host has no memory: %w", driverName, nes.ErrMemoryUnavailable)
	}

	return &Conn{
		client:     client,
		timeout:    timeout,
		size:       d.size,
		kind:       d.kind,
		generation: d.generation,
	}, nil
}

func (c *Conn) Len() int       { return c.size }
func (c *Conn) Kind() nes.Kind { return c.kind }

func (c *Conn) Valid() bool {
	if c.closed.Load() {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	d, err := describe(ctx, c.client)
	if err != nil {
		return false
	}
	return d.generation == c.generation && d.size == c.size
}

// Close marks the conn unusable. The underlying grpc.ClientConn is shared and stays open.
func (c *Conn) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Conn) ReadAt(p []byte, off int64) (n int, err error) {
	if c.closed.Load() {
		return 0, &nes.TerminalError{Wrapped: nes.ErrConnClosed}
	}
	if off < 0 || off >= int64(c.size) {
		return 0, io.EOF
	}

	want := len(p)
	if int(off)+want > c.size {
		want = c.size - int(off)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	for n < want {
		size := want - n
		if size > MaxReadSize {
			size = MaxReadSize
		}

		var req *structpb.Struct
		req, err = structpb.NewStruct(map[string]interface{}{
			"offset": int(off) + n,
			"size":   size,
		})
		if err != nil {
			return
		}

		rsp, rerr := c.client.Read(ctx, req)
		if rerr != nil {
			switch status.Code(rerr) {
			case codes.Unavailable:
				err = fmt.Errorf("%s: read: %v: %w", driverName, rerr, nes.ErrMemoryUnavailable)
			case codes.OutOfRange, codes.InvalidArgument:
				err = fmt.Errorf("%s: read: %w", driverName, rerr)
			default:
				err = &nes.TerminalError{Wrapped: rerr}
			}
			return
		}

		got := copy(p[n:n+size], rsp.GetValue())
		n += got
		if got < size {
			err = io.ErrUnexpectedEOF
			return
		}
	}

	if n < len(p) {
		err = io.EOF
	}
	return
}
