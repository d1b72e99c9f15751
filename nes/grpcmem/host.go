package grpcmem

import (
	"arcadia/nes"
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// MaxReadSize bounds a single Read request.
const MaxReadSize = 64 * 1024

// Host serves a nes.View to remote trackers. Replace bumps the generation so that connected
// clients notice an emulator restart.
type Host struct {
	lock       sync.RWMutex
	view       nes.View
	generation uint64
}

func NewHost(view nes.View) *Host {
	h := &Host{}
	h.Replace(view)
	return h
}

// Replace swaps the served view; nil means the emulator memory is gone.
func (h *Host) Replace(view nes.View) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.view = view
	h.generation++
}

func (h *Host) current() (nes.View, uint64) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.view, h.generation
}

func (h *Host) Describe(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	view, generation := h.current()
	size := 0
	kind := nes.KindHeap
	if view != nil {
		size = view.Len()
		kind = nes.KindOf(view)
	}

	return structpb.NewStruct(map[string]interface{}{
		"size":       size,
		"generation": float64(generation),
		"kind":       kind.String(),
	})
}

func (h *Host) Read(_ context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	view, _ := h.current()
	if view == nil {
		return nil, status.Error(codes.Unavailable, nes.ErrMemoryUnavailable.Error())
	}

	offset := int(req.GetFields()["offset"].GetNumberValue())
	size := int(req.GetFields()["size"].GetNumberValue())
	if size <= 0 || size > MaxReadSize {
		return nil, status.Errorf(codes.InvalidArgument, "size %d out of range (1..%d)", size, MaxReadSize)
	}
	if offset < 0 || offset >= view.Len() {
		return nil, status.Errorf(codes.OutOfRange, "offset %d out of range (0..%d)", offset, view.Len()-1)
	}
	if offset+size > view.Len() {
		size = view.Len() - offset
	}

	data := make([]byte, size)
	n, err := view.ReadAt(data, int64(offset))
	if n < size {
		return nil, status.Errorf(codes.Internal, "read $%06x: %v", offset, err)
	}

	return wrapperspb.Bytes(data), nil
}
