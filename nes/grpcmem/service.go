package grpcmem

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The memory service uses only protobuf well-known types so that emulator hosts in any language can
// implement it without sharing a .proto file:
//
//	service arcadia.memory.Memory {
//	  rpc Describe(google.protobuf.Empty) returns (google.protobuf.Struct);  // {size, generation, kind}
//	  rpc Read(google.protobuf.Struct) returns (google.protobuf.BytesValue); // {offset, size}
//	}
const (
	serviceName      = "arcadia.memory.Memory"
	describeFullName = "/" + serviceName + "/Describe"
	readFullName     = "/" + serviceName + "/Read"
)

type MemoryServer interface {
	Describe(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Read(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

type MemoryClient interface {
	Describe(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Read(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type memoryClient struct {
	cc grpc.ClientConnInterface
}

func NewMemoryClient(cc grpc.ClientConnInterface) MemoryClient {
	return &memoryClient{cc}
}

func (c *memoryClient) Describe(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, describeFullName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *memoryClient) Read(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, readFullName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterMemoryServer(s grpc.ServiceRegistrar, srv MemoryServer) {
	s.RegisterService(&memoryServiceDesc, srv)
}

func describeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MemoryServer).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: describeFullName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MemoryServer).Describe(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func readHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MemoryServer).Read(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: readFullName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MemoryServer).Read(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var memoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MemoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Describe", Handler: describeHandler},
		{MethodName: "Read", Handler: readHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arcadia/memory.proto",
}
