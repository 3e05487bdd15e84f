// Package blocklogv1 holds the gRPC contract of blocklog.v1.LogService
// described in log.proto. The service only uses well-known wrapper messages,
// so the stubs are maintained by hand.
package blocklogv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "blocklog.v1.LogService"

const (
	LogService_CreateLog_FullMethodName = "/blocklog.v1.LogService/CreateLog"
	LogService_Execute_FullMethodName   = "/blocklog.v1.LogService/Execute"
)

// Metadata keys carrying the caller.
const (
	MetadataAuthorization = "authorization"
	MetadataCaller        = "x-caller"
)

// ErrorDomain is the ErrorInfo domain of program rejections.
const ErrorDomain = "blocklog"

// LogServiceClient is the client API for LogService.
type LogServiceClient interface {
	CreateLog(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Execute(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.UInt32Value, error)
}

type logServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLogServiceClient(cc grpc.ClientConnInterface) LogServiceClient {
	return &logServiceClient{cc}
}

func (c *logServiceClient) CreateLog(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, LogService_CreateLog_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *logServiceClient) Execute(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.UInt32Value, error) {
	out := new(wrapperspb.UInt32Value)
	if err := c.cc.Invoke(ctx, LogService_Execute_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LogServiceServer is the server API for LogService.
type LogServiceServer interface {
	CreateLog(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error)
	Execute(context.Context, *wrapperspb.BytesValue) (*wrapperspb.UInt32Value, error)
}

// UnimplementedLogServiceServer can be embedded for forward compatibility.
type UnimplementedLogServiceServer struct{}

func (UnimplementedLogServiceServer) CreateLog(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateLog not implemented")
}

func (UnimplementedLogServiceServer) Execute(context.Context, *wrapperspb.BytesValue) (*wrapperspb.UInt32Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Execute not implemented")
}

func RegisterLogServiceServer(s grpc.ServiceRegistrar, srv LogServiceServer) {
	s.RegisterService(&LogService_ServiceDesc, srv)
}

func _LogService_CreateLog_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LogServiceServer).CreateLog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LogService_CreateLog_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LogServiceServer).CreateLog(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _LogService_Execute_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LogServiceServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LogService_Execute_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LogServiceServer).Execute(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// LogService_ServiceDesc is the grpc.ServiceDesc for LogService.
var LogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateLog", Handler: _LogService_CreateLog_Handler},
		{MethodName: "Execute", Handler: _LogService_Execute_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blocklog/v1/log.proto",
}
