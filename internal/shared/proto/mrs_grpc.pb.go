package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MasterServiceClient is the client API for MasterService.
type MasterServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	ReportDone(ctx context.Context, in *ReportDoneRequest, opts ...grpc.CallOption) (*ReportDoneResponse, error)
	ReportFailed(ctx context.Context, in *ReportFailedRequest, opts ...grpc.CallOption) (*ReportFailedResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error)
}

type masterServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMasterServiceClient(cc grpc.ClientConnInterface) MasterServiceClient {
	return &masterServiceClient{cc}
}

func (c *masterServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.cc.Invoke(ctx, "/mrs.MasterService/Register", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterServiceClient) ReportDone(ctx context.Context, in *ReportDoneRequest, opts ...grpc.CallOption) (*ReportDoneResponse, error) {
	out := new(ReportDoneResponse)
	if err := c.cc.Invoke(ctx, "/mrs.MasterService/ReportDone", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterServiceClient) ReportFailed(ctx context.Context, in *ReportFailedRequest, opts ...grpc.CallOption) (*ReportFailedResponse, error) {
	out := new(ReportFailedResponse)
	if err := c.cc.Invoke(ctx, "/mrs.MasterService/ReportFailed", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterServiceClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	out := new(HeartbeatResponse)
	if err := c.cc.Invoke(ctx, "/mrs.MasterService/Heartbeat", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MasterServiceServer is the server API for MasterService.
type MasterServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	ReportDone(context.Context, *ReportDoneRequest) (*ReportDoneResponse, error)
	ReportFailed(context.Context, *ReportFailedRequest) (*ReportFailedResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
}

// UnimplementedMasterServiceServer may be embedded to have forward
// compatible implementations.
type UnimplementedMasterServiceServer struct{}

func (UnimplementedMasterServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedMasterServiceServer) ReportDone(context.Context, *ReportDoneRequest) (*ReportDoneResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportDone not implemented")
}
func (UnimplementedMasterServiceServer) ReportFailed(context.Context, *ReportFailedRequest) (*ReportFailedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportFailed not implemented")
}
func (UnimplementedMasterServiceServer) Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Heartbeat not implemented")
}

func RegisterMasterServiceServer(s grpc.ServiceRegistrar, srv MasterServiceServer) {
	s.RegisterService(&masterServiceServiceDesc, srv)
}

func _MasterService_Register_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServiceServer).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.MasterService/Register"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServiceServer).Register(ctx, req.(*RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterService_ReportDone_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportDoneRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServiceServer).ReportDone(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.MasterService/ReportDone"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServiceServer).ReportDone(ctx, req.(*ReportDoneRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterService_ReportFailed_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportFailedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServiceServer).ReportFailed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.MasterService/ReportFailed"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServiceServer).ReportFailed(ctx, req.(*ReportFailedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterService_Heartbeat_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HeartbeatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterServiceServer).Heartbeat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.MasterService/Heartbeat"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterServiceServer).Heartbeat(ctx, req.(*HeartbeatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var masterServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: "mrs.MasterService",
	HandlerType: (*MasterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: _MasterService_Register_Handler},
		{MethodName: "ReportDone", Handler: _MasterService_ReportDone_Handler},
		{MethodName: "ReportFailed", Handler: _MasterService_ReportFailed_Handler},
		{MethodName: "Heartbeat", Handler: _MasterService_Heartbeat_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mrs.proto",
}

// SlaveServiceClient is the client API for SlaveService.
type SlaveServiceClient interface {
	Assign(ctx context.Context, in *AssignRequest, opts ...grpc.CallOption) (*AssignResponse, error)
	Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*CancelResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	DropBucket(ctx context.Context, in *DropBucketRequest, opts ...grpc.CallOption) (*DropBucketResponse, error)
	Quit(ctx context.Context, in *QuitRequest, opts ...grpc.CallOption) (*QuitResponse, error)
}

type slaveServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSlaveServiceClient(cc grpc.ClientConnInterface) SlaveServiceClient {
	return &slaveServiceClient{cc}
}

func (c *slaveServiceClient) Assign(ctx context.Context, in *AssignRequest, opts ...grpc.CallOption) (*AssignResponse, error) {
	out := new(AssignResponse)
	if err := c.cc.Invoke(ctx, "/mrs.SlaveService/Assign", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *slaveServiceClient) Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*CancelResponse, error) {
	out := new(CancelResponse)
	if err := c.cc.Invoke(ctx, "/mrs.SlaveService/Cancel", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *slaveServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, "/mrs.SlaveService/Ping", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *slaveServiceClient) DropBucket(ctx context.Context, in *DropBucketRequest, opts ...grpc.CallOption) (*DropBucketResponse, error) {
	out := new(DropBucketResponse)
	if err := c.cc.Invoke(ctx, "/mrs.SlaveService/DropBucket", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *slaveServiceClient) Quit(ctx context.Context, in *QuitRequest, opts ...grpc.CallOption) (*QuitResponse, error) {
	out := new(QuitResponse)
	if err := c.cc.Invoke(ctx, "/mrs.SlaveService/Quit", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SlaveServiceServer is the server API for SlaveService.
type SlaveServiceServer interface {
	Assign(context.Context, *AssignRequest) (*AssignResponse, error)
	Cancel(context.Context, *CancelRequest) (*CancelResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	DropBucket(context.Context, *DropBucketRequest) (*DropBucketResponse, error)
	Quit(context.Context, *QuitRequest) (*QuitResponse, error)
}

type UnimplementedSlaveServiceServer struct{}

func (UnimplementedSlaveServiceServer) Assign(context.Context, *AssignRequest) (*AssignResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Assign not implemented")
}
func (UnimplementedSlaveServiceServer) Cancel(context.Context, *CancelRequest) (*CancelResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Cancel not implemented")
}
func (UnimplementedSlaveServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedSlaveServiceServer) DropBucket(context.Context, *DropBucketRequest) (*DropBucketResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DropBucket not implemented")
}
func (UnimplementedSlaveServiceServer) Quit(context.Context, *QuitRequest) (*QuitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Quit not implemented")
}

func RegisterSlaveServiceServer(s grpc.ServiceRegistrar, srv SlaveServiceServer) {
	s.RegisterService(&slaveServiceServiceDesc, srv)
}

func _SlaveService_Assign_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AssignRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlaveServiceServer).Assign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.SlaveService/Assign"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SlaveServiceServer).Assign(ctx, req.(*AssignRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SlaveService_Cancel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlaveServiceServer).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.SlaveService/Cancel"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SlaveServiceServer).Cancel(ctx, req.(*CancelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SlaveService_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlaveServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.SlaveService/Ping"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SlaveServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SlaveService_DropBucket_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DropBucketRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlaveServiceServer).DropBucket(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.SlaveService/DropBucket"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SlaveServiceServer).DropBucket(ctx, req.(*DropBucketRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _SlaveService_Quit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QuitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SlaveServiceServer).Quit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/mrs.SlaveService/Quit"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SlaveServiceServer).Quit(ctx, req.(*QuitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var slaveServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: "mrs.SlaveService",
	HandlerType: (*SlaveServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Assign", Handler: _SlaveService_Assign_Handler},
		{MethodName: "Cancel", Handler: _SlaveService_Cancel_Handler},
		{MethodName: "Ping", Handler: _SlaveService_Ping_Handler},
		{MethodName: "DropBucket", Handler: _SlaveService_DropBucket_Handler},
		{MethodName: "Quit", Handler: _SlaveService_Quit_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mrs.proto",
}
