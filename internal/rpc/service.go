package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "krankmeldung.v1.KrankmeldungService"

const (
	MethodLogin              = "/" + ServiceName + "/Login"
	MethodListKrankmeldungen = "/" + ServiceName + "/ListKrankmeldungen"
	MethodGetKrankmeldung    = "/" + ServiceName + "/GetKrankmeldung"
	MethodCreateKrankmeldung = "/" + ServiceName + "/CreateKrankmeldung"
	MethodUpdateStatus       = "/" + ServiceName + "/UpdateStatus"
	MethodListAenderungen    = "/" + ServiceName + "/ListAenderungen"
	MethodDatabaseStats      = "/" + ServiceName + "/DatabaseStats"
)

type KrankmeldungServiceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ListKrankmeldungen(context.Context, *ListKrankmeldungenRequest) (*ListKrankmeldungenResponse, error)
	GetKrankmeldung(context.Context, *GetKrankmeldungRequest) (*KrankmeldungResponse, error)
	CreateKrankmeldung(context.Context, *CreateKrankmeldungRequest) (*KrankmeldungResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*KrankmeldungResponse, error)
	ListAenderungen(context.Context, *ListAenderungenRequest) (*ListAenderungenResponse, error)
	DatabaseStats(context.Context, *DatabaseStatsRequest) (*structpb.Struct, error)
}

// UnimplementedKrankmeldungServiceServer can be embedded to stay forward
// compatible.
type UnimplementedKrankmeldungServiceServer struct{}

func (UnimplementedKrankmeldungServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedKrankmeldungServiceServer) ListKrankmeldungen(context.Context, *ListKrankmeldungenRequest) (*ListKrankmeldungenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListKrankmeldungen not implemented")
}
func (UnimplementedKrankmeldungServiceServer) GetKrankmeldung(context.Context, *GetKrankmeldungRequest) (*KrankmeldungResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetKrankmeldung not implemented")
}
func (UnimplementedKrankmeldungServiceServer) CreateKrankmeldung(context.Context, *CreateKrankmeldungRequest) (*KrankmeldungResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateKrankmeldung not implemented")
}
func (UnimplementedKrankmeldungServiceServer) UpdateStatus(context.Context, *UpdateStatusRequest) (*KrankmeldungResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateStatus not implemented")
}
func (UnimplementedKrankmeldungServiceServer) ListAenderungen(context.Context, *ListAenderungenRequest) (*ListAenderungenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAenderungen not implemented")
}
func (UnimplementedKrankmeldungServiceServer) DatabaseStats(context.Context, *DatabaseStatsRequest) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DatabaseStats not implemented")
}

func RegisterKrankmeldungServiceServer(s grpc.ServiceRegistrar, srv KrankmeldungServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method handler for one RPC; generated code spells this out
// per method.
func unary[Req any, Resp any](method string, call func(KrankmeldungServiceServer, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(KrankmeldungServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KrankmeldungServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(MethodLogin, KrankmeldungServiceServer.Login)},
		{MethodName: "ListKrankmeldungen", Handler: unary(MethodListKrankmeldungen, KrankmeldungServiceServer.ListKrankmeldungen)},
		{MethodName: "GetKrankmeldung", Handler: unary(MethodGetKrankmeldung, KrankmeldungServiceServer.GetKrankmeldung)},
		{MethodName: "CreateKrankmeldung", Handler: unary(MethodCreateKrankmeldung, KrankmeldungServiceServer.CreateKrankmeldung)},
		{MethodName: "UpdateStatus", Handler: unary(MethodUpdateStatus, KrankmeldungServiceServer.UpdateStatus)},
		{MethodName: "ListAenderungen", Handler: unary(MethodListAenderungen, KrankmeldungServiceServer.ListAenderungen)},
		{MethodName: "DatabaseStats", Handler: unary(MethodDatabaseStats, KrankmeldungServiceServer.DatabaseStats)},
	},
	Metadata: "krankmeldung/v1/krankmeldung.proto",
}

// Client calls the service over any connection, always with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	return c.cc.Invoke(ctx, method, in, out, append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)...)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, MethodLogin, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListKrankmeldungen(ctx context.Context, in *ListKrankmeldungenRequest, opts ...grpc.CallOption) (*ListKrankmeldungenResponse, error) {
	out := new(ListKrankmeldungenResponse)
	if err := c.invoke(ctx, MethodListKrankmeldungen, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetKrankmeldung(ctx context.Context, in *GetKrankmeldungRequest, opts ...grpc.CallOption) (*KrankmeldungResponse, error) {
	out := new(KrankmeldungResponse)
	if err := c.invoke(ctx, MethodGetKrankmeldung, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateKrankmeldung(ctx context.Context, in *CreateKrankmeldungRequest, opts ...grpc.CallOption) (*KrankmeldungResponse, error) {
	out := new(KrankmeldungResponse)
	if err := c.invoke(ctx, MethodCreateKrankmeldung, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*KrankmeldungResponse, error) {
	out := new(KrankmeldungResponse)
	if err := c.invoke(ctx, MethodUpdateStatus, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAenderungen(ctx context.Context, in *ListAenderungenRequest, opts ...grpc.CallOption) (*ListAenderungenResponse, error) {
	out := new(ListAenderungenResponse)
	if err := c.invoke(ctx, MethodListAenderungen, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DatabaseStats(ctx context.Context, in *DatabaseStatsRequest, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, MethodDatabaseStats, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
