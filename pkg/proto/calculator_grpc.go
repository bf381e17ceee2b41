package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Описание сервиса из calculator.proto. Все сообщения - google.protobuf.Struct,
// поэтому сгенерированные типы сообщений не нужны.

const (
	ServiceName = "calculator.CalculatorService"

	// Ключи метаданных
	AuthorizationKey = "authorization"
	SessionKeyHeader = "session-key"

	CalculatorService_Login_FullMethodName         = "/calculator.CalculatorService/Login"
	CalculatorService_Calculate_FullMethodName     = "/calculator.CalculatorService/Calculate"
	CalculatorService_ListHistory_FullMethodName   = "/calculator.CalculatorService/ListHistory"
	CalculatorService_ClearHistory_FullMethodName  = "/calculator.CalculatorService/ClearHistory"
	CalculatorService_DeleteHistory_FullMethodName = "/calculator.CalculatorService/DeleteHistory"
)

type CalculatorServiceClient interface {
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Calculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ClearHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type calculatorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCalculatorServiceClient(cc grpc.ClientConnInterface) CalculatorServiceClient {
	return &calculatorServiceClient{cc}
}

func (c *calculatorServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *calculatorServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculatorService_Login_FullMethodName, in, opts...)
}

func (c *calculatorServiceClient) Calculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculatorService_Calculate_FullMethodName, in, opts...)
}

func (c *calculatorServiceClient) ListHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculatorService_ListHistory_FullMethodName, in, opts...)
}

func (c *calculatorServiceClient) ClearHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculatorService_ClearHistory_FullMethodName, in, opts...)
}

func (c *calculatorServiceClient) DeleteHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CalculatorService_DeleteHistory_FullMethodName, in, opts...)
}

// CalculatorServiceServer - серверная часть. Реализации должны встраивать UnimplementedCalculatorServiceServer.
type CalculatorServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Calculate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedCalculatorServiceServer()
}

type UnimplementedCalculatorServiceServer struct{}

func (UnimplementedCalculatorServiceServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedCalculatorServiceServer) Calculate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Calculate not implemented")
}
func (UnimplementedCalculatorServiceServer) ListHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListHistory not implemented")
}
func (UnimplementedCalculatorServiceServer) ClearHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ClearHistory not implemented")
}
func (UnimplementedCalculatorServiceServer) DeleteHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteHistory not implemented")
}
func (UnimplementedCalculatorServiceServer) mustEmbedUnimplementedCalculatorServiceServer() {}

func RegisterCalculatorServiceServer(s grpc.ServiceRegistrar, srv CalculatorServiceServer) {
	s.RegisterService(&CalculatorService_ServiceDesc, srv)
}

type unaryMethod func(srv CalculatorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CalculatorServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CalculatorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Login",
			Handler: unaryHandler(CalculatorService_Login_FullMethodName, func(srv CalculatorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.Login(ctx, in)
			}),
		},
		{
			MethodName: "Calculate",
			Handler: unaryHandler(CalculatorService_Calculate_FullMethodName, func(srv CalculatorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.Calculate(ctx, in)
			}),
		},
		{
			MethodName: "ListHistory",
			Handler: unaryHandler(CalculatorService_ListHistory_FullMethodName, func(srv CalculatorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.ListHistory(ctx, in)
			}),
		},
		{
			MethodName: "ClearHistory",
			Handler: unaryHandler(CalculatorService_ClearHistory_FullMethodName, func(srv CalculatorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.ClearHistory(ctx, in)
			}),
		},
		{
			MethodName: "DeleteHistory",
			Handler: unaryHandler(CalculatorService_DeleteHistory_FullMethodName, func(srv CalculatorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.DeleteHistory(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calculator.proto",
}
