package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type unaryFunc func(*Service, context.Context, *structpb.Struct) (*structpb.Struct, error)

// Method names of ServiceName.
const (
	MethodCreateSession = "CreateSession"
	MethodDeleteSession = "DeleteSession"
	MethodNewGame       = "NewGame"
	MethodPullSingle    = "PullSingle"
	MethodPullTen       = "PullTen"
	MethodInspectPity   = "InspectPity"
	MethodInspectTable  = "InspectTable"
	MethodHistory       = "History"
	MethodStats         = "Stats"
	MethodExport        = "Export"
	MethodSimulate      = "Simulate"
)

func unary(name string, fn unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			svc := srv.(*Service)
			if interceptor == nil {
				return fn(svc, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(svc, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodCreateSession, (*Service).CreateSession),
		unary(MethodDeleteSession, (*Service).DeleteSession),
		unary(MethodNewGame, (*Service).NewGame),
		unary(MethodPullSingle, (*Service).PullSingle),
		unary(MethodPullTen, (*Service).PullTen),
		unary(MethodInspectPity, (*Service).InspectPity),
		unary(MethodInspectTable, (*Service).InspectTable),
		unary(MethodHistory, (*Service).History),
		unary(MethodStats, (*Service).Stats),
		unary(MethodExport, (*Service).Export),
		unary(MethodSimulate, (*Service).Simulate),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gacha/v1/gacha.proto",
}

// Client calls ServiceName over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with a JSON-shaped request and returns the response
// as a plain map.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
