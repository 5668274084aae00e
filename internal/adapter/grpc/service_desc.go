package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "mutualfund.v1.MutualFundService"

// MutualFundServiceServer is the server API for the mutual fund service.
// Requests and responses are google.protobuf.Struct messages.
type MutualFundServiceServer interface {
	ListFundHouses(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportFundHouses(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportSchemes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSchemes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPortfolio(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreatePortfolio(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MutualFundServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MutualFundServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MutualFundServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes MutualFundService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MutualFundServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("ListFundHouses", MutualFundServiceServer.ListFundHouses),
		methodDesc("ImportFundHouses", MutualFundServiceServer.ImportFundHouses),
		methodDesc("ImportSchemes", MutualFundServiceServer.ImportSchemes),
		methodDesc("ListSchemes", MutualFundServiceServer.ListSchemes),
		methodDesc("ListPortfolio", MutualFundServiceServer.ListPortfolio),
		methodDesc("CreatePortfolio", MutualFundServiceServer.CreatePortfolio),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mutualfund/v1/mutualfund.proto",
}

// RegisterMutualFundServiceServer registers srv with s
func RegisterMutualFundServiceServer(s grpc.ServiceRegistrar, srv MutualFundServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls MutualFundService over a client connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a MutualFundService client
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req and returns the response struct
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
