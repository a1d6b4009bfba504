package service

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/internal/store"
	grpcpkg "github.com/msto63/sexpr/pkg/core/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "sexpr.Converter"

const (
	ConvertMethod  = "/" + ServiceName + "/Convert"
	TokenizeMethod = "/" + ServiceName + "/Tokenize"
)

// ConverterServer is the server API of the Converter service. Requests carry
// the expression as a string; replies are Reply documents encoded as a
// protobuf Struct.
type ConverterServer interface {
	Convert(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	Tokenize(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes the Converter service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConverterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Convert", Handler: convertHandler},
		{MethodName: "Tokenize", Handler: tokenizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sexpr/converter",
}

// Register registers srv with a gRPC server
func Register(s grpc.ServiceRegistrar, srv ConverterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func convertHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConverterServer).Convert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConvertMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConverterServer).Convert(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func tokenizeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConverterServer).Tokenize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenizeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConverterServer).Tokenize(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCServer adapts a Converter to ConverterServer
type GRPCServer struct {
	converter *Converter
}

// Ensure GRPCServer implements ConverterServer
var _ ConverterServer = (*GRPCServer)(nil)

// NewGRPCServer creates the gRPC adapter
func NewGRPCServer(converter *Converter) *GRPCServer {
	return &GRPCServer{converter: converter}
}

// Convert implements ConverterServer.Convert
func (s *GRPCServer) Convert(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	reply, err := s.converter.Convert(ctx, store.SourceGRPC, grpcpkg.GetRequestID(ctx), req.GetValue())
	if err != nil {
		return nil, grpcpkg.StatusFromError(err)
	}
	return encodeReply(reply)
}

// Tokenize implements ConverterServer.Tokenize
func (s *GRPCServer) Tokenize(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	reply, err := s.converter.Tokenize(ctx, req.GetValue())
	if err != nil {
		return nil, grpcpkg.StatusFromError(err)
	}
	return encodeReply(reply)
}

func encodeReply(reply *Reply) (*structpb.Struct, error) {
	data, err := json.Marshal(reply)
	if err != nil {
		return nil, grpcpkg.StatusFromError(mdwerror.Wrap(err, "failed to encode reply").WithCode(mdwerror.CodeInternal))
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, grpcpkg.StatusFromError(mdwerror.Wrap(err, "failed to encode reply").WithCode(mdwerror.CodeInternal))
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, grpcpkg.StatusFromError(mdwerror.Wrap(err, "failed to encode reply").WithCode(mdwerror.CodeInternal))
	}
	return st, nil
}

func decodeReply(st *structpb.Struct) (*Reply, error) {
	data, err := json.Marshal(st.AsMap())
	if err != nil {
		return nil, err
	}
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
