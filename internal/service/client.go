package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	grpcpkg "github.com/msto63/sexpr/pkg/core/grpc"
)

// Client calls a remote Converter service
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps an existing connection
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Dial connects to the Converter service at cfg.Target
func Dial(cfg grpcpkg.ClientConfig, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpcpkg.Dial(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// Convert converts input remotely. Syntax errors come back as a Reply with
// OK false.
func (c *Client) Convert(ctx context.Context, input string) (*Reply, error) {
	return c.invoke(ctx, ConvertMethod, "service.Client.Convert", input)
}

// Tokenize tokenizes input remotely
func (c *Client) Tokenize(ctx context.Context, input string) (*Reply, error) {
	return c.invoke(ctx, TokenizeMethod, "service.Client.Tokenize", input)
}

func (c *Client) invoke(ctx context.Context, method, operation, input string) (*Reply, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, wrapperspb.String(input), out); err != nil {
		return nil, grpcpkg.ErrorFromStatus(err, operation)
	}

	reply, err := decodeReply(out)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to decode reply").
			WithCode(mdwerror.CodeInternal).
			WithOperation(operation)
	}
	return reply, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
