package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
)

// CodeFor maps an mdwerror code to a gRPC status code
func CodeFor(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeInvalidInput, mdwerror.CodeSyntax, mdwerror.CodeInvalidValue:
		return codes.InvalidArgument
	case mdwerror.CodeInputTooLarge:
		return codes.ResourceExhausted
	case mdwerror.CodeNotFound, mdwerror.CodeMissingFile:
		return codes.NotFound
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeServiceUnavailable, mdwerror.CodeConnectionFailed, mdwerror.CodeNetworkError:
		return codes.Unavailable
	case mdwerror.CodeUnknown:
		return codes.Unknown
	default:
		return codes.Internal
	}
}

// StatusFromError converts err into a gRPC status error. Errors that are
// already statuses pass through; mdwerror values keep their message.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var merr *mdwerror.Error
	if errors.As(err, &merr) {
		return status.Error(CodeFor(merr.Code()), merr.Message())
	}
	return status.Error(codes.Internal, err.Error())
}

// ErrorFromStatus converts a gRPC status error returned to a client into an
// mdwerror carrying the closest code
func ErrorFromStatus(err error, operation string) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return mdwerror.Wrap(err, "rpc failed").WithCode(mdwerror.CodeNetworkError).WithOperation(operation)
	}

	code := mdwerror.CodeInternal
	switch st.Code() {
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.ResourceExhausted:
		code = mdwerror.CodeInputTooLarge
	case codes.NotFound:
		code = mdwerror.CodeNotFound
	case codes.DeadlineExceeded:
		code = mdwerror.CodeTimeout
	case codes.Unavailable:
		code = mdwerror.CodeServiceUnavailable
	}

	return mdwerror.New(st.Message()).
		WithCode(code).
		WithOperation(operation).
		WithDetail("grpc_code", st.Code().String())
}
