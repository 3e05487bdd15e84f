package grpcserver

import (
	"context"
	"errors"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	blocklogv1 "github.com/rzbill/blocklog/api/blocklog/v1"
	"github.com/rzbill/blocklog/internal/program"
)

// codeFor maps a program error to a gRPC code.
func codeFor(pe *program.Error) codes.Code {
	switch pe.Code {
	case program.CodeMissingSigner:
		return codes.Unauthenticated
	case program.CodePolicyDenied:
		return codes.PermissionDenied
	case program.CodeSlotAlreadyExists:
		return codes.AlreadyExists
	case program.CodeSlotMissing:
		return codes.NotFound
	case program.CodeInvalidInstruction:
		return codes.InvalidArgument
	}
	switch pe.Kind() {
	case program.KindCapacity, program.KindExhaustion:
		return codes.ResourceExhausted
	default:
		return codes.FailedPrecondition
	}
}

// statusFor converts err into a status. Program errors carry an ErrorInfo
// detail with their name, numeric code and kind.
func statusFor(err error) *status.Status {
	pe, ok := program.AsError(err)
	if !ok {
		switch {
		case errors.Is(err, context.Canceled):
			return status.New(codes.Canceled, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return status.New(codes.DeadlineExceeded, err.Error())
		}
		return status.New(codes.Internal, "internal error")
	}
	st := status.New(codeFor(pe), pe.Error())
	withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: pe.Code.Name(),
		Domain: blocklogv1.ErrorDomain,
		Metadata: map[string]string{
			"code": strconv.FormatUint(uint64(pe.Code), 10),
			"kind": pe.Kind().String(),
		},
	})
	if derr != nil {
		return st
	}
	return withInfo
}
