package grpcserver

import (
	"context"

	"google.golang.org/protobuf/types/known/wrapperspb"

	blocklogv1 "github.com/rzbill/blocklog/api/blocklog/v1"
	"github.com/rzbill/blocklog/internal/auth"
	"github.com/rzbill/blocklog/internal/program"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

type logSvc struct {
	blocklogv1.UnimplementedLogServiceServer
	prog   *program.Program
	logger logpkg.Logger
}

func (s *logSvc) CreateLog(ctx context.Context, req *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error) {
	addr, _, err := s.prog.CreateLog(ctx, auth.CallerFrom(ctx), req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.String(addr.String()), nil
}

func (s *logSvc) Execute(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.UInt32Value, error) {
	res, err := s.prog.ProcessRaw(ctx, auth.CallerFrom(ctx), req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.UInt32(uint32(res.Len)), nil
}

func (s *logSvc) toStatus(ctx context.Context, err error) error {
	st := statusFor(err)
	if _, ok := program.AsError(err); !ok {
		s.logger.WithContext(ctx).Error("rpc failed", logpkg.Err(err))
	}
	return st.Err()
}
