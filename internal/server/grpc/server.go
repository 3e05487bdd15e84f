package grpcserver

import (
	"context"
	"net"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	blocklogv1 "github.com/rzbill/blocklog/api/blocklog/v1"
	"github.com/rzbill/blocklog/internal/auth"
	"github.com/rzbill/blocklog/internal/runtime"
	"github.com/rzbill/blocklog/pkg/id"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	lis    net.Listener
	logger logpkg.Logger
}

// New constructs a gRPC server and registers services. Extra options are
// appended after the built-in interceptors.
func New(rt *runtime.Runtime, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("grpc"))
	base := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			requestIDInterceptor(id.NewGenerator(), logger),
			authInterceptor(auth.New(rt.Config().Auth)),
		),
	}
	s := &Server{rt: rt, logger: logger, grpc: grpc.NewServer(append(base, opts...)...)}
	healthpb.RegisterHealthServer(s.grpc, &healthSvc{rt: rt})
	blocklogv1.RegisterLogServiceServer(s.grpc, &logSvc{prog: rt.Program(), logger: logger})
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
