package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rzbill/blocklog/internal/auth"
	"github.com/rzbill/blocklog/internal/runtime"
	"github.com/rzbill/blocklog/internal/server/http/controllers"
	"github.com/rzbill/blocklog/pkg/id"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

type Server struct {
	rt      *runtime.Runtime
	srv     *http.Server
	lis     net.Listener
	logger  logpkg.Logger
	limiter *Limiter
}

func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("http"))
	cfg := rt.Config()

	mux := http.NewServeMux()
	controllers.NewControllerRegistry(rt, logger).RegisterAllRoutes(mux)

	s := &Server{rt: rt, logger: logger}
	var h http.Handler = mux
	if cfg.RateLimit.RequestsPerSecond > 0 {
		s.limiter = NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		h = rateLimit(s.limiter, h)
	}
	h = authenticate(auth.New(cfg.Auth), h)
	h = requestID(id.NewGenerator(), logger, h)
	s.srv = &http.Server{
		Handler:           cors(h),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logpkg.ToStdLogger(logger),
	}
	return s
}

// Handler returns the fully wrapped handler, for embedding and tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		s.stopLimiter()
		return nil
	case err := <-errCh:
		s.stopLimiter()
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
	s.stopLimiter()
}

func (s *Server) stopLimiter() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Caller, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
