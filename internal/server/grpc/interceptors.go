package grpcserver

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	blocklogv1 "github.com/rzbill/blocklog/api/blocklog/v1"
	"github.com/rzbill/blocklog/internal/auth"
	"github.com/rzbill/blocklog/pkg/id"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

const metadataRequestID = "x-request-id"

func firstValue(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

func requestIDInterceptor(gen *id.Generator, logger logpkg.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		reqID := firstValue(md, metadataRequestID)
		if _, err := id.Parse(reqID); err != nil {
			reqID = gen.Next().String()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(metadataRequestID, reqID))
		ctx = context.WithValue(ctx, logpkg.RequestIDKey, reqID)
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.WithContext(ctx).Debug("rpc",
			logpkg.Str("method", info.FullMethod),
			logpkg.Str("code", status.Code(err).String()),
			logpkg.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

// authInterceptor resolves the caller from metadata. Calls without
// credentials proceed anonymously; invalid credentials are refused.
func authInterceptor(a *auth.Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		authz := firstValue(md, blocklogv1.MetadataAuthorization)
		hdr := firstValue(md, blocklogv1.MetadataCaller)
		if authz == "" && hdr == "" {
			return handler(ctx, req)
		}
		caller, err := a.Caller(authz, hdr)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrUnauthenticated) {
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
			return nil, status.Error(codes.Internal, err.Error())
		}
		return handler(auth.WithCaller(ctx, caller), req)
	}
}
