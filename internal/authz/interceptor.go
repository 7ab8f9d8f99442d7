package authz

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vyrodovalexey/avauthz/internal/observability"
)

// GRPCAuthorizer authorizes gRPC requests using incoming metadata.
type GRPCAuthorizer struct {
	engine *Engine
	config *Config
	logger observability.Logger
}

// GRPCOption is a functional option for the gRPC authorizer.
type GRPCOption func(*GRPCAuthorizer)

// WithGRPCLogger sets the logger.
func WithGRPCLogger(logger observability.Logger) GRPCOption {
	return func(a *GRPCAuthorizer) {
		a.logger = logger
	}
}

// NewGRPCAuthorizer creates a new gRPC authorizer.
func NewGRPCAuthorizer(engine *Engine, config *Config, opts ...GRPCOption) *GRPCAuthorizer {
	a := &GRPCAuthorizer{
		engine: engine,
		config: config,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize evaluates the incoming metadata in ctx. fullMethod is the
// gRPC method path, checked against the configured skip list.
func (a *GRPCAuthorizer) Authorize(ctx context.Context, fullMethod string) *Decision {
	if a.config != nil && (!a.config.Enabled || a.config.ShouldSkipPath(fullMethod)) {
		return &Decision{Allowed: true, Reason: "authorization skipped"}
	}
	return a.engine.Evaluate(ctx, RequestFromMetadata(ctx))
}

// RequestFromMetadata builds an authorization request from incoming gRPC
// metadata. Multi-value keys contribute their first value only.
func RequestFromMetadata(ctx context.Context) *Request {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return &Request{}
	}
	headers := make(map[string]string, md.Len())
	for key, values := range md {
		if len(values) > 0 {
			headers[strings.ToLower(key)] = values[0]
		}
	}
	return &Request{Headers: headers}
}

// UnaryInterceptor returns a unary server interceptor enforcing
// authorization decisions.
func (a *GRPCAuthorizer) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		decision := a.Authorize(ctx, info.FullMethod)
		if !decision.Allowed {
			a.logger.Debug("request denied",
				observability.String("method", info.FullMethod),
				observability.String("policy", decision.Policy),
			)
			return nil, status.Error(codes.PermissionDenied, decision.Reason)
		}
		return handler(ctx, req)
	}
}

// StreamInterceptor returns a stream server interceptor enforcing
// authorization decisions.
func (a *GRPCAuthorizer) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		decision := a.Authorize(ss.Context(), info.FullMethod)
		if !decision.Allowed {
			a.logger.Debug("stream denied",
				observability.String("method", info.FullMethod),
				observability.String("policy", decision.Policy),
			)
			return status.Error(codes.PermissionDenied, decision.Reason)
		}
		return handler(srv, ss)
	}
}
