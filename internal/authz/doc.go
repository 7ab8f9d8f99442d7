// Package authz provides header-based authorization for HTTP and gRPC
// request paths.
//
// Policies are sets of header rules compiled into immutable matchers
// (see internal/matcher). A policy matches a request when every one of
// its header rules matches; the engine evaluates deny policies before
// allow policies and falls back to a configured default action when
// nothing matches.
//
// The package provides:
//   - a YAML policy configuration with construction-time validation
//   - an evaluation engine with atomic policy-set replacement
//   - a file loader with fsnotify-based hot reload
//   - HTTP middleware and gRPC interceptors that enforce decisions
//   - prometheus metrics for evaluations and decisions
//
// Usage:
//
//	cfg, err := authz.LoadConfig("policies.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := authz.NewEngine(cfg, authz.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// HTTP
//	handler := authz.NewHTTPAuthorizer(engine, cfg).Middleware()(mux)
//
//	// gRPC
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(authz.NewGRPCAuthorizer(engine, cfg).UnaryInterceptor()),
//	)
package authz
