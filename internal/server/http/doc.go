// Package httpserver provides the JSON gateway for blocklog: health and
// stats, event log create/append, and raw instruction execution.
//
// Every request gets an X-Request-ID. Callers authenticate with an HS256
// bearer token or, when allowed, an X-Caller header, and are rate limited
// per caller.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
