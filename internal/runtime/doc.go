// Package runtime wires storage, config, and the event log program into a
// single-node blocklog instance. It exposes Open/Close, basic health checks,
// and counters for the transports.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Create a log and append
//	_, _, _ = rt.Program().CreateLog(ctx, "alice", 42)
//	_, _ = rt.Program().AppendEvent(ctx, "alice", 42, []byte("hello"))
package runtime
