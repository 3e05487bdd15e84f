// Package config provides loading and environment overlay for blocklog
// configuration. It exposes a Default() baseline that file (JSON or YAML)
// and BLOCKLOG_* environment values are layered onto.
//
// Example:
//
//	cfg, err := config.Load("/etc/blocklog.yaml")
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	rt, _ := runtime.Open(runtime.Options{DataDir: config.DefaultDataDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
package config
