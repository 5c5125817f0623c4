package main

import (
	"time"

	"github.com/alecthomas/kong"
)

// config holds the command-line flags. Every flag falls back to an
// environment variable, which may come from .env.
type config struct {
	Addr          string        `name:"addr" help:"HTTP listen address." default:":8080" env:"ADDR"`
	SessionTTL    time.Duration `name:"session-ttl" help:"Idle time after which a calculator session expires." default:"30m" env:"SESSION_TTL"`
	SweepInterval time.Duration `name:"sweep-interval" help:"How often idle sessions are swept." default:"1m" env:"SESSION_SWEEP_INTERVAL"`
	MaxSessions   int           `name:"max-sessions" help:"Maximum number of live calculator sessions." default:"10000" env:"MAX_SESSIONS"`
	LogLevel      string        `name:"log-level" help:"Minimum log level (debug, info, warn, error)." default:"info" env:"LOG_LEVEL"`
	OTelLogs      bool          `name:"otel-logs" help:"Also export logs over OTLP." env:"OTEL_LOGS_ENABLED"`
}

func parseConfig(args []string) (config, error) {
	var cfg config

	parser, err := kong.New(&cfg,
		kong.Name("calculator-api"),
		kong.Description("Session-based calculator service."),
	)
	if err != nil {
		return config{}, err
	}

	if _, err := parser.Parse(args); err != nil {
		return config{}, err
	}

	return cfg, nil
}
