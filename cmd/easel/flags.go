// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --print, --output-format, --backend, --profile, --session, --version

package main

import (
	"flag"
	"time"
)

type cliArgs struct {
	print        bool
	outputFormat string
	backend      string
	profile      string
	session      string
	logLevel     string
	timeout      time.Duration
	version      bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.BoolVar(&args.print, "p", false, "Non-interactive print mode")
	flag.BoolVar(&args.print, "print", false, "Non-interactive print mode")
	flag.StringVar(&args.outputFormat, "output-format", "text", "Print mode output: text, json, stream-json")
	flag.StringVar(&args.backend, "backend", "", "Backend base URL (overrides config and EASEL_BACKEND)")
	flag.StringVar(&args.profile, "profile", "", "Connection profile from profiles.yaml")
	flag.StringVar(&args.session, "session", "", "Session id to open (default: backend's current session)")
	flag.StringVar(&args.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.DurationVar(&args.timeout, "timeout", 0, "Print mode deadline (e.g. 30s); 0 means none")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}

// remaining returns the non-flag command-line arguments.
func (a cliArgs) remaining() []string {
	return flag.Args()
}
