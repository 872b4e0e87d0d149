// ABOUTME: CLI entry point for easel
// ABOUTME: Parses flags, loads config and profile, binds a session, dispatches to mode

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	// termfix must be imported before any package that imports bubbletea.
	// It sets lipgloss.SetHasDarkBackground(true) in its init(), preventing
	// BubbleTea's tea_init.go from sending OSC 10/11 terminal queries whose
	// async responses leak garbage into the editor.
	_ "github.com/easelhq/easel/internal/termfix"

	"golang.org/x/term"

	"github.com/easelhq/easel/internal/apps"
	"github.com/easelhq/easel/internal/config"
	"github.com/easelhq/easel/internal/history"
	elog "github.com/easelhq/easel/internal/log"
	"github.com/easelhq/easel/internal/mention"
	"github.com/easelhq/easel/internal/mode/interactive"
	"github.com/easelhq/easel/internal/mode/print"
	"github.com/easelhq/easel/internal/turn"
	"github.com/easelhq/easel/pkg/easel"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args := parseFlags()

	if args.version {
		fmt.Printf("easel %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, print.ErrTurnFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run performs the full initialization sequence and dispatches to the
// selected mode.
func run(args cliArgs) error {
	ctx := context.Background()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	settings, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	profiles, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	profile, ok, err := profiles.Select(args.profile)
	if err != nil {
		return err
	}
	if ok {
		profile.Apply(settings)
	}

	// CLI flags win over config, env, and profile.
	if args.backend != "" {
		settings.BackendURL = args.backend
	}
	if args.logLevel != "" {
		settings.LogLevel = args.logLevel
	}
	elog.SetLevel(elog.ParseLevel(settings.LogLevel))

	prompt := strings.Join(args.remaining(), " ")
	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	printMode := args.print || prompt != "" || !stdinTTY

	client := easel.NewClient(settings.BackendURL,
		easel.WithLogf(elog.Debug),
		easel.WithHeaders(profile.Headers),
	)
	engine := turn.NewEngine(client)
	defer engine.Close()

	sessionID, err := resolveSession(ctx, client, args.session)
	if err != nil {
		return err
	}

	if printMode {
		return print.Run(ctx, print.Config{
			OutputFormat: args.outputFormat,
			SessionID:    sessionID,
			Timeout:      args.timeout,
		}, print.Deps{Engine: engine}, prompt, os.Stdout, os.Stderr)
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return errors.New("interactive mode needs a terminal (use -p for piped runs)")
	}

	// The TUI owns stderr; route logs to the log file instead.
	if err := config.EnsureDir(config.GlobalDir()); err == nil {
		if f, ferr := os.OpenFile(config.LogFile(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); ferr == nil {
			elog.SetOutput(f)
			defer f.Close()
		}
	}

	prefs, err := config.LoadPrefs()
	if err != nil {
		elog.Warn("loading prefs: %v", err)
		prefs = nil
	}

	catalog, err := apps.Scan(ctx)
	if err != nil {
		elog.Warn("app scan: %v", err)
		catalog = nil
	}
	var resolver mention.AppResolver
	if catalog != nil {
		resolver = catalog
	}
	codec := mention.NewCodec(resolver)

	workingDir := cwd
	if prefs != nil {
		if last := prefs.LastWorkingFolder(); last != "" {
			if info, serr := os.Stat(last); serr == nil && info.IsDir() {
				workingDir = last
			}
		}
	}

	nav := history.New(history.ClientSource{Client: client}, codec, settings.HistoryPageSize)

	return interactive.Run(interactive.Deps{
		Client:     client,
		Engine:     engine,
		Codec:      codec,
		Nav:        nav,
		Catalog:    catalog,
		Prefs:      prefs,
		Settings:   settings,
		SessionID:  sessionID,
		WorkingDir: workingDir,
		Version:    version,
	})
}

// resolveSession picks the session to bind: the explicit flag, the
// backend's current session, or a fresh one.
func resolveSession(ctx context.Context, client *easel.Client, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if info, err := client.CurrentSession(ctx); err == nil && info.ID != "" {
		return info.ID, nil
	}
	info, err := client.CreateSession(ctx, "")
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return info.ID, nil
}
