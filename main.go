package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/go-authgate/dsc/client"
	"github.com/go-authgate/dsc/session"
	"github.com/go-authgate/dsc/tui"
)

// globalFlags are the flags accepted before the command name.
type globalFlags struct {
	configFile  string
	docspellURL string
	session     string
	tokenFile   string
	verbose     int
}

// errUsage marks command-line mistakes; the usage text has been printed.
var errUsage = errors.New("usage error")

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var g globalFlags

	fs := pflag.NewFlagSet("dsc", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVarP(&g.configFile, "config", "c", "", "Config file (default: $DSC_CONFIG or <config dir>/dsc/config.toml)")
	fs.StringVar(&g.docspellURL, "docspell-url", "", "Server URL (default: http://localhost:7880 or DSC_DOCSPELL_URL env)")
	fs.StringVar(&g.session, "session", "", "Session token to use instead of the session file (or DSC_SESSION env)")
	fs.StringVar(&g.tokenFile, "token-file", "", "Session file (default: <config dir>/dsc/dsc-token.json or DSC_TOKEN_FILE env)")
	fs.CountVarP(&g.verbose, "verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dsc [flags] <command> [command flags]")
		fmt.Fprintln(os.Stderr, "\nCommands:")
		for _, c := range commands() {
			fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.summary)
		}
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fmt.Fprint(os.Stderr, fs.FlagUsages())
	}

	// pflag reports parse errors and prints the usage itself
	if err := fs.Parse(args); err != nil {
		return g, nil, errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return g, nil, errUsage
	}
	return g, fs.Args(), nil
}

// newLogger writes human readable logs to stderr. Verbosity 0 only shows
// warnings so the logger does not interfere with the displayer.
func newLogger(verbose int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbose >= 2:
		level = zerolog.TraceLevel
	case verbose == 1:
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// isTTY reports whether stderr is an interactive terminal.
// We check stderr because the TUI renders to stderr, allowing stdout to be piped.
func isTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func main() {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	global, rest, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cmd, cmdArgs, err := lookupCommand(rest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cmd.flags.Parse(cmdArgs); err != nil {
		os.Exit(2)
	}

	log := newLogger(global.verbose)

	cfg, err := readConfig(global.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s, err := resolveSettings(global, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Warn if using HTTP instead of HTTPS
	if strings.HasPrefix(strings.ToLower(s.serverURL), "http://") {
		log.Warn().Str("url", s.serverURL).Msg("using HTTP instead of HTTPS, tokens are transmitted in plaintext")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if isTTY() {
		// With keyboard input enabled the terminal is in raw mode and ctrl+c
		// reaches the model as a key press; the model calls stop.
		m := tui.NewModel(stop)
		opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}
		if !cmd.interactive {
			// WithInput(nil): disable stdin/keyboard input so BubbleTea skips terminal
			// capability queries. Ctrl+C is handled by signal.NotifyContext.
			opts = append(opts, tea.WithInput(nil))
		}
		p := tea.NewProgram(m, opts...)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Once the program is gone nobody can answer a prompt.
			defer stop()
			if _, err := p.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			}
		}()

		d := tui.NewProgramDisplayer(p)
		d.Banner()
		runErr := run(ctx, cmd, s, d, log)
		p.Quit() // let BubbleTea drain terminal query responses before exiting
		wg.Wait()
		if runErr != nil {
			os.Exit(1)
		}
	} else {
		d := tui.NewPlainDisplayer(os.Stderr, os.Stdin)
		d.Banner()
		if err := run(ctx, cmd, s, d, log); err != nil {
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, cmd *command, s settings, d tui.Displayer, log zerolog.Logger) error {
	a, err := newApp(s, d, log)
	if err != nil {
		d.Fatal(err)
		return err
	}

	if err := cmd.run(ctx, a); err != nil {
		d.Fatal(err)
		return err
	}
	return nil
}

// app bundles the collaborators a command needs.
type app struct {
	settings settings
	store    *session.FileStore
	client   *client.Client
	manager  *session.Manager
	display  tui.Displayer
	log      zerolog.Logger
}

func newApp(s settings, d tui.Displayer, log zerolog.Logger) (*app, error) {
	store := session.NewFileStore(s.tokenFile, log.With().Str("component", "store").Logger())

	c, err := client.New(s.serverURL, client.WithLogger(log.With().Str("component", "client").Logger()))
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(
		store,
		c,
		session.WithLogger(log.With().Str("component", "session").Logger()),
		session.WithReporter(d),
		session.WithOTPPrompter(d),
		session.WithPasswordLookup(session.PassCommand{Log: log}),
		session.WithLoginDefaults(session.LoginDefaults{
			Account:   s.config.DefaultAccount,
			PassEntry: s.config.PassEntry,
			Password:  s.config.Password,
		}),
	)

	return &app{
		settings: s,
		store:    store,
		client:   c,
		manager:  manager,
		display:  d,
		log:      log,
	}, nil
}
