package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"github.com/go-authgate/dsc/session"
)

// command is one dsc subcommand.
type command struct {
	name    string
	summary string
	flags   *pflag.FlagSet

	// interactive commands may read from the terminal (one-time codes).
	interactive bool

	run func(ctx context.Context, a *app) error
}

func commands() []*command {
	return []*command{loginCommand(), logoutCommand(), sessionCommand()}
}

func lookupCommand(args []string) (*command, []string, error) {
	for _, c := range commands() {
		if c.name == args[0] {
			return c, args[1:], nil
		}
	}
	return nil, nil, fmt.Errorf("unknown command %q (try login, logout or session)", args[0])
}

func loginCommand() *command {
	var opts session.LoginOptions

	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fs.StringVarP(&opts.Account, "user", "u", "", "Account name (default: default_account from the config file)")
	fs.StringVar(&opts.Password, "password", "", "Password in plain text (or DSC_PASSWORD env)")
	fs.StringVar(&opts.PassEntry, "pass-entry", "", "Entry for the pass password manager (default: pass_entry from the config file)")

	return &command{
		name:        "login",
		summary:     "Log in with account and password and store the session",
		flags:       fs,
		interactive: true,
		run: func(ctx context.Context, a *app) error {
			if opts.Password != "" && opts.PassEntry != "" {
				return fmt.Errorf("--password and --pass-entry are mutually exclusive")
			}

			rec, err := a.manager.Login(ctx, opts)
			if err != nil {
				return err
			}
			a.display.Done(tokenPreview(rec.Token), session.RefreshThreshold(rec.ValidFor()))
			return nil
		},
	}
}

func logoutCommand() *command {
	return &command{
		name:    "logout",
		summary: "Remove the stored session",
		flags:   pflag.NewFlagSet("logout", pflag.ContinueOnError),
		run: func(_ context.Context, a *app) error {
			if err := a.manager.Logout(); err != nil {
				return err
			}
			a.display.LoggedOut(a.store.Path())
			return nil
		},
	}
}

func sessionCommand() *command {
	var verify bool

	fs := pflag.NewFlagSet("session", pflag.ContinueOnError)
	fs.BoolVar(&verify, "verify", false, "Also verify the token against the server")

	return &command{
		name:    "session",
		summary: "Print a valid session token, refreshing it if needed",
		flags:   fs,
		run: func(ctx context.Context, a *app) error {
			src := a.manager.TokenSource(ctx, a.settings.session)
			tok, err := src.Token()
			if err != nil {
				return err
			}
			a.log.Debug().Time("refresh_due", tok.Expiry).Msg("obtained session token")

			if verify {
				a.display.Verifying()
				body, err := a.client.Collective(ctx, oauth2.ReuseTokenSource(tok, src))
				if err != nil {
					a.display.VerifyFailed(err)
					return err
				}
				a.display.VerifyOK(body)
			}

			fmt.Fprintln(os.Stdout, tok.AccessToken)
			a.display.Done(tokenPreview(tok.AccessToken), time.Until(tok.Expiry))
			return nil
		},
	}
}

func tokenPreview(token string) string {
	if len(token) > 50 {
		return token[:50]
	}
	return token
}
