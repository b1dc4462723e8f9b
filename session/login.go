package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// EnvPassword is the environment variable holding a plaintext login password.
const EnvPassword = "DSC_PASSWORD"

// LoginOptions are the per-invocation login inputs. Empty fields fall back
// to LoginDefaults.
type LoginOptions struct {
	Account   string
	Password  string
	PassEntry string
}

// LoginDefaults are the configured fallbacks for LoginOptions.
type LoginDefaults struct {
	Account   string
	PassEntry string
	Password  string
}

// LoginFlow performs a full account/password login, including the
// one-time-code step for accounts with a second factor.
type LoginFlow struct {
	auth     Authenticator
	store    Store
	defaults LoginDefaults
	pass     PasswordLookup
	otp      OTPPrompter
	getenv   func(string) string
	reporter Reporter
	log      zerolog.Logger
}

func (l *LoginFlow) account(opts LoginOptions) (string, error) {
	switch {
	case opts.Account != "":
		return opts.Account, nil
	case l.defaults.Account != "":
		return l.defaults.Account, nil
	default:
		return "", ErrNoAccount
	}
}

// password resolves in order: explicit option, password manager,
// environment, configured default.
func (l *LoginFlow) password(ctx context.Context, opts LoginOptions) (string, error) {
	if opts.Password != "" {
		return opts.Password, nil
	}

	entry := opts.PassEntry
	if entry == "" {
		entry = l.defaults.PassEntry
	}
	if entry != "" && l.pass != nil {
		return l.pass.Lookup(ctx, entry)
	}

	if pw := l.getenv(EnvPassword); pw != "" {
		l.log.Debug().Str("env", EnvPassword).Msg("using password from environment variable")
		return pw, nil
	}

	if l.defaults.Password != "" {
		return l.defaults.Password, nil
	}
	return "", ErrNoPassword
}

// Login authenticates and persists the resulting session unconditionally.
func (l *LoginFlow) Login(ctx context.Context, opts LoginOptions) (*Record, error) {
	account, err := l.account(opts)
	if err != nil {
		return nil, err
	}
	l.log.Debug().Str("account", account).Msg("using account")

	password, err := l.password(ctx, opts)
	if err != nil {
		return nil, err
	}

	l.reporter.LoggingIn(account)
	rec, err := l.auth.Login(ctx, Credentials{Account: account, Password: password})
	if err != nil {
		return nil, err
	}
	if !rec.Success {
		l.log.Debug().Str("message", rec.Message).Msg("login result")
		return nil, loginFailed(rec)
	}

	if rec.RequireSecondFactor {
		rec, err = l.secondFactor(ctx, rec)
		if err != nil {
			return nil, err
		}
	}

	if _, err := rec.usableToken(); err != nil {
		return nil, fmt.Errorf("%w: no token in server response", ErrLoginFailed)
	}

	// an aborted login must not replace the stored session
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.reporter.AuthSuccess(rec.Account, rec.Collective)

	saved, err := l.store.Save(rec)
	if err != nil {
		return nil, err
	}
	if saved {
		l.reporter.TokenSaved(l.store.Path())
	}
	return rec, nil
}

func (l *LoginFlow) secondFactor(ctx context.Context, prior *Record) (*Record, error) {
	l.reporter.SecondFactorRequired()
	if l.otp == nil {
		return nil, fmt.Errorf("%w: a one-time code is required but no terminal is available", ErrLoginFailed)
	}

	code, err := l.otp.PromptOTP(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading one-time code: %w", err)
	}

	rec, err := l.auth.LoginOTP(ctx, prior.Token, code)
	if err != nil {
		return nil, err
	}
	if !rec.Success {
		return nil, loginFailed(rec)
	}
	return rec, nil
}

func loginFailed(rec *Record) error {
	if rec.Message == "" {
		return ErrLoginFailed
	}
	return fmt.Errorf("%w: %s", ErrLoginFailed, rec.Message)
}
