package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
)

// ErrOTPCancelled is returned when the user aborts one-time code entry.
var ErrOTPCancelled = errors.New("one-time code entry cancelled")

// Displayer abstracts all output of the session commands. It also reads
// the one-time code when a login requires a second factor.
type Displayer interface {
	Banner()
	TokenResolved(origin string)
	TokenValid()
	NearExpiry(age, threshold time.Duration)
	Refreshing()
	RefreshOK()
	RefreshFailed(err error)
	LoggingIn(account string)
	SecondFactorRequired()
	PromptOTP(ctx context.Context) (string, error)
	AuthSuccess(account, collective string)
	TokenSaved(path string)
	LoggedOut(path string)
	Verifying()
	VerifyOK(body string)
	VerifyFailed(err error)
	Done(preview string, dueIn time.Duration)
	Fatal(err error)
}

// PlainDisplayer writes plain text output to w and reads one-time codes
// from in. Used when stderr is not a TTY (pipes, CI, SSH without pty).
type PlainDisplayer struct {
	w  io.Writer
	in *bufio.Reader
}

// NewPlainDisplayer creates a PlainDisplayer that writes to w and reads from in.
func NewPlainDisplayer(w io.Writer, in io.Reader) *PlainDisplayer {
	p := &PlainDisplayer{w: w}
	if in != nil {
		p.in = bufio.NewReader(in)
	}
	return p
}

func (p *PlainDisplayer) Banner() {
	fmt.Fprintln(p.w, "=== dsc session ===")
	fmt.Fprintln(p.w)
}

func (p *PlainDisplayer) TokenResolved(origin string) {
	fmt.Fprintf(p.w, "Using session token from %s\n", origin)
}

func (p *PlainDisplayer) TokenValid() {
	fmt.Fprintln(p.w, "Session token is still valid, using it...")
}

func (p *PlainDisplayer) NearExpiry(age, threshold time.Duration) {
	fmt.Fprintf(
		p.w,
		"Session token is nearly expired (age %s, threshold %s)\n",
		age.Round(time.Second),
		threshold.Round(time.Second),
	)
}

func (p *PlainDisplayer) Refreshing() {
	fmt.Fprintln(p.w, "Refreshing session...")
}

func (p *PlainDisplayer) RefreshOK() {
	fmt.Fprintln(p.w, "Session refreshed successfully!")
}

func (p *PlainDisplayer) RefreshFailed(err error) {
	fmt.Fprintf(p.w, "Refresh failed: %v\n", err)
}

func (p *PlainDisplayer) LoggingIn(account string) {
	fmt.Fprintf(p.w, "Logging in as %s...\n", account)
}

func (p *PlainDisplayer) SecondFactorRequired() {
	fmt.Fprintln(p.w, "Two-factor authentication required.")
}

// PromptOTP reads one line from the input.
func (p *PlainDisplayer) PromptOTP(ctx context.Context) (string, error) {
	if p.in == nil {
		return "", errors.New("no input available for one-time code")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.w, "Authentication code: ")
	line, err := p.in.ReadString('\n')
	code := strings.TrimSpace(line)
	if code == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read code: %w", err)
		}
		return "", ErrOTPCancelled
	}
	return code, nil
}

func (p *PlainDisplayer) AuthSuccess(account, collective string) {
	fmt.Fprintf(p.w, "\nLogged in as %s (collective %s)\n", account, collective)
}

func (p *PlainDisplayer) TokenSaved(path string) {
	fmt.Fprintf(p.w, "Session saved to %s\n", path)
}

func (p *PlainDisplayer) LoggedOut(path string) {
	fmt.Fprintf(p.w, "Session removed from %s\n", path)
}

func (p *PlainDisplayer) Verifying() {
	fmt.Fprintln(p.w, "\nVerifying token...")
}

func (p *PlainDisplayer) VerifyOK(body string) {
	if body != "" {
		fmt.Fprintf(p.w, "Collective: %s\n", body)
	}
	fmt.Fprintln(p.w, "Token verified successfully!")
}

func (p *PlainDisplayer) VerifyFailed(err error) {
	fmt.Fprintf(p.w, "Token verification failed: %v\n", err)
}

func (p *PlainDisplayer) Done(preview string, dueIn time.Duration) {
	fmt.Fprintln(p.w, "\n========================================")
	fmt.Fprintln(p.w, "Current Session:")
	fmt.Fprintf(p.w, "Token: %s...\n", preview)
	fmt.Fprintf(p.w, "Refresh due in: %s\n", dueIn.Round(time.Second))
	fmt.Fprintln(p.w, "========================================")
}

func (p *PlainDisplayer) Fatal(err error) {
	fmt.Fprintf(p.w, "Error: %v\n", err)
}

// NoopDisplayer is a no-op implementation used in tests and for quiet output.
type NoopDisplayer struct{}

func (NoopDisplayer) Banner()                        {}
func (NoopDisplayer) TokenResolved(_ string)         {}
func (NoopDisplayer) TokenValid()                    {}
func (NoopDisplayer) NearExpiry(_, _ time.Duration)  {}
func (NoopDisplayer) Refreshing()                    {}
func (NoopDisplayer) RefreshOK()                     {}
func (NoopDisplayer) RefreshFailed(_ error)          {}
func (NoopDisplayer) LoggingIn(_ string)             {}
func (NoopDisplayer) SecondFactorRequired()          {}
func (NoopDisplayer) AuthSuccess(_, _ string)        {}
func (NoopDisplayer) TokenSaved(_ string)            {}
func (NoopDisplayer) LoggedOut(_ string)             {}
func (NoopDisplayer) Verifying()                     {}
func (NoopDisplayer) VerifyOK(_ string)              {}
func (NoopDisplayer) VerifyFailed(_ error)           {}
func (NoopDisplayer) Done(_ string, _ time.Duration) {}
func (NoopDisplayer) Fatal(_ error)                  {}

func (NoopDisplayer) PromptOTP(_ context.Context) (string, error) {
	return "", ErrOTPCancelled
}

// ProgramDisplayer sends BubbleTea messages to a running tea.Program.
type ProgramDisplayer struct {
	p *tea.Program
}

// NewProgramDisplayer creates a ProgramDisplayer that sends messages to p.
func NewProgramDisplayer(p *tea.Program) *ProgramDisplayer {
	return &ProgramDisplayer{p: p}
}

func (t *ProgramDisplayer) Banner() {
	t.p.Send(MsgBanner{})
}

func (t *ProgramDisplayer) TokenResolved(origin string) {
	t.p.Send(MsgTokenResolved{Origin: origin})
}

func (t *ProgramDisplayer) TokenValid() {
	t.p.Send(MsgTokenValid{})
}

func (t *ProgramDisplayer) NearExpiry(age, threshold time.Duration) {
	t.p.Send(MsgNearExpiry{Age: age, Threshold: threshold})
}

func (t *ProgramDisplayer) Refreshing() {
	t.p.Send(MsgRefreshing{})
}

func (t *ProgramDisplayer) RefreshOK() {
	t.p.Send(MsgRefreshOK{})
}

func (t *ProgramDisplayer) RefreshFailed(err error) {
	t.p.Send(MsgRefreshFailed{Err: err})
}

func (t *ProgramDisplayer) LoggingIn(account string) {
	t.p.Send(MsgLoggingIn{Account: account})
}

func (t *ProgramDisplayer) SecondFactorRequired() {
	t.p.Send(MsgSecondFactorRequired{})
}

// PromptOTP switches the program to code entry and waits for the user.
func (t *ProgramDisplayer) PromptOTP(ctx context.Context) (string, error) {
	reply := make(chan string, 1)
	t.p.Send(MsgOTPRequired{Reply: reply})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case code, ok := <-reply:
		if !ok {
			return "", ErrOTPCancelled
		}
		return code, nil
	}
}

func (t *ProgramDisplayer) AuthSuccess(account, collective string) {
	t.p.Send(MsgAuthSuccess{Account: account, Collective: collective})
}

func (t *ProgramDisplayer) TokenSaved(path string) {
	t.p.Send(MsgTokenSaved{Path: path})
}

func (t *ProgramDisplayer) LoggedOut(path string) {
	t.p.Send(MsgLoggedOut{Path: path})
}

func (t *ProgramDisplayer) Verifying() {
	t.p.Send(MsgVerifying{})
}

func (t *ProgramDisplayer) VerifyOK(body string) {
	t.p.Send(MsgVerifyOK{Body: body})
}

func (t *ProgramDisplayer) VerifyFailed(err error) {
	t.p.Send(MsgVerifyFailed{Err: err})
}

func (t *ProgramDisplayer) Done(preview string, dueIn time.Duration) {
	t.p.Send(MsgDone{Preview: preview, DueIn: dueIn})
}

func (t *ProgramDisplayer) Fatal(err error) {
	t.p.Send(MsgFatal{Err: err})
}
