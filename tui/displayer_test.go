package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-authgate/dsc/session"
)

var (
	_ session.Reporter    = (Displayer)(nil)
	_ session.OTPPrompter = (Displayer)(nil)
	_ Displayer           = (*PlainDisplayer)(nil)
	_ Displayer           = NoopDisplayer{}
	_ Displayer           = (*ProgramDisplayer)(nil)
)

func TestPlainDisplayer_Output(t *testing.T) {
	var buf bytes.Buffer
	d := NewPlainDisplayer(&buf, nil)

	d.Banner()
	d.TokenResolved(session.OriginStored.String())
	d.NearExpiry(50*time.Second, 48*time.Second)
	d.Refreshing()
	d.RefreshOK()
	d.TokenSaved("/tmp/dsc/dsc-token.json")
	d.Done("1000000050000-fresh", 4*time.Minute)

	out := buf.String()
	assert.Contains(t, out, "=== dsc session ===")
	assert.Contains(t, out, "Using session token from session file")
	assert.Contains(t, out, "age 50s, threshold 48s")
	assert.Contains(t, out, "Session saved to /tmp/dsc/dsc-token.json")
	assert.Contains(t, out, "Token: 1000000050000-fresh...")
	assert.Contains(t, out, "Refresh due in: 4m0s")
}

func TestPlainDisplayer_PromptOTP(t *testing.T) {
	var buf bytes.Buffer
	d := NewPlainDisplayer(&buf, strings.NewReader(" 123456 \n"))

	code, err := d.PromptOTP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Contains(t, buf.String(), "Authentication code: ")
}

func TestPlainDisplayer_PromptOTPWithoutNewline(t *testing.T) {
	d := NewPlainDisplayer(&bytes.Buffer{}, strings.NewReader("654321"))

	code, err := d.PromptOTP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
}

func TestPlainDisplayer_PromptOTPCancelled(t *testing.T) {
	d := NewPlainDisplayer(&bytes.Buffer{}, strings.NewReader(""))
	_, err := d.PromptOTP(context.Background())
	require.ErrorIs(t, err, ErrOTPCancelled)

	d = NewPlainDisplayer(&bytes.Buffer{}, strings.NewReader("\n"))
	_, err = d.PromptOTP(context.Background())
	require.ErrorIs(t, err, ErrOTPCancelled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d = NewPlainDisplayer(&bytes.Buffer{}, strings.NewReader("123456\n"))
	_, err = d.PromptOTP(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlainDisplayer_NoInput(t *testing.T) {
	_, err := NewPlainDisplayer(&bytes.Buffer{}, nil).PromptOTP(context.Background())
	require.Error(t, err)
}

func TestPlainDisplayer_Fatal(t *testing.T) {
	var buf bytes.Buffer
	NewPlainDisplayer(&buf, nil).Fatal(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
