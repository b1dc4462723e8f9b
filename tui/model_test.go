package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestModel_RefreshFlow(t *testing.T) {
	m := NewModel(nil)
	m = update(t, m, MsgTokenResolved{Origin: "session file"})
	m = update(t, m, MsgNearExpiry{Age: time.Minute, Threshold: 48 * time.Second})
	m = update(t, m, MsgRefreshing{})
	assert.Equal(t, stateRefreshing, m.state)

	m = update(t, m, MsgRefreshOK{})
	m = update(t, m, MsgDone{Preview: "1000000050000-fresh", DueIn: 48 * time.Second})
	assert.Equal(t, stateSuccess, m.state)
	assert.Len(t, m.statusLines, 4)
	assert.Contains(t, m.viewSuccess(), "1000000050000-fresh")
	assert.Contains(t, m.viewSuccess(), "48s")
}

func TestModel_OTPEntry(t *testing.T) {
	reply := make(chan string, 1)

	m := NewModel(nil)
	m = update(t, m, MsgLoggingIn{Account: "demo"})
	m = update(t, m, MsgOTPRequired{Reply: reply})
	assert.Equal(t, stateOTP, m.state)

	// an empty code is not submitted
	m = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, stateOTP, m.state)
	assert.Empty(t, reply)

	m.otpInput.SetValue("123456")
	m = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, stateLoggingIn, m.state)
	assert.Equal(t, "123456", <-reply)
	assert.Nil(t, m.otpReply)
}

func TestModel_OTPCancel(t *testing.T) {
	reply := make(chan string, 1)

	m := NewModel(nil)
	m = update(t, m, MsgOTPRequired{Reply: reply})
	m = update(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})

	_, open := <-reply
	assert.False(t, open)
	assert.Nil(t, m.otpReply)
}

func TestModel_CtrlCCancelsCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewModel(cancel)
	m = update(t, m, MsgLoggingIn{Account: "demo"})

	next, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Equal(t, stateLoggingIn, next.(Model).state)

	select {
	case <-ctx.Done():
	default:
		t.Fatal("ctrl+c did not cancel the running command")
	}
}

func TestModel_CtrlCDuringOTPCancelsCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reply := make(chan string, 1)

	m := NewModel(cancel)
	m = update(t, m, MsgOTPRequired{Reply: reply})
	update(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})

	require.ErrorIs(t, ctx.Err(), context.Canceled)
	_, open := <-reply
	assert.False(t, open)
}

func TestModel_Fatal(t *testing.T) {
	m := update(t, NewModel(nil), MsgFatal{Err: errors.New("you are not logged in")})
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.viewError(), "you are not logged in")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(-time.Second))
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "4m 0s", formatDuration(4*time.Minute))
	assert.Equal(t, "1h 30m", formatDuration(90*time.Minute))
}
