package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core, logs := observer.New(level)
	return newWithCore(core, level), logs
}

func TestLog_KeyValueFields(t *testing.T) {
	l, logs := newObserved(t)

	l.log(INFO, "event recorded", "request_id", "req-1", "points", 2, "err", errors.New("boom"))

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", ctx["request_id"])
	assert.EqualValues(t, 2, ctx["points"])
	assert.Equal(t, "boom", ctx["err"])
}

func TestLog_RedactsEmails(t *testing.T) {
	l, logs := newObserved(t)

	l.log(INFO, "sent", "email", "john.doe@example.com", "note", "reply to ab@example.com please")

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "jo***@example.com", ctx["email"])
	assert.Equal(t, "reply to ***@example.com please", ctx["note"])
}

func TestLog_RedactionDisabled(t *testing.T) {
	l, logs := newObserved(t)
	l.redactPII.Store(false)

	l.log(INFO, "sent", "email", "john.doe@example.com")

	assert.Equal(t, "john.doe@example.com", logs.All()[0].ContextMap()["email"])
}

func TestLog_LevelFiltering(t *testing.T) {
	l, logs := newObserved(t)
	l.level.SetLevel(zapcore.WarnLevel)

	l.log(DEBUG, "hidden")
	l.log(INFO, "hidden")
	l.log(WARN, "shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestLog_OddFieldCountIgnoresDanglingKey(t *testing.T) {
	l, logs := newObserved(t)

	l.log(INFO, "odd", "a", 1, "dangling")

	ctx := logs.All()[0].ContextMap()
	assert.Len(t, ctx, 1)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": DEBUG, "INFO": INFO, "": INFO, "warning": WARN, "Error": ERROR}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}
