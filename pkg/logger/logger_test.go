package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level json", cfg: &config.LoggingConfig{Level: "debug", Format: "json"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "invalid"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)

			if tt.cfg.File != "" {
				_, err := os.Stat(tt.cfg.File)
				assert.NoError(t, err, "log file should be created")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return NewWithWriter(buf, zerolog.DebugLevel)
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message", `"app":"vkbackup"`} {
		assert.Contains(t, out, want)
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	base.
		WithField("run_id", "abc").
		WithFields(map[string]interface{}{"count": 3, "ok": true}).
		WithError(errors.New("boom")).
		InfoWithFields("chained", map[string]interface{}{"file_name": "10.jpg"})

	out := buf.String()
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"count":3`)
	assert.Contains(t, out, `"ok":true`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"file_name":"10.jpg"`)

	// Derived loggers must not leak fields back into the parent
	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "run_id")
}

func TestWithNilError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)
	assert.Same(t, l, l.WithError(nil))
}

func TestLogRequest(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "https://api.vk.com/method/photos.get", 200, time.Millisecond)
	LogRequest(tl, "PUT", "https://cloud-api.yandex.net/v1/disk/resources", 409, time.Millisecond)
	LogRequest(tl, "POST", "https://cloud-api.yandex.net/v1/disk/resources/upload", 503, time.Millisecond)

	msgs := tl.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "DEBUG", msgs[0].Level)
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.Equal(t, "ERROR", msgs[2].Level)
	assert.Equal(t, 409, msgs[1].Fields["status_code"])
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	derived := tl.WithField("component", "vk").WithError(errors.New("bad token"))
	derived.Warn("fetch failed")
	tl.Info("plain")

	assert.True(t, tl.HasMessage("fetch failed"))
	assert.False(t, tl.HasError())

	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "vk", warns[0].Fields["component"])
	assert.EqualError(t, warns[0].Error, "bad token")
	assert.True(t, strings.Contains(tl.String(), "error=bad token"))

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "error"}))
	assert.NotNil(t, GetLogger())

	// Convenience functions must not panic
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	WithField("key", "value").Info("with field")
	WithFields(map[string]interface{}{"k1": "v1"}).Info("with fields")
	WithError(errors.New("test")).Error("with error")

	_ = NewNopLogger()
}
