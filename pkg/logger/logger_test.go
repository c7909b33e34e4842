package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    zerolog.Level
		wantErr bool
	}{
		{name: "empty defaults to info", config: Config{}, want: zerolog.InfoLevel},
		{name: "debug flag wins", config: Config{Level: "error", Debug: true}, want: zerolog.DebugLevel},
		{name: "explicit warn", config: Config{Level: "warn"}, want: zerolog.WarnLevel},
		{name: "upper case accepted", config: Config{Level: "ERROR"}, want: zerolog.ErrorLevel},
		{name: "unknown level", config: Config{Level: "chatty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := levelFor(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsUnknownOutput(t *testing.T) {
	_, err := New(Config{Output: "syslog"})
	require.Error(t, err)
}

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer

	l := NewWithWriter(&buf, zerolog.InfoLevel)
	l.Debug().Msg("hidden")
	l.Info().Str("category", "mil").Msg("fetched")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "fetched", line["message"])
	assert.Equal(t, "mil", line["category"])
	assert.Equal(t, "info", line["level"])
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	saved := globalLogger
	t.Cleanup(func() { globalLogger = saved })

	globalLogger = NewWithWriter(&buf, zerolog.InfoLevel)
	l := WithComponent("tracker")
	l.Info().Msg("started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tracker", line["component"])
}
