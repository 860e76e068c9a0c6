package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"WARNING", WARN, false},
		{"", INFO, false},
		{" error ", ERROR, false},
		{"verbose", INFO, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("game", &buf, WARN)

	l.Info("не должно попасть")
	l.Warn("волна %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [game] волна 3")
}

func TestDefaultLogger_NoopWhenUnset(t *testing.T) {
	CloseDefaultLogger()
	assert.NotPanics(t, func() {
		Info("без логгера %s", "ничего не происходит")
	})
}

func TestDefaultLogger_Writes(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewWriterLogger("test", &buf, TRACE))
	defer CloseDefaultLogger()

	Debug("отладка")
	Error("ошибка: %v", os.ErrNotExist)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "[ERROR]")
}

func TestLoggerManager_FileLogger(t *testing.T) {
	dir := t.TempDir()
	Configure(Options{Dir: dir, MinConsoleLevel: ERROR + 1, MinFileLevel: DEBUG})
	defer Configure(Options{Dir: "logs", MinConsoleLevel: INFO, MinFileLevel: DEBUG})

	lm := newManager()
	l, err := lm.GetLogger("storage")
	require.NoError(t, err)

	again, err := lm.GetLogger("storage")
	require.NoError(t, err)
	assert.Same(t, l, again, "Логгер компонента создаётся один раз")

	l.Info("запись сохранена")
	require.NoError(t, lm.CloseAll())

	files, err := filepath.Glob(filepath.Join(dir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "запись сохранена")
	assert.Empty(t, lm.ListComponents())
}

func TestLoggerManager_LevelsBeforeCreate(t *testing.T) {
	Configure(Options{MinConsoleLevel: INFO, MinFileLevel: DEBUG})
	defer Configure(Options{Dir: "logs", MinConsoleLevel: INFO, MinFileLevel: DEBUG})

	lm := newManager()
	require.NoError(t, lm.ApplyLevels(map[string]string{ComponentAPI: "warn"}))

	api, err := lm.GetLogger(ComponentAPI)
	require.NoError(t, err)
	assert.Equal(t, WARN, api.minConsoleLevel, "Порог из конфигурации применяется при создании")
	assert.Equal(t, WARN, api.minFileLevel)

	runner, err := lm.GetLogger(ComponentRunner)
	require.NoError(t, err)
	assert.Equal(t, INFO, runner.minConsoleLevel)

	lm.SetLogLevel(ComponentRunner, ERROR, ERROR)
	assert.Equal(t, ERROR, runner.minConsoleLevel, "Порог меняется и у открытого логгера")
	assert.Equal(t, []string{ComponentAPI, ComponentRunner}, lm.ListComponents())

	require.NoError(t, lm.CloseAll())
	api, err = lm.GetLogger(ComponentAPI)
	require.NoError(t, err)
	assert.Equal(t, WARN, api.minConsoleLevel, "Пороги переживают CloseAll")

	assert.Error(t, lm.ApplyLevels(map[string]string{"api": "loud"}))
}
