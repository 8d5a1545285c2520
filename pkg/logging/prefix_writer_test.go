package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixWriterBuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	pw := NewPrefixWriter("> ", &out)

	n, err := pw.Write([]byte("first li"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, out.String(), "incomplete line must stay buffered")

	_, err = pw.Write([]byte("ne\nsecond\nthi"))
	require.NoError(t, err)
	assert.Equal(t, "> first line\n> second\n", out.String())

	_, err = pw.Write([]byte("rd\n"))
	require.NoError(t, err)
	assert.Equal(t, "> first line\n> second\n> third\n", out.String())
}

func TestNewLoggerTextOutputIsPrefixed(t *testing.T) {
	t.Setenv("BOOTSPLASH_JSON_LOG", "")
	var out bytes.Buffer
	logger := NewLogger("test", "info", &out)
	logger.Info("hello", "frames", 3)

	line := out.String()
	assert.True(t, strings.HasPrefix(line, Prefix), "got %q", line)
	assert.Contains(t, line, "frames=3")
}

func TestNewLoggerJSONLevel(t *testing.T) {
	t.Setenv("BOOTSPLASH_JSON_LOG", "")
	var out bytes.Buffer
	logger := NewLogger("test", "json:debug", &out)
	logger.Debug("decoded", "index", 7)

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "{"), "got %q", line)
	assert.Contains(t, line, `"index":7`)
	assert.True(t, logger.IsDebug())
}

func TestResolveLogLevel(t *testing.T) {
	t.Setenv("BOOTSPLASH_LOG_LEVEL", "")
	level, source := ResolveLogLevel("trace")
	assert.Equal(t, "trace", level)
	assert.Equal(t, "CLI --log-level", source)

	level, source = ResolveLogLevel("")
	assert.Equal(t, "warn", level)
	assert.Equal(t, "default", source)

	t.Setenv("BOOTSPLASH_LOG_LEVEL", "debug")
	level, source = ResolveLogLevel("")
	assert.Equal(t, "debug", level)
	assert.Equal(t, "BOOTSPLASH_LOG_LEVEL", source)
}
