package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Prefix is written in front of every non-JSON log line.
const Prefix = "🎞️  "

// NewLogger creates a new hclog logger with standard settings.
// A level of the form "json:<level>" (or just "json") switches to JSON output,
// as does BOOTSPLASH_JSON_LOG=1.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("BOOTSPLASH_JSON_LOG") == "1"
	actualLevel := level
	if strings.HasPrefix(level, "json") {
		jsonFormat = true
		parts := strings.SplitN(level, ":", 2)
		if len(parts) > 1 {
			actualLevel = parts[1]
		} else {
			actualLevel = "info"
		}
	}

	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(actualLevel),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv("BOOTSPLASH_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	return level
}

// ResolveLogLevel picks the CLI level first, then the environment.
// The second return value names where the level came from.
func ResolveLogLevel(cliLevel string) (string, string) {
	if cliLevel != "" {
		return cliLevel, "CLI --log-level"
	}
	if envLevel := os.Getenv("BOOTSPLASH_LOG_LEVEL"); envLevel != "" {
		return envLevel, "BOOTSPLASH_LOG_LEVEL"
	}
	return GetLogLevel(), "default"
}

// OpenLogOutput returns the file named by BOOTSPLASH_LOG_PATH, or stderr.
func OpenLogOutput() io.Writer {
	if logPath := os.Getenv("BOOTSPLASH_LOG_PATH"); logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			return file
		}
	}
	return os.Stderr
}
