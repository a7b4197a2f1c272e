package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger every component/run child logger derives
// from. Init must run before any package in agit logs anything.
var Logger zerolog.Logger

// Level is one of the zerolog levels agit exposes on the CLI.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var levels = map[Level]zerolog.Level{
	DebugLevel: zerolog.DebugLevel,
	InfoLevel:  zerolog.InfoLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
}

// Config controls the global logger Init builds.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer // defaults to os.Stdout
}

// Init (re)configures the global Logger. Safe to call more than once;
// the CLI calls it exactly once, after flags and .agit/config.yaml have
// both been resolved.
func Init(cfg Config) {
	level, ok := levels[cfg.Level]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagging every line with which
// agit subsystem produced it (repo, engine, retry, swarm, lock).
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithRunID returns a child logger tagging every line with a retry or
// swarm run's id, so attempts/sub-tasks from the same run can be
// grepped out of an otherwise interleaved log stream.
func WithRunID(runID string) zerolog.Logger {
	return Logger.With().Str("run_id", runID).Logger()
}

// WithBranch returns a child logger tagging every line with the branch
// currently checked out, used when an operation's outcome depends on
// which disposable branch it ran on (retry attempts).
func WithBranch(branch string) zerolog.Logger {
	return Logger.With().Str("branch", branch).Logger()
}
