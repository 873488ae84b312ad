// Package logger holds the process-wide structured logger for gridsolve.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// EnvLevel is consulted when no level is passed to Configure.
const EnvLevel = "GRIDSOLVE_LOG_LEVEL"

// Logger is the global logger instance.
var Logger *log.Logger

var output io.Writer = os.Stderr

// file is the log file opened by Configure, if any.
var file *os.File

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets the level and destination of the global logger. An explicit
// level wins over the environment; an empty logFile keeps stderr.
func Configure(level, logFile string) error {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}

	var (
		w io.Writer = os.Stderr
		f *os.File
	)
	if logFile != "" {
		var err error
		f, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		w = f
	}

	if err := Close(); err != nil {
		Logger.Warn("closing previous log file", "err", err)
	}
	file = f
	output = w
	Logger = log.New(w)
	Logger.SetTimeFormat("")
	Logger.SetLevel(ParseLevel(level))
	return nil
}

// SetOutput redirects the global logger, keeping its level.
func SetOutput(w io.Writer) {
	lvl := Logger.GetLevel()
	if err := Close(); err != nil {
		Logger.Warn("closing previous log file", "err", err)
	}
	output = w
	Logger = log.New(w)
	Logger.SetTimeFormat("")
	Logger.SetLevel(lvl)
}

// Close closes the log file opened by Configure. The logger keeps writing to
// stderr afterwards.
func Close() error {
	if file == nil {
		return nil
	}
	f := file
	file = nil
	if output == f {
		output = os.Stderr
		Logger.SetOutput(os.Stderr)
	}
	return f.Close()
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func Debug(msg interface{}, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }
func Info(msg interface{}, keyvals ...interface{})  { Logger.Info(msg, keyvals...) }
func Warn(msg interface{}, keyvals ...interface{})  { Logger.Warn(msg, keyvals...) }
func Error(msg interface{}, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }

// NewComponent returns a logger prefixed with the component name, styled for
// the keys the solver loops emit and sharing the global level.
func NewComponent(prefix string) *log.Logger {
	styles := log.DefaultStyles()

	level := func(name, bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(name).
			Padding(0, 1, 0, 1).
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color("15"))
	}
	styles.Levels[log.DebugLevel] = level("DEBUG", "240")
	styles.Levels[log.InfoLevel] = level("INFO", "33")
	styles.Levels[log.WarnLevel] = level("WARN", "214")
	styles.Levels[log.ErrorLevel] = level("ERROR", "196")
	styles.Levels[log.FatalLevel] = level("FATAL", "88")

	styles.Keys["step"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["t"] = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	styles.Keys["method"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["err"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	l := log.NewWithOptions(output, log.Options{Prefix: prefix})
	l.SetStyles(styles)
	l.SetLevel(Logger.GetLevel())
	return l
}
