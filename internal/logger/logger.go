package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Service is attached to every record as the "service" attribute.
const Service = "phonebook"

// Options selects level, destination and format of the service logs.
type Options struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	File   string `toml:"file"`   // append logs to file, empty or "-" for Output
	Format string `toml:"format"` // text or json

	// Output receives the logs when File is empty or "-". Nil means stdout.
	Output io.Writer `toml:"-"`
}

// New builds the service logger. Settings that cannot be honoured are reset
// to their defaults in options and reported as warnings by the returned logger.
func New(options *Options) *slog.Logger {
	var warnings []string

	level, ok := parseLevel(options.Level)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("could not parse logger level %q", options.Level))
		options.Level = ""
	}

	output, err := openOutput(options)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("could not open logger file: %v", err))
		options.File = ""
	}
	if output == nil {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(options.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "", "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		warnings = append(warnings, fmt.Sprintf("could not parse logger format %q", options.Format))
		options.Format = "text"
		handler = slog.NewTextHandler(output, opts)
	}

	logger := slog.New(handler).With("service", Service)
	for _, w := range warnings {
		logger.Warn(w)
	}
	return logger
}

// parseLevel maps a level name onto slog. The empty name keeps slog's
// default of info.
func parseLevel(name string) (slog.Leveler, bool) {
	switch strings.ToLower(name) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

// openOutput resolves where records go. It returns a nil writer for
// os.DevNull and falls back to the console writer when File cannot be opened.
func openOutput(options *Options) (io.Writer, error) {
	console := options.Output
	if console == nil {
		console = os.Stdout
	}

	switch options.File {
	case "", "-":
		return console, nil
	case os.DevNull:
		return nil, nil
	}

	f, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return console, err
	}
	return f, nil
}
