// Package logging configures the op/go-logging backend shared by every kv2
// package. Library use stays quiet (WARNING and above) until a program calls
// Setup.
package logging

import (
	"fmt"
	"io"

	oplogging "github.com/op/go-logging"
)

// Module names of the package loggers.
const (
	ModuleParser  = "kv2.parser"
	ModuleDecoder = "kv2.decoder"
	ModuleGen     = "kv2.gen"
	ModuleQuery   = "kv2.query"
	ModuleCLI     = "kv2.cli"
)

// DefaultLevel is the level used when none is configured.
const DefaultLevel = "warning"

var modules = []string{ModuleParser, ModuleDecoder, ModuleGen, ModuleQuery, ModuleCLI}

var logFormat = oplogging.MustStringFormatter(
	`%{time:15:04:05.000} [%{module}] [%{level}] %{message}`,
)

func init() {
	for _, m := range modules {
		oplogging.SetLevel(oplogging.WARNING, m)
	}
}

// Logger returns the logger for a kv2 module.
func Logger(module string) *oplogging.Logger {
	return oplogging.MustGetLogger(module)
}

// Setup routes all log records to w and enables level for every kv2 module.
// Level names are debug, info, notice, warning, error and critical.
func Setup(w io.Writer, level string) error {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := oplogging.LogLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}

	backend := oplogging.NewLogBackend(w, "", 0)
	formatted := oplogging.NewBackendFormatter(backend, logFormat)
	leveled := oplogging.SetBackend(formatted)
	leveled.SetLevel(lvl, "")
	for _, m := range modules {
		leveled.SetLevel(lvl, m)
	}
	return nil
}

// Enabled reports whether module logs at level.
func Enabled(module, level string) bool {
	lvl, err := oplogging.LogLevel(level)
	if err != nil {
		return false
	}
	return oplogging.GetLevel(module) >= lvl
}
