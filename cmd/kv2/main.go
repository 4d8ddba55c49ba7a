package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dxshie/kv2"
	"github.com/dxshie/kv2/internal/config"
	"github.com/dxshie/kv2/internal/errors"
	"github.com/dxshie/kv2/internal/logging"
)

var log = logging.Logger(logging.ModuleCLI)

// Version information
const (
	Version = "0.1.0"
)

// Globals holds flags shared by every command and the streams commands use.
type Globals struct {
	Config   string `help:"Path to a config file. Defaults to the nearest .kv2.yml above the working directory." short:"c"`
	Debug    bool   `help:"Enable debug logging." short:"d"`
	LogLevel string `help:"Log level: debug, info, notice, warning, error or critical." name:"log-level"`
	MaxDepth int    `help:"Maximum nesting depth of objects and arrays." name:"max-depth"`

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Parse   ParseCmd   `cmd:"" help:"Parse a KV2 document and print it as JSON."`
	Query   QueryCmd   `cmd:"" help:"Evaluate a gjson path against a KV2 document."`
	Gen     GenCmd     `cmd:"" help:"Generate Go structs that decode a KV2 document."`
	Schema  SchemaCmd  `cmd:"" help:"Print a JSON Schema for the JSON form of a KV2 document."`
	Check   CheckCmd   `cmd:"" help:"Check that KV2 files parse."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

func main() {
	var cli CLI
	parser := kong.Must(&cli,
		kong.Name("kv2"),
		kong.Description("A tool to inspect KeyValues2 (DMX text) documents and generate Go types for them"),
		kong.UsageOnError(),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cli.stdin, cli.stdout, cli.stderr = os.Stdin, os.Stdout, os.Stderr
	if err := ctx.Run(&cli.Globals); err != nil {
		cli.reportError(err)
		os.Exit(1)
	}
}

// reportError prints err for a user. With debug logging on, the full
// error chain follows the friendly message.
func (g *Globals) reportError(err error) {
	fmt.Fprintf(g.stderr, "%s\n", errors.UserFriendlyError(err))
	if logging.Enabled(logging.ModuleCLI, "debug") {
		fmt.Fprintf(g.stderr, "Details: %v\n", err)
	}
	fmt.Fprintf(g.stderr, "\nFor help, run: kv2 --help\n")
}

// setup loads the configuration, applying command-line overrides, and
// configures logging from it.
func (g *Globals) setup(overrides config.CLIOverrides) (*config.Config, error) {
	configPath := g.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides.MaxDepth = g.MaxDepth
	overrides.LogLevel = g.LogLevel
	overrides.Debug = g.Debug
	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewInputError("failed to load configuration", err)
	}
	if err := logging.Setup(g.stderr, cfg.Log.Level); err != nil {
		return nil, errors.NewInputError("invalid configuration", err)
	}
	if configPath != "" {
		log.Debugf("using config file %s", configPath)
	}
	return cfg, nil
}

// codec returns a kv2 codec configured from cfg.
func codec(cfg *config.Config) *kv2.Codec {
	return kv2.New(kv2.Options{
		MaxDepth:            cfg.Parser.MaxDepth,
		DisallowUnknownKeys: cfg.Decoder.DisallowUnknownKeys,
	})
}

// parseInput parses the named file, or stdin when file is empty or "-".
func (g *Globals) parseInput(c *kv2.Codec, file string) (kv2.Document, error) {
	if file != "" && file != "-" {
		log.Infof("processing %s", file)
		return c.ParseFile(file)
	}

	// An interactive terminal has nothing piped in.
	if f, ok := g.stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(bufio.NewReader(g.stdin))
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	log.Infof("processing stdin (%d bytes)", len(data))
	return c.Parse(string(data))
}

// writeOutput writes data to the named file, or stdout when file is empty.
func (g *Globals) writeOutput(file string, data []byte) error {
	if file != "" {
		if err := os.WriteFile(file, data, 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", file), err)
		}
		fmt.Fprintf(g.stderr, "Generated Go code written to %s\n", file)
		return nil
	}

	if _, err := fmt.Fprintln(g.stdout, strings.TrimSpace(string(data))); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
