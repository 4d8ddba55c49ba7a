package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dxshie/kv2"
	"github.com/dxshie/kv2/internal/analyzer"
	"github.com/dxshie/kv2/internal/config"
	"github.com/dxshie/kv2/internal/errors"
	"github.com/dxshie/kv2/internal/formatter"
	"github.com/dxshie/kv2/internal/generator"
	"github.com/dxshie/kv2/internal/query"
	"github.com/dxshie/kv2/internal/schema"
	"github.com/tidwall/pretty"
)

// ParseCmd prints the JSON projection of a document.
type ParseCmd struct {
	File    string `arg:"" optional:"" help:"KV2 file to read. Reads stdin when omitted or '-'."`
	Index   int    `help:"Print only the root object at this index." short:"n" default:"-1"`
	Compact bool   `help:"Print JSON on a single line."`
}

// Run executes the parse command.
func (c *ParseCmd) Run(g *Globals) error {
	cfg, err := g.setup(config.CLIOverrides{Compact: c.Compact})
	if err != nil {
		return err
	}
	doc, err := g.parseInput(codec(cfg), c.File)
	if err != nil {
		return err
	}

	var v any = doc
	if c.Index >= 0 {
		obj, err := doc.At(c.Index)
		if err != nil {
			return errors.NewInputError(fmt.Sprintf("cannot select root object %d", c.Index), err)
		}
		v = obj
	}

	p, err := query.Project(v)
	if err != nil {
		return err
	}
	return g.writeOutput("", p.Bytes(cfg.Output.Pretty))
}

// QueryCmd evaluates a gjson path against the JSON projection of a document.
type QueryCmd struct {
	Path    string `arg:"" help:"gjson path, e.g. '#(_class==\"DmeModel\").name'."`
	File    string `arg:"" optional:"" help:"KV2 file to read. Reads stdin when omitted or '-'."`
	Compact bool   `help:"Print JSON results on a single line."`
}

// Run executes the query command.
func (c *QueryCmd) Run(g *Globals) error {
	cfg, err := g.setup(config.CLIOverrides{Compact: c.Compact})
	if err != nil {
		return err
	}
	doc, err := g.parseInput(codec(cfg), c.File)
	if err != nil {
		return err
	}

	p, err := query.Project(doc)
	if err != nil {
		return err
	}
	res, err := p.Get(c.Path)
	if err != nil {
		return err
	}
	return g.writeOutput("", query.Format(res, cfg.Output.Pretty))
}

// GenCmd generates Go structs from a document.
type GenCmd struct {
	File     string `arg:"" optional:"" help:"KV2 file to read. Reads stdin when omitted or '-'."`
	Output   string `help:"Path to output Go file. If not specified, writes to stdout." short:"o"`
	Package  string `help:"Package name for generated code." short:"p"`
	NoFormat bool   `help:"Skip gofmt formatting of the generated code." name:"no-format"`
}

// Run executes the gen command.
func (c *GenCmd) Run(g *Globals) error {
	cfg, err := g.setup(config.CLIOverrides{Package: c.Package, NoFormat: c.NoFormat})
	if err != nil {
		return err
	}
	doc, err := g.parseInput(codec(cfg), c.File)
	if err != nil {
		return err
	}

	code, err := generate(cfg, doc)
	if err != nil {
		return err
	}
	return g.writeOutput(c.Output, []byte(code))
}

// generate runs analysis, generation and, when enabled, formatting.
func generate(cfg *config.Config, doc kv2.Document) (string, error) {
	analysisResult, err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(doc)
	if err != nil {
		return "", errors.NewAnalysisError("failed to infer Go types", err)
	}

	code, err := generator.NewGeneratorWithConfig(cfg).GenerateStructs(analysisResult, cfg.Package)
	if err != nil {
		return "", err
	}

	if cfg.Formatting.Enabled {
		code, err = formatter.NewFormatter().Format(code)
		if err != nil {
			return "", err
		}
	}
	return code, nil
}

// SchemaCmd prints a JSON Schema describing the JSON projection of a document.
type SchemaCmd struct {
	File    string `arg:"" optional:"" help:"KV2 file to read. Reads stdin when omitted or '-'."`
	Title   string `help:"Schema title. Defaults to the file name."`
	Compact bool   `help:"Print JSON on a single line."`
}

// Run executes the schema command.
func (c *SchemaCmd) Run(g *Globals) error {
	cfg, err := g.setup(config.CLIOverrides{Compact: c.Compact})
	if err != nil {
		return err
	}
	doc, err := g.parseInput(codec(cfg), c.File)
	if err != nil {
		return err
	}

	result, err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(doc)
	if err != nil {
		return errors.NewAnalysisError("failed to infer Go types", err)
	}

	title := c.Title
	if title == "" && c.File != "" && c.File != "-" {
		title = strings.TrimSuffix(filepath.Base(c.File), filepath.Ext(c.File))
	}
	s := schema.FromAnalysis(result, schema.Options{
		Title:  title,
		Closed: cfg.Decoder.DisallowUnknownKeys,
	})

	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewOutputError("failed to encode schema", err)
	}
	if cfg.Output.Pretty {
		data = pretty.Pretty(data)
	}
	return g.writeOutput("", data)
}

// CheckCmd parses files and reports the position of every failure.
type CheckCmd struct {
	Files []string `arg:"" help:"KV2 files to check."`
}

// Run executes the check command.
func (c *CheckCmd) Run(g *Globals) error {
	cfg, err := g.setup(config.CLIOverrides{})
	if err != nil {
		return err
	}
	cd := codec(cfg)

	failed := 0
	for _, file := range c.Files {
		doc, err := cd.ParseFile(file)
		if err == nil {
			fmt.Fprintf(g.stdout, "%s: ok (%d root objects)\n", file, len(doc))
			continue
		}

		failed++
		var perr *kv2.ParseError
		if stderrors.As(err, &perr) {
			fmt.Fprintf(g.stdout, "%s:%v\n", file, perr)
		} else {
			fmt.Fprintf(g.stdout, "%s: %s\n", file, errors.UserFriendlyError(err))
		}
	}

	if failed > 0 {
		return errors.NewParsingError(fmt.Sprintf("%d of %d files failed to parse", failed, len(c.Files)), nil)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintf(g.stdout, "kv2 version %s\n", Version)
	return err
}
