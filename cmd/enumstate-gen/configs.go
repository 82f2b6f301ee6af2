package main

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/enumstate/codegen"
	"go.uber.org/zap"
)

type MainConfig struct {
	Dir       string `cli:"name=dir desc='directory to scan for Go packages (default: current directory)'"`
	Recursive bool   `cli:"name=r aliases=recursive desc='scan subdirectories recursively'"`
	Output    string `cli:"name=o desc='generated file name in each package (default: <package>_enumstate.go)'"`
	TypeCheck bool   `cli:"name=typecheck desc='load packages with the go command to resolve imported types and find state capable types of other packages'"`
	Config    string `cli:"name=config desc='configuration file (default: nearest .enumstate.yaml up to go.mod)'"`
	Verbose   bool   `cli:"name=v aliases=verbose desc='log debug output'"`
	Color     bool   `cli:"name=color desc='colorize output'"`

	// Jobs is set by -j, 0 when not given
	Jobs int

	Main *cli.Command

	ctx    context.Context
	errOut io.Writer
}

func newMainConfig(ctx context.Context) *MainConfig {
	return &MainConfig{ctx: ctx, errOut: os.Stderr}
}

type GenConfig struct {
	*MainConfig
	Command *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Diff bool `cli:"name=diff desc='print a diff for each stale file'"`

	Command *cli.Command
}

type ExplainConfig struct {
	*MainConfig
	Walk int

	Command *cli.Command
}

// optSet reports whether the main command option name was given on the
// command line.
func (cfg *MainConfig) optSet(name string) bool {
	if cfg.Main == nil {
		return false
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name == name {
			return opt.Value != nil
		}
	}
	return false
}

// settings merges the configuration file under the command line: options
// given on the command line win.
func (cfg *MainConfig) settings() (*settings, error) {
	s := &settings{
		dir:       cfg.Dir,
		recursive: cfg.Recursive,
		output:    cfg.Output,
		typeCheck: cfg.TypeCheck,
		jobs:      cfg.Jobs,
	}
	if s.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		s.dir = wd
	}

	path := cfg.Config
	if path == "" {
		found, err := codegen.FindConfigFile(s.dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		fc, err := codegen.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		s.merge(fc, cfg.optSet)
		s.configFile = fc.Path
	}
	if s.jobs == 0 {
		s.jobs = runtime.GOMAXPROCS(0)
	}
	return s, nil
}

type settings struct {
	dir        string
	recursive  bool
	output     string
	header     string // from the configuration file only
	typeCheck  bool
	jobs       int
	configFile string
}

func (s *settings) merge(fc *codegen.FileConfig, set func(string) bool) {
	if fc.Output != "" && s.output == "" {
		s.output = fc.Output
	}
	s.header = fc.Header
	if fc.Recursive != nil && !set("r") {
		s.recursive = *fc.Recursive
	}
	if fc.TypeCheck != nil && !set("typecheck") {
		s.typeCheck = *fc.TypeCheck
	}
	if fc.Jobs > 0 && s.jobs == 0 {
		s.jobs = fc.Jobs
	}
}

func (s *settings) fields() []zap.Field {
	return []zap.Field{
		zap.String("dir", s.dir),
		zap.Bool("recursive", s.recursive),
		zap.Bool("typecheck", s.typeCheck),
		zap.Int("jobs", s.jobs),
		zap.String("config", s.configFile),
	}
}

// useColor reports whether output to w is colorized: -color when given,
// else whether w is a terminal.
func (cfg *MainConfig) useColor(w io.Writer) bool {
	if cfg.optSet("color") {
		return cfg.Color
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
