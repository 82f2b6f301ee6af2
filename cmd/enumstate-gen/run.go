package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"github.com/signadot/enumstate/codegen"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errStale = errors.New("generated files are out of date")

func mainRun(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	if errors.Is(err, errStale) {
		return cli.ExitCodeErr(1)
	}
	if err != nil {
		printHints(cfg.errOut, err)
	}
	return err
}

func printHints(w io.Writer, err error) {
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

type palette struct {
	name, ok, bad, faint func(a ...any) string
}

func newPalette(enabled bool) *palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return &palette{
		name:  mk(color.Bold),
		ok:    mk(color.FgGreen),
		bad:   mk(color.FgRed),
		faint: mk(color.Faint),
	}
}

// forEachResult generates every discovered package, at most s.jobs at a
// time, and hands the results to fn in discovery order. The first failure
// cancels the remaining packages.
func forEachResult(ctx context.Context, s *settings, log *zap.Logger, fn func(*codegen.Result) error) error {
	pkgs, err := codegen.DiscoverPackages(s.dir, s.recursive)
	if err != nil {
		return errors.Wrap(err, "failed to discover packages")
	}
	if len(pkgs) == 0 {
		return errors.Newf("no Go packages found in %q", s.dir)
	}
	log.Debug("discovered packages", zap.Int("count", len(pkgs)))

	loader := codegen.NewPackageLoader(log)
	results := make([]*codegen.Result, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for i, pkg := range pkgs {
		g.Go(func() error {
			res, err := codegen.Generate(gctx, &codegen.Config{
				OutputFile: s.output,
				Header:     s.header,
				TypeCheck:  s.typeCheck,
				Package:    pkg,
				Loader:     loader,
				Logger:     log,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, res := range results {
		if err := fn(res); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *MainConfig) setup(out io.Writer) (*settings, *zap.Logger, *palette, error) {
	s, err := cfg.settings()
	if err != nil {
		return nil, nil, nil, err
	}
	colored := cfg.useColor(out)
	log := newLogger(cfg.errOut, cfg.Verbose, cfg.useColor(cfg.errOut))
	log.Debug("settings", s.fields()...)
	return s, log, newPalette(colored), nil
}

func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func gen(cfg *GenConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Command.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: gen takes no arguments", cli.ErrUsage)
	}
	return runGen(cfg.ctx, cfg.MainConfig, cc.Out)
}

func runGen(ctx context.Context, cfg *MainConfig, out io.Writer) error {
	s, log, pal, err := cfg.setup(out)
	if err != nil {
		return err
	}
	defer log.Sync()
	written := 0
	err = forEachResult(ctx, s, log, func(res *codegen.Result) error {
		changed, err := codegen.WriteResult(res)
		if err != nil {
			return err
		}
		if changed {
			written++
			fmt.Fprintf(out, "%s %s\n", pal.ok("wrote"), relPath(s.dir, res.OutputFile))
		} else if res.Source != nil {
			log.Debug("unchanged", zap.String("file", res.OutputFile))
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("done", zap.Int("written", written))
	return nil
}

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Command.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: check takes no arguments", cli.ErrUsage)
	}
	return runCheck(cfg.ctx, cfg.MainConfig, cc.Out, cfg.Diff)
}

func runCheck(ctx context.Context, cfg *MainConfig, out io.Writer, showDiff bool) error {
	s, log, pal, err := cfg.setup(out)
	if err != nil {
		return err
	}
	defer log.Sync()
	stale := 0
	err = forEachResult(ctx, s, log, func(res *codegen.Result) error {
		st, err := codegen.Check(res)
		if err != nil {
			return err
		}
		if st == nil {
			return nil
		}
		stale++
		what := "stale"
		if st.Missing {
			what = "missing"
		}
		fmt.Fprintf(out, "%s %s\n", pal.bad(what), relPath(s.dir, st.Path))
		if showDiff {
			fmt.Fprint(out, st.Diff)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if stale > 0 {
		fmt.Fprintf(out, "%d generated file(s) need enumstate-gen gen\n", stale)
		return errStale
	}
	return nil
}
