package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/scott-cotton/cli"
)

func MainCommand(ctx context.Context) *cli.Command {
	cfg := newMainConfig(ctx)
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "j",
		Aliases:     []string{"jobs"},
		Description: "number of packages generated concurrently (default: GOMAXPROCS)",
		Type:        cli.NamedFuncOpt(cfg.jobsOpt, "(n)"),
	})

	return cli.NewCommandAt(&cfg.Main, "enumstate-gen").
		WithSynopsis("enumstate-gen [opts] command [opts]").
		WithDescription("enumstate-gen generates state enumeration methods for annotated Go sum types.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return mainRun(cfg, cc, args)
		}).
		WithSubs(
			GenCommand(cfg),
			CheckCommand(cfg),
			ExplainCommand(cfg))
}

func GenCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GenConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Command, "gen").
		WithAliases("g", "generate").
		WithSynopsis("gen").
		WithDescription("generate and write the enumeration methods of every discovered package").
		WithRun(func(cc *cli.Context, args []string) error {
			return gen(cfg, cc, args)
		})
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "check").
		WithAliases("c").
		WithSynopsis("check [-diff]").
		WithDescription("report generated files that are missing or out of date, exiting 1 if any").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}

func ExplainCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExplainConfig{MainConfig: mainCfg}
	opts := []*cli.Opt{{
		Name:        "walk",
		Description: "also print n successive states from each default",
		Type:        cli.NamedFuncOpt(cfg.walkOpt, "(n)"),
	}}
	return cli.NewCommandAt(&cfg.Command, "explain").
		WithAliases("x").
		WithSynopsis("explain [-walk n] [types]").
		WithDescription("print the ordinals, names and resolved defaults of the discovered enumerations").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return explain(cfg, cc, args)
		})
}

func (cfg *MainConfig) jobsOpt(_ *cli.Context, v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: -j wants a positive integer, got %q", cli.ErrUsage, v)
	}
	cfg.Jobs = n
	return n, nil
}

func (cfg *ExplainConfig) walkOpt(_ *cli.Context, v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: -walk wants an integer, got %q", cli.ErrUsage, v)
	}
	cfg.Walk = n
	return n, nil
}
