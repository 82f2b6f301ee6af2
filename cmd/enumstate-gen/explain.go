package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/scott-cotton/cli"
	"github.com/signadot/enumstate/codegen"
	"github.com/signadot/enumstate/emit"
	"github.com/signadot/enumstate/schema"
)

func explain(cfg *ExplainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Command.Parse(cc, args)
	if err != nil {
		return err
	}
	return runExplain(cfg.ctx, cfg.MainConfig, cc.Out, args, cfg.Walk)
}

// runExplain prints every enumeration of the discovered packages, or only
// those named in only.
func runExplain(ctx context.Context, cfg *MainConfig, out io.Writer, only []string, walk int) error {
	s, log, pal, err := cfg.setup(out)
	if err != nil {
		return err
	}
	defer log.Sync()

	pkgs, err := codegen.DiscoverPackages(s.dir, s.recursive)
	if err != nil {
		return errors.Wrap(err, "failed to discover packages")
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = false
	}

	loader := codegen.NewPackageLoader(log)
	for _, pkg := range pkgs {
		sts, err := codegen.LoadSchemas(ctx, &codegen.Config{
			TypeCheck: s.typeCheck,
			Package:   pkg,
			Loader:    loader,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		if len(sts) == 0 {
			continue
		}
		set, err := schema.NewSet(sts...)
		if err != nil {
			return errors.Wrapf(err, "package %s", pkg.Dir)
		}
		m, err := emit.NewMachine(set)
		if err != nil {
			return errors.Wrapf(err, "package %s", pkg.Dir)
		}
		for _, st := range sts {
			if len(only) != 0 {
				if _, ok := wanted[st.Name]; !ok {
					continue
				}
				wanted[st.Name] = true
			}
			if err := explainType(out, pal, m, st, walk); err != nil {
				return err
			}
		}
	}
	var missing []string
	for _, name := range only {
		if !wanted[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) != 0 {
		return errors.Newf("no enumeration named %s", strings.Join(missing, ", "))
	}
	return nil
}

func explainType(out io.Writer, pal *palette, m *emit.Machine, st *schema.SumType, walk int) error {
	def, err := m.Default(st.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", pal.name(st.Name), pal.faint(fmt.Sprintf("%s form, %d variants, policy %s, %s", st.Form, st.Size(), st.Policy, st.Pos)))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for v := range def.AllStates() {
		mark := " "
		if v.Index() == def.Index() {
			mark = "*"
		}
		fmt.Fprintf(tw, "  %s %d\t%s\t%s\n", mark, v.Index(), v.Name(), v)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "  default %s\n", def)

	if walk != 0 {
		steps := []string{def.String()}
		for range abs(walk) {
			if walk > 0 {
				def.Next()
			} else {
				def.Previous()
			}
			steps = append(steps, def.String())
		}
		fmt.Fprintf(out, "  walk %s\n", strings.Join(steps, " -> "))
	}
	fmt.Fprintln(out)
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
