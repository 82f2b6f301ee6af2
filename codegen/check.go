package codegen

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Stale describes a generated file whose content on disk differs from a
// fresh generation.
type Stale struct {
	Path string

	// Missing is set when the file does not exist
	Missing bool

	// Diff is a line diff from the file on disk to the fresh content
	Diff string
}

// Check compares res with its output file. It returns nil when the file
// is up to date or the package declares no schema.
func Check(res *Result) (*Stale, error) {
	if res.Source == nil {
		return nil, nil
	}
	existing, err := os.ReadFile(res.OutputFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Stale{Path: res.OutputFile, Missing: true, Diff: Diff("", string(res.Source))}, nil
	}
	if err != nil {
		return nil, err
	}
	if bytes.Equal(existing, res.Source) {
		return nil, nil
	}
	return &Stale{Path: res.OutputFile, Diff: Diff(string(existing), string(res.Source))}, nil
}

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 2

type diffLine struct {
	op   diffpatch.Operation
	text string
}

// Diff returns a line diff from one text to another: removed lines start
// with "-", added lines with "+" and context lines with a space. Runs of
// unchanged lines far from any change are elided as "...".
func Diff(from, to string) string {
	dmp := diffpatch.New()
	fromRunes, toRunes, lines := dmp.DiffLinesToRunes(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(fromRunes, toRunes, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			all = append(all, diffLine{op: d.Type, text: strings.TrimSuffix(line, "\n")})
		}
	}

	keep := make([]bool, len(all))
	changed := false
	for i, l := range all {
		if l.op == diffpatch.DiffEqual {
			continue
		}
		changed = true
		for j := max(0, i-diffContext); j <= min(len(all)-1, i+diffContext); j++ {
			keep[j] = true
		}
	}

	if !changed {
		return ""
	}

	var b strings.Builder
	elided := false
	for i, l := range all {
		if !keep[i] {
			if !elided {
				b.WriteString("...\n")
				elided = true
			}
			continue
		}
		elided = false
		switch l.op {
		case diffpatch.DiffDelete:
			b.WriteString("-")
		case diffpatch.DiffInsert:
			b.WriteString("+")
		default:
			b.WriteString(" ")
		}
		b.WriteString(l.text)
		b.WriteString("\n")
	}
	return b.String()
}
