package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/pluginmeta/internal/errors"
)

// DiagnosticReporter renders command failures with their codes, locations
// and suggestions
type DiagnosticReporter struct {
	out     io.Writer
	verbose bool
	colors  bool
}

// NewDiagnosticReporter creates a new diagnostic reporter
func NewDiagnosticReporter(out io.Writer, verbose, colors bool) *DiagnosticReporter {
	return &DiagnosticReporter{out: out, verbose: verbose, colors: colors}
}

// ReportError writes err. Collected errors are reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "%s %d problems\n", r.paint(color.FgRed, "ERROR:"), multi.Count())
		for _, e := range multi.Errors {
			fmt.Fprintln(r.out)
			r.reportOne(e)
		}
		return
	}

	r.reportOne(err)
}

func (r *DiagnosticReporter) reportOne(err error) {
	var pmErr errors.PluginMetaError
	if !stderrors.As(err, &pmErr) {
		fmt.Fprintf(r.out, "%s %s\n", r.paint(color.FgRed, "ERROR:"), err.Error())
		return
	}

	fmt.Fprintf(r.out, "%s [%s] %s\n", r.paint(color.FgRed, "ERROR:"), pmErr.ErrorCode(), err.Error())

	if r.verbose {
		r.printContext(pmErr.Context())
	}

	for _, suggestion := range pmErr.Suggestions() {
		fmt.Fprintf(r.out, "  %s %s\n", r.paint(color.FgCyan, "hint:"), suggestion)
	}
}

func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "  %s: %v\n", formatContextKey(key), context[key])
	}
}

// formatContextKey turns snake_case context keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) paint(attr color.Attribute, s string) string {
	if !r.colors {
		return s
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(s)
}
