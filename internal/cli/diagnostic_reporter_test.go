package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/pluginmeta/internal/errors"
)

func TestDiagnosticReporter_PluginMetaError(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporter(&buf, true, false)

	err := errors.NewInvalidMetadataError("spread elements are not supported",
		errors.SourceLocation{File: "/app/plugins/a.ts", Line: 1, Column: 34})
	reporter.ReportError(err)

	out := buf.String()
	assert.Contains(t, out, "ERROR: [InvalidMetadata] /app/plugins/a.ts:1:34: Invalid plugin metadata")
	assert.Contains(t, out, "Reason: spread elements are not supported")
	assert.Contains(t, out, "hint: Only literal values are supported")
}

func TestDiagnosticReporter_PlainError(t *testing.T) {
	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, false, false).ReportError(fmt.Errorf("boom"))

	assert.Equal(t, "ERROR: boom\n", buf.String())
}

func TestDiagnosticReporter_MultipleErrors(t *testing.T) {
	multi := errors.NewMultipleErrors()
	multi.Add(errors.NewInvalidDependsOnError(errors.SourceLocation{File: "a.ts", Line: 2}))
	multi.Add(errors.New(errors.FileSystemErrorCode, "cannot read b.ts"))

	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, false, false).ReportError(multi)

	out := buf.String()
	assert.Contains(t, out, "ERROR: 2 problems")
	assert.Contains(t, out, "[InvalidDependsOn] a.ts:2: dependsOn must take an array of string literals")
	assert.Contains(t, out, "[FileSystemError] cannot read b.ts")
	assert.NotContains(t, out, "Reason")
}

func TestFormatContextKey(t *testing.T) {
	assert.Equal(t, "Config Type", formatContextKey("config_type"))
	assert.Equal(t, "Src", formatContextKey("src"))
}
