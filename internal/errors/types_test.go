package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{InvalidMetadataErrorCode, "InvalidMetadata"},
		{InvalidDependsOnErrorCode, "InvalidDependsOn"},
		{ParseErrorCode, "ParseError"},
		{RegistryErrorCode, "RegistryError"},
		{ConfigurationErrorCode, "ConfigurationError"},
		{FileSystemErrorCode, "FileSystemError"},
		{TransportErrorCode, "TransportError"},
		{ErrorCode(999), "UnknownError"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.String())
		})
	}
}

func TestSourceLocation_String(t *testing.T) {
	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "plugins/a.ts", SourceLocation{File: "plugins/a.ts"}.String())
	assert.Equal(t, "plugins/a.ts:3", SourceLocation{File: "plugins/a.ts", Line: 3}.String())
	assert.Equal(t, "plugins/a.ts:3:7", SourceLocation{File: "plugins/a.ts", Line: 3, Column: 7}.String())
	assert.Equal(t, "<input>:2:1", SourceLocation{Line: 2, Column: 1}.String())
}

func TestBaseError_IsMatchesByCode(t *testing.T) {
	err := NewInvalidMetadataError("spread element", SourceLocation{File: "a.ts", Line: 1, Column: 20})

	assert.True(t, stderrors.Is(err, ErrInvalidMetadata))
	assert.False(t, stderrors.Is(err, ErrInvalidDependsOn))

	wrapped := fmt.Errorf("extracting: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrInvalidMetadata))
	assert.Equal(t, InvalidMetadataErrorCode, CodeOf(wrapped))
	assert.Equal(t, UnknownErrorCode, CodeOf(stderrors.New("plain")))
}

func TestBaseError_Error(t *testing.T) {
	err := NewInvalidDependsOnError(SourceLocation{File: "a.ts", Line: 2, Column: 14})
	assert.Equal(t, "a.ts:2:14: dependsOn must take an array of string literals", err.Error())
	assert.NotEmpty(t, err.Suggestions())

	cause := stderrors.New("boom")
	parseErr := NewParseError("b.ts", cause)
	assert.Equal(t, "b.ts: failed to parse module: boom", parseErr.Error())
	assert.True(t, stderrors.Is(parseErr, cause))
	assert.True(t, stderrors.Is(parseErr, ErrParse))
}

func TestBaseError_Context(t *testing.T) {
	err := New(RegistryErrorCode, "duplicate")
	assert.Empty(t, err.Context())

	err.WithContext("src", "plugins/a.ts")
	assert.Equal(t, "plugins/a.ts", err.Context()["src"])
}

func TestMultipleErrors(t *testing.T) {
	multi := NewMultipleErrors()
	assert.True(t, multi.IsEmpty())
	assert.NoError(t, multi.ErrorOrNil())

	multi.Add(NewInvalidMetadataError("spread", SourceLocation{File: "a.ts"}))
	multi.Add(NewInvalidDependsOnError(SourceLocation{File: "b.ts"}))

	require.Error(t, multi.ErrorOrNil())
	assert.Equal(t, 2, multi.Count())
	assert.Equal(t, InvalidMetadataErrorCode, multi.Errors[0].ErrorCode())
	assert.Equal(t, InvalidDependsOnErrorCode, multi.Errors[1].ErrorCode())
	assert.Contains(t, multi.Error(), "multiple errors (2 total)")
	assert.True(t, stderrors.Is(multi, ErrInvalidDependsOn))
}

func TestWrappers(t *testing.T) {
	cause := stderrors.New("denied")

	fsErr := WrapFileSystemError("read", "plugins/a.ts", cause)
	assert.Equal(t, FileSystemErrorCode, fsErr.ErrorCode())
	assert.Equal(t, "failed to read file 'plugins/a.ts': denied", fsErr.Error())

	cfgErr := WrapConfigurationError("pluginmeta.yaml", "load", cause)
	assert.Equal(t, ConfigurationErrorCode, cfgErr.ErrorCode())
	assert.Equal(t, "load", cfgErr.Context()["operation"])

	regErr := WrapRegistryError("register", "plugins/a.ts", cause)
	assert.Equal(t, RegistryErrorCode, regErr.ErrorCode())

	trErr := WrapTransportError("gin", "start", cause)
	assert.Equal(t, "gin transport failed to start: denied", trErr.Error())
}
