package errors

// Sentinels for errors.Is checks. Any BaseError with the same code matches.
var (
	ErrInvalidMetadata  = New(InvalidMetadataErrorCode, "invalid plugin metadata")
	ErrInvalidDependsOn = New(InvalidDependsOnErrorCode, "dependsOn must take an array of string literals")
	ErrParse            = New(ParseErrorCode, "failed to parse module")
)

// NewInvalidMetadataError reports a disallowed property form inside a
// registration call's metadata or descriptor object
func NewInvalidMetadataError(reason string, loc SourceLocation) *BaseError {
	return New(InvalidMetadataErrorCode, "Invalid plugin metadata").
		WithLocation(loc).
		WithContext("reason", reason).
		WithSuggestion("Only literal values are supported in plugin metadata; avoid spreads, computed keys and expressions")
}

// NewInvalidDependsOnError reports a dependsOn value that is not an array of
// string literals
func NewInvalidDependsOnError(loc SourceLocation) *BaseError {
	return New(InvalidDependsOnErrorCode, "dependsOn must take an array of string literals").
		WithLocation(loc).
		WithSuggestion("Write dependsOn as a literal array, e.g. dependsOn: ['other-plugin']")
}

// NewParseError reports a module that could not be parsed cleanly
func NewParseError(file string, cause error) *BaseError {
	return Wrap(ParseErrorCode, "failed to parse module", cause).
		WithLocation(SourceLocation{File: file})
}
