package errors

import "fmt"

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// WrapRegistryError wraps plugin registry errors
func WrapRegistryError(operation, src string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s registry entry '%s'", operation, src)
	return Wrap(RegistryErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("src", src)
}

// WrapTransportError wraps transform server errors
func WrapTransportError(adapter, operation string, cause error) *BaseError {
	message := fmt.Sprintf("%s transport failed to %s", adapter, operation)
	return Wrap(TransportErrorCode, message, cause).
		WithContext("adapter", adapter)
}
