package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/storefront"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the cart operation failed
	ExitCommandError = 2 // bad arguments or configuration
)

// Error codes reported in CLI output
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeRequestFailed      = "REQUEST_FAILED"
	ErrCodeCart               = "CART_ERROR"
	ErrCodeCommand            = "COMMAND_ERROR"
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error

	reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON output envelope
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a JSON response
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as JSON, or calls text for the human-readable form
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text != nil {
		text(f.Writer)
	}
	return nil
}

// Error writes a failure in the configured format
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

// Fail reports err and returns the ExitError the command should return
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err))
	exitErr := WrapExitError(exit, message, err)
	exitErr.reported = true
	return exitErr
}

// IsReported reports whether err was already written to command output
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// classify maps cart and client errors to an output code and exit code
func classify(err error) (string, int) {
	var exitErr *ExitError
	var reqErr *storefront.RequestError
	switch {
	case errors.As(err, &exitErr):
		return ErrCodeCommand, exitErr.Code
	case errors.Is(err, cart.ErrInvalidProductID), errors.Is(err, cart.ErrInvalidQuantity):
		return ErrCodeInvalidInput, ExitCommandError
	case errors.Is(err, cart.ErrLineItemNotFound), errors.Is(err, cart.ErrCartItemNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, storefront.ErrUnauthorized), errors.Is(err, cart.ErrMissingToken):
		return ErrCodeUnauthorized, ExitFailure
	case errors.Is(err, storefront.ErrBackendUnavailable):
		return ErrCodeBackendUnavailable, ExitFailure
	case errors.As(err, &reqErr):
		if reqErr.Code != "" {
			return reqErr.Code, ExitFailure
		}
		return ErrCodeRequestFailed, ExitFailure
	default:
		return ErrCodeCart, ExitFailure
	}
}
