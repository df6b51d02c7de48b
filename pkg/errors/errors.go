// Package errors provides structured error handling for ethpkg-donate.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input or precondition
	ExitAuth       = 3 // Account access failed or was denied
	ExitNotFound   = 4 // Resource not found (provider, package)
	ExitPermission = 5 // Safety limit or insufficient funds
)

// DonateError is the structured error type for ethpkg-donate.
type DonateError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message, safe to show to the user
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *DonateError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DonateError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for DonateError.
func (e *DonateError) Is(target error) bool {
	var t *DonateError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &DonateError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &DonateError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Precondition errors.
	ErrRecipientMissing = &DonateError{
		Code:     "RECIPIENT_MISSING",
		Message:  "Author address not found or malformed",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &DonateError{
		Code:     "INVALID_AMOUNT",
		Message:  "donation amount is not one of the allowed amounts",
		ExitCode: ExitInput,
	}

	// Provider-absence errors.
	ErrNoProvider = &DonateError{
		Code:       "NO_PROVIDER",
		Message:    "Please use a Dapp browser like Opera, Status or install the Metamask extension",
		Suggestion: "configure a wallet provider with --provider or ETHPKG_PROVIDER_URL",
		ExitCode:   ExitNotFound,
	}

	// Authorization errors.
	ErrAccountsUnavailable = &DonateError{
		Code:     "ACCOUNTS_UNAVAILABLE",
		Message:  "Accounts could not be retrieved",
		ExitCode: ExitAuth,
	}

	ErrAccessDenied = &DonateError{
		Code:     "ACCESS_DENIED",
		Message:  "Cannot access your accounts without your permission.",
		ExitCode: ExitAuth,
	}

	// Network-mismatch errors.
	ErrWrongNetwork = &DonateError{
		Code:     "WRONG_NETWORK",
		Message:  "wallet is connected to the wrong network",
		ExitCode: ExitInput,
	}

	ErrUnknownNetwork = &DonateError{
		Code:     "UNKNOWN_NETWORK",
		Message:  "unknown network",
		ExitCode: ExitInput,
	}

	// Safety-limit errors.
	ErrSuspiciousAmount = &DonateError{
		Code:     "SUSPICIOUS_AMOUNT",
		Message:  "Your donation seems suspiciously large",
		ExitCode: ExitPermission,
	}

	ErrInvalidQuote = &DonateError{
		Code:     "INVALID_QUOTE",
		Message:  "price quote is missing or invalid",
		ExitCode: ExitPermission,
	}

	ErrInsufficientFunds = &DonateError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "Insufficient funds",
		ExitCode: ExitPermission,
	}

	// Transport/response errors.
	ErrNoResponse = &DonateError{
		Code:     "NO_RESPONSE",
		Message:  "Metamask did not not return a valid response object",
		ExitCode: ExitGeneral,
	}

	ErrTxDenied = &DonateError{
		Code:     "TX_DENIED",
		Message:  "Cannot send money without your permission.",
		ExitCode: ExitAuth,
	}

	ErrProviderError = &DonateError{
		Code:     "PROVIDER_ERROR",
		Message:  "wallet provider returned an error",
		ExitCode: ExitGeneral,
	}

	ErrMalformedResult = &DonateError{
		Code:     "MALFORMED_RESULT",
		Message:  "the tx result is malformed",
		ExitCode: ExitGeneral,
	}

	ErrTransport = &DonateError{
		Code:     "TRANSPORT_ERROR",
		Message:  "There was an issue, please try again.",
		ExitCode: ExitGeneral,
	}

	// Collaborator errors.
	ErrNetworkError = &DonateError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrPackageNotFound = &DonateError{
		Code:     "PACKAGE_NOT_FOUND",
		Message:  "Package not found",
		ExitCode: ExitNotFound,
	}

	ErrPackageUnsigned = &DonateError{
		Code:       "PACKAGE_UNSIGNED",
		Message:    "Unsigned packages cannot receive donations",
		Suggestion: "the transaction address is derived from the package signature; ask the author to sign the package",
		ExitCode:   ExitNotFound,
	}

	// Config-specific errors.
	ErrConfigNotFound = &DonateError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &DonateError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new DonateError with the given code and message.
func New(code, message string) *DonateError {
	return &DonateError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var de *DonateError
	if errors.As(err, &de) {
		return &DonateError{
			Code:       de.Code,
			Message:    fmt.Sprintf("%s: %s", msg, de.Message),
			Details:    de.Details,
			Suggestion: de.Suggestion,
			Cause:      err,
			ExitCode:   de.ExitCode,
		}
	}

	return &DonateError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithMessage returns a copy of a sentinel with a replaced user-facing message.
func WithMessage(err error, message string) error {
	if err == nil {
		return nil
	}

	var de *DonateError
	if errors.As(err, &de) {
		return &DonateError{
			Code:       de.Code,
			Message:    message,
			Details:    de.Details,
			Suggestion: de.Suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DonateError{
		Code:     "GENERAL_ERROR",
		Message:  message,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause returns a copy of a sentinel carrying the given cause.
func WithCause(sentinel *DonateError, cause error) error {
	return &DonateError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var de *DonateError
	if errors.As(err, &de) {
		return &DonateError{
			Code:       de.Code,
			Message:    de.Message,
			Details:    details,
			Suggestion: de.Suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DonateError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var de *DonateError
	if errors.As(err, &de) {
		return &DonateError{
			Code:       de.Code,
			Message:    de.Message,
			Details:    de.Details,
			Suggestion: suggestion,
			Cause:      de.Cause,
			ExitCode:   de.ExitCode,
		}
	}

	return &DonateError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var de *DonateError
	if errors.As(err, &de) {
		return de.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var de *DonateError
	if errors.As(err, &de) {
		return de.Code
	}
	return "GENERAL_ERROR"
}

// UserMessage returns the message intended for display, without details or causes.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DonateError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
