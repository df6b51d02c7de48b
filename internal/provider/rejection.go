package provider

import (
	"errors"
	"strings"
)

// CodeUserRejected is the EIP-1193 code for a request the user rejected.
const CodeUserRejected = 4001

// codedError is implemented by JSON-RPC errors.
type codedError interface {
	error
	ErrorCode() int
}

// IsUserRejection reports whether err signals the user explicitly declined.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}

	var ce codedError
	if errors.As(err, &ce) && ce.ErrorCode() == CodeUserRejected {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
