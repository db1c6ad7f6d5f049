package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	// Provisioning. Fatal to runtime start; never retried automatically.
	ErrProvisionFailure = fmt.Errorf("device provisioning failed")

	// Transport.
	ErrConnectFailed = fmt.Errorf("realtime connect failed")
	ErrNotReady      = fmt.Errorf("transport not ready")
	ErrPeerAway      = fmt.Errorf("peer went away")

	// Parser. Per-message, recovered locally: logged and dropped.
	ErrNoCommand        = fmt.Errorf("no command specified")
	ErrUnknownCommand   = fmt.Errorf("unknown command")
	ErrMissingArguments = fmt.Errorf("missing required arguments")

	// REST collaborator.
	ErrAPIStatus = fmt.Errorf("unexpected api response status")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Transport.Send")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

// Every sentinel error maps to exactly one code.
const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeProvisionFailure ErrorCode = "PROVISION_FAILURE"
	CodeConnectFailed    ErrorCode = "CONNECT_FAILED"
	CodeNotReady         ErrorCode = "NOT_READY"
	CodePeerAway         ErrorCode = "PEER_AWAY"
	CodeNoCommand        ErrorCode = "NO_COMMAND"
	CodeUnknownCommand   ErrorCode = "UNKNOWN_COMMAND"
	CodeMissingArguments ErrorCode = "MISSING_ARGUMENTS"
	CodeAPIStatus        ErrorCode = "API_STATUS"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrProvisionFailure: CodeProvisionFailure,
	ErrConnectFailed:    CodeConnectFailed,
	ErrNotReady:         CodeNotReady,
	ErrPeerAway:         CodePeerAway,
	ErrNoCommand:        CodeNoCommand,
	ErrUnknownCommand:   CodeUnknownCommand,
	ErrMissingArguments: CodeMissingArguments,
	ErrAPIStatus:        CodeAPIStatus,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It walks the error chain with errors.Is, so wrapped sentinels resolve too.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}

// IsParseError reports whether err is a per-message parse failure that must be
// recovered locally instead of terminating the listen loop.
func IsParseError(err error) bool {
	return errors.Is(err, ErrNoCommand) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrMissingArguments)
}
