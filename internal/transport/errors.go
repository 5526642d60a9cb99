package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/smartplug/internal/protocol"
)

// ErrorKind represents the stage of an exchange that failed
type ErrorKind int

const (
	// ErrConnection indicates the device could not be reached or dropped the connection
	ErrConnection ErrorKind = iota
	// ErrWrite indicates the request frame could not be sent
	ErrWrite
	// ErrRead indicates the response frame could not be read (including timeouts)
	ErrRead
	// ErrDecoding indicates the decrypted response was not valid UTF-8
	ErrDecoding
	// ErrDeserialization indicates the response was not the expected JSON
	ErrDeserialization
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrConnection:
		return "Connection Error"
	case ErrWrite:
		return "Write Error"
	case ErrRead:
		return "Read Error"
	case ErrDecoding:
		return "Decoding Error"
	case ErrDeserialization:
		return "Deserialization Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// ProtocolError represents a failed request/response exchange with a device
type ProtocolError struct {
	Kind    ErrorKind // Stage that failed
	Message string    // Human-readable error message
	Address string    // Device address (for context)
	Err     error     // Underlying error (if any)
	Timeout bool      // Whether a deadline expired
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError wraps a network failure from the given stage.
// Expired deadlines set Timeout. A write or read that fails because the
// device closed or reset the socket before replying is reported as
// ErrConnection; a frame cut short part way through stays a read error.
func ClassifyNetworkError(kind ErrorKind, message string, err error, address string) *ProtocolError {
	if err == nil {
		return nil
	}

	e := &ProtocolError{
		Kind:    kind,
		Message: message,
		Address: address,
		Err:     err,
	}

	switch {
	case isTimeout(err):
		e.Timeout = true
	case kind == ErrConnection:
		// already classified
	case errors.Is(err, protocol.ErrTruncatedFrame), errors.Is(err, protocol.ErrFrameTooLarge):
		// frame-level failure, keep the stage
	case isPeerClosed(err):
		e.Kind = ErrConnection
		e.Message = "device closed the connection"
	}

	return e
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isPeerClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}

func newError(kind ErrorKind, message string, err error, address string) *ProtocolError {
	return &ProtocolError{
		Kind:    kind,
		Message: message,
		Address: address,
		Err:     err,
	}
}

func kindOf(err error) (ErrorKind, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrConnection
}

// IsWriteError checks if an error is a write error
func IsWriteError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrWrite
}

// IsReadError checks if an error is a read error
func IsReadError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrRead
}

// IsDecodingError checks if an error is a decoding error
func IsDecodingError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrDecoding
}

// IsDeserializationError checks if an error is a deserialization error
func IsDeserializationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrDeserialization
}

// IsTimeout checks if an error was caused by an expired deadline
func IsTimeout(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Timeout
}

// IsRetryable reports whether repeating the same call might succeed.
// The client never retries on its own; this is advice for callers.
func IsRetryable(err error) bool {
	k, ok := kindOf(err)
	if !ok {
		return false
	}
	switch k {
	case ErrConnection, ErrWrite, ErrRead:
		return true
	default:
		return false
	}
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) []string {
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		return nil
	}

	switch pe.Kind {
	case ErrConnection:
		return []string{
			"Check that the plug is powered on and joined to your network",
			"Verify the address and port (default port is 9999)",
			"Make sure no firewall blocks TCP port 9999",
			"Newer firmware may have disabled the local protocol",
		}
	case ErrWrite:
		return []string{
			"The connection dropped while sending the request",
			"Try again; the device may have been rebooting",
		}
	case ErrRead:
		if pe.Timeout {
			return []string{
				"The device accepted the connection but did not answer in time",
				"Try increasing --timeout",
				"Move the device closer to the access point to improve signal",
			}
		}
		return []string{
			"The response ended before the declared frame length",
			"Try again; the device may have been busy",
		}
	case ErrDecoding, ErrDeserialization:
		return []string{
			"The device replied with data this client does not understand",
			"Check the firmware version with 'smartplug info'",
			"Run with --log-level debug to see the raw response",
		}
	default:
		return nil
	}
}

// ShortErrorMessage returns a concise, user-friendly error message
func ShortErrorMessage(err error) string {
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		return err.Error()
	}

	switch pe.Kind {
	case ErrConnection:
		if pe.Timeout {
			return "Device not reachable (timeout)"
		}
		return "Cannot connect to device"
	case ErrWrite:
		return "Failed to send command"
	case ErrRead:
		if pe.Timeout {
			return "Device not responding (timeout)"
		}
		return "Incomplete response from device"
	case ErrDecoding:
		return "Device response is not valid text"
	case ErrDeserialization:
		return "Failed to parse device response"
	default:
		return strings.TrimSpace(pe.Message)
	}
}
