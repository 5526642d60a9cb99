package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/smartplug/internal/protocol"
)

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name        string
		kind        ErrorKind
		err         error
		wantKind    ErrorKind
		wantTimeout bool
	}{
		{
			name: "dial refused",
			kind: ErrConnection,
			err: &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
			},
			wantKind: ErrConnection,
		},
		{
			name:        "dial timeout",
			kind:        ErrConnection,
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: &timeoutError{}},
			wantKind:    ErrConnection,
			wantTimeout: true,
		},
		{
			name:        "read deadline",
			kind:        ErrRead,
			err:         fmt.Errorf("failed to read frame header: %w", os.ErrDeadlineExceeded),
			wantKind:    ErrRead,
			wantTimeout: true,
		},
		{
			name:     "peer closed before reply",
			kind:     ErrRead,
			err:      fmt.Errorf("failed to read frame header: %w", io.EOF),
			wantKind: ErrConnection,
		},
		{
			name: "peer reset during read",
			kind: ErrRead,
			err: &net.OpError{
				Op:  "read",
				Net: "tcp",
				Err: os.NewSyscallError("read", syscall.ECONNRESET),
			},
			wantKind: ErrConnection,
		},
		{
			name: "broken pipe on write",
			kind: ErrWrite,
			err: &net.OpError{
				Op:  "write",
				Net: "tcp",
				Err: os.NewSyscallError("write", syscall.EPIPE),
			},
			wantKind: ErrConnection,
		},
		{
			name:     "short payload stays a read error",
			kind:     ErrRead,
			err:      fmt.Errorf("%w: read 3 of 40 payload bytes: %w", protocol.ErrTruncatedFrame, io.ErrUnexpectedEOF),
			wantKind: ErrRead,
		},
		{
			name:     "oversized frame stays a read error",
			kind:     ErrRead,
			err:      fmt.Errorf("%w: header declares 9 bytes", protocol.ErrFrameTooLarge),
			wantKind: ErrRead,
		},
		{
			name:     "other write failure",
			kind:     ErrWrite,
			err:      io.ErrShortWrite,
			wantKind: ErrWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := ClassifyNetworkError(tt.kind, "failed", tt.err, "10.0.0.2:9999")
			if pe == nil {
				t.Fatal("expected ProtocolError, got nil")
			}
			if pe.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.wantKind)
			}
			if pe.Timeout != tt.wantTimeout {
				t.Errorf("Timeout = %v, want %v", pe.Timeout, tt.wantTimeout)
			}
			if pe.Address != "10.0.0.2:9999" {
				t.Errorf("Address = %q", pe.Address)
			}
			if !errors.Is(pe, tt.err) {
				t.Error("underlying error should be reachable through Unwrap")
			}
		})
	}
}

func TestClassifyNetworkErrorNil(t *testing.T) {
	if pe := ClassifyNetworkError(ErrRead, "x", nil, ""); pe != nil {
		t.Errorf("ClassifyNetworkError(nil) = %v, want nil", pe)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected string
	}{
		{ErrConnection, "Connection Error"},
		{ErrWrite, "Write Error"},
		{ErrRead, "Read Error"},
		{ErrDecoding, "Decoding Error"},
		{ErrDeserialization, "Deserialization Error"},
		{ErrorKind(42), "ErrorKind(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("ErrorKind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProtocolErrorMessage(t *testing.T) {
	withCause := &ProtocolError{Kind: ErrRead, Message: "failed to read response", Err: io.EOF}
	if got := withCause.Error(); got != "Read Error: failed to read response (caused by: EOF)" {
		t.Errorf("Error() = %q", got)
	}

	bare := &ProtocolError{Kind: ErrDecoding, Message: "response is not valid UTF-8"}
	if got := bare.Error(); got != "Decoding Error: response is not valid UTF-8" {
		t.Errorf("Error() = %q", got)
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("get sysinfo: %w", &ProtocolError{Kind: ErrRead, Timeout: true})

	if !IsReadError(wrapped) {
		t.Error("IsReadError should see through wrapping")
	}
	if !IsTimeout(wrapped) {
		t.Error("IsTimeout should see through wrapping")
	}
	if IsConnectionError(wrapped) || IsWriteError(wrapped) || IsDecodingError(wrapped) || IsDeserializationError(wrapped) {
		t.Error("only IsReadError should match")
	}
	if IsReadError(errors.New("plain")) {
		t.Error("plain errors are not protocol errors")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"connection", &ProtocolError{Kind: ErrConnection}, true},
		{"write", &ProtocolError{Kind: ErrWrite}, true},
		{"read timeout", &ProtocolError{Kind: ErrRead, Timeout: true}, true},
		{"decoding", &ProtocolError{Kind: ErrDecoding}, false},
		{"deserialization", &ProtocolError{Kind: ErrDeserialization}, false},
		{"unknown", errors.New("unknown error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestShortErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"connection", &ProtocolError{Kind: ErrConnection}, "Cannot connect to device"},
		{"dial timeout", &ProtocolError{Kind: ErrConnection, Timeout: true}, "Device not reachable (timeout)"},
		{"write", &ProtocolError{Kind: ErrWrite}, "Failed to send command"},
		{"read timeout", &ProtocolError{Kind: ErrRead, Timeout: true}, "Device not responding (timeout)"},
		{"short read", &ProtocolError{Kind: ErrRead}, "Incomplete response from device"},
		{"decoding", &ProtocolError{Kind: ErrDecoding}, "Device response is not valid text"},
		{"deserialization", &ProtocolError{Kind: ErrDeserialization}, "Failed to parse device response"},
		{"plain", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortErrorMessage(tt.err); got != tt.want {
				t.Errorf("ShortErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"connection", &ProtocolError{Kind: ErrConnection}, "9999"},
		{"read timeout", &ProtocolError{Kind: ErrRead, Timeout: true}, "--timeout"},
		{"short read", &ProtocolError{Kind: ErrRead}, "declared frame length"},
		{"deserialization", &ProtocolError{Kind: ErrDeserialization}, "--log-level debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := strings.Join(TroubleshootingHint(tt.err), "\n")
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("TroubleshootingHint() missing %q\nGot: %s", tt.contains, hint)
			}
		})
	}

	if hint := TroubleshootingHint(errors.New("plain")); hint != nil {
		t.Errorf("TroubleshootingHint(plain) = %v, want nil", hint)
	}
}

// timeoutError is a mock error that implements timeout behavior
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
