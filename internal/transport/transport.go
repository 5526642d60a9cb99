package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/muurk/smartplug/internal/logging"
	"github.com/muurk/smartplug/internal/protocol"
)

const (
	// DefaultTimeout bounds the write and read of one exchange
	DefaultTimeout = 5000 * time.Millisecond

	// DefaultDialTimeout bounds establishing the TCP connection
	DefaultDialTimeout = 5 * time.Second
)

// Transport performs single request/response exchanges with a device.
// The zero value is usable and applies the defaults.
type Transport struct {
	// Timeout is the deadline for writing the request and reading the reply
	Timeout time.Duration

	// DialTimeout bounds the TCP connect
	DialTimeout time.Duration

	// MaxFrameSize is the largest response payload accepted
	MaxFrameSize uint32
}

// Default returns a Transport with the standard 5 second deadline
func Default() Transport {
	return Transport{
		Timeout:      DefaultTimeout,
		DialTimeout:  DefaultDialTimeout,
		MaxFrameSize: protocol.DefaultMaxFrameSize,
	}
}

// WithTimeout returns a copy of t using the given exchange deadline
func (t Transport) WithTimeout(timeout time.Duration) Transport {
	t.Timeout = timeout
	return t
}

func (t Transport) timeout() time.Duration {
	if t.Timeout <= 0 {
		return DefaultTimeout
	}
	return t.Timeout
}

func (t Transport) dialTimeout() time.Duration {
	if t.DialTimeout <= 0 {
		return DefaultDialTimeout
	}
	return t.DialTimeout
}

func (t Transport) maxFrameSize() uint32 {
	if t.MaxFrameSize == 0 {
		return protocol.DefaultMaxFrameSize
	}
	return t.MaxFrameSize
}

// Exchange opens a connection to address, sends request as one frame and
// returns the decrypted payload of the reply. The connection is closed
// before returning. No step is retried.
func (t Transport) Exchange(address string, request []byte) ([]byte, error) {
	logging.Debug("Connecting to device",
		zap.String("address", address),
		zap.Duration("timeout", t.timeout()),
	)

	conn, err := net.DialTimeout("tcp", address, t.dialTimeout())
	if err != nil {
		return nil, fail(ClassifyNetworkError(ErrConnection, "failed to connect", err, address))
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(t.timeout())); err != nil {
		return nil, fail(ClassifyNetworkError(ErrConnection, "failed to set connection deadline", err, address))
	}

	logging.LogExchange(address, "sent", request)

	if err := protocol.WriteFrame(conn, request); err != nil {
		return nil, fail(ClassifyNetworkError(ErrWrite, "failed to send request", err, address))
	}

	frame, err := protocol.ReadFrame(conn, t.maxFrameSize())
	if err != nil {
		return nil, fail(ClassifyNetworkError(ErrRead, "failed to read response", err, address))
	}

	logging.LogRawBytes("Response frame", frame.Raw)
	logging.LogExchange(address, "received", frame.Payload)

	if !utf8.Valid(frame.Payload) {
		return nil, fail(newError(ErrDecoding, "response is not valid UTF-8", nil, address))
	}

	return frame.Payload, nil
}

// Send performs one exchange and parses the reply into a new T
func Send[T any](t Transport, address string, request []byte) (*T, error) {
	payload, err := t.Exchange(address, request)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fail(newError(ErrDeserialization, fmt.Sprintf("failed to parse response: %v", err), err, address))
	}

	return &out, nil
}

func fail(err *ProtocolError) error {
	logging.Warn("Device exchange failed",
		zap.String("address", err.Address),
		zap.String("kind", err.Kind.String()),
		zap.Bool("timeout", err.Timeout),
		zap.Error(err.Err),
	)
	return err
}
