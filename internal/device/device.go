package device

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/smartplug/internal/logging"
	"github.com/muurk/smartplug/internal/protocol"
	"github.com/muurk/smartplug/internal/transport"
)

// DefaultPort is the TCP port smart plugs listen on
const DefaultPort = protocol.DefaultPort

// Module names used as the top-level request key
const (
	ModuleSystem = "system"
	ModuleEmeter = "emeter"
	ModuleNetif  = "netif"
	ModuleCloud  = "cnCloud"
	ModuleTime   = "time"
)

// Device is a handle for one plug. It holds only the address and the
// transport limits; every method opens and closes its own connection, so a
// Device may be copied and used from several goroutines at once.
type Device struct {
	address   string
	transport transport.Transport
}

// New creates a handle for the device at address ("host" or "host:port").
// A missing port defaults to 9999.
func New(address string) Device {
	return NewWithTransport(address, transport.Default())
}

// NewWithTransport creates a handle that uses t for every exchange
func NewWithTransport(address string, t transport.Transport) Device {
	return Device{
		address:   NormalizeAddress(address),
		transport: t,
	}
}

// NormalizeAddress appends the default port to a bare host
func NormalizeAddress(address string) string {
	return WithPort(address, DefaultPort)
}

// WithPort appends port to address unless it already carries one.
// Bracketed and bare IPv6 hosts are both accepted.
func WithPort(address string, port int) string {
	address = strings.TrimSpace(address)
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	host := strings.TrimSuffix(strings.TrimPrefix(address, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Address returns the host:port the handle talks to
func (d Device) Address() string {
	return d.address
}

// Transport returns the transport settings used by the handle
func (d Device) Transport() transport.Transport {
	return d.transport
}

// WithTimeout returns a copy of the handle using a different exchange deadline
func (d Device) WithTimeout(timeout time.Duration) Device {
	d.transport = d.transport.WithTimeout(timeout)
	return d
}

// String returns a human-readable representation of the handle
func (d Device) String() string {
	return fmt.Sprintf("Smart plug at %s", d.address)
}

// Command builds the request document {"<module>":{"<action>":<params>}}.
// A nil params encodes as JSON null.
func Command(module, action string, params any) ([]byte, error) {
	doc := map[string]map[string]any{
		module: {action: params},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s.%s request: %w", module, action, err)
	}
	return data, nil
}

// Exchange sends an arbitrary JSON document and returns the raw reply
func (d Device) Exchange(request []byte) ([]byte, error) {
	return d.transport.Exchange(d.address, request)
}

// Raw sends one module/action pair with arbitrary params
func (d Device) Raw(module, action string, params any) (*Response, error) {
	return d.send(module, action, params)
}

func (d Device) send(module, action string, params any) (*Response, error) {
	request, err := Command(module, action, params)
	if err != nil {
		return nil, err
	}

	logging.Info("Sending command",
		zap.String("address", d.address),
		zap.String("module", module),
		zap.String("action", action),
	)

	return transport.Send[Response](d.transport, d.address, request)
}

// empty encodes as {} for actions that take an empty parameter object
func empty() map[string]any {
	return map[string]any{}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
