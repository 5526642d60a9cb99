package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muurk/smartplug/internal/device"
)

// Output formats accepted in preferences and on the command line
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatJSON     = "json"
)

const (
	defaultTimeoutMS = 5000
	defaultPort      = 9999
)

// Registry represents the entire user configuration file.
// This stores named devices and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents a named smart plug.
type Device struct {
	Address  string    `yaml:"address"`             // host or host:port
	Alias    string    `yaml:"alias,omitempty"`     // Alias last reported by the device
	Model    string    `yaml:"model,omitempty"`     // Model last reported by the device
	MAC      string    `yaml:"mac,omitempty"`       // MAC last reported by the device
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful exchange
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Timeout      int    `yaml:"timeout"`       // Exchange deadline in milliseconds
	DefaultPort  int    `yaml:"default_port"`  // Port appended to bare hosts
	OutputFormat string `yaml:"output_format"` // detailed, compact or json
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		Timeout:      defaultTimeoutMS,
		DefaultPort:  defaultPort,
		OutputFormat: FormatDetailed,
	}
}

// TimeoutDuration returns the exchange deadline, falling back to the default
// for non-positive values.
func (p *Preferences) TimeoutDuration() time.Duration {
	if p == nil || p.Timeout <= 0 {
		return defaultTimeoutMS * time.Millisecond
	}
	return time.Duration(p.Timeout) * time.Millisecond
}

// Port returns the default port, falling back to 9999.
func (p *Preferences) Port() int {
	if p == nil || p.DefaultPort <= 0 || p.DefaultPort > 65535 {
		return defaultPort
	}
	return p.DefaultPort
}

// Format returns the output format, falling back to detailed.
func (p *Preferences) Format() string {
	if p == nil || p.OutputFormat == "" {
		return FormatDetailed
	}
	return p.OutputFormat
}

// ValidateOutputFormat checks an output format name.
func ValidateOutputFormat(format string) error {
	switch format {
	case FormatDetailed, FormatCompact, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use %s, %s or %s)", format, FormatDetailed, FormatCompact, FormatJSON)
	}
}

// GetDevice retrieves a device by name.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(name string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if entry := r.Devices[name]; entry != nil {
		return entry
	}

	entry := &Device{}
	r.Devices[name] = entry
	return entry
}

// AddDevice registers address under name, replacing any existing entry.
func (r *Registry) AddDevice(name, address string) error {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)

	if name == "" {
		return fmt.Errorf("device name must not be empty")
	}
	if strings.ContainsAny(name, ":/ ") {
		return fmt.Errorf("device name %q must not contain ':', '/' or spaces", name)
	}
	if address == "" {
		return fmt.Errorf("device address must not be empty")
	}

	entry := r.EnsureDevice(name)
	entry.Address = address
	return nil
}

// RemoveDevice deletes a named device. Returns false if it did not exist.
func (r *Registry) RemoveDevice(name string) bool {
	if _, exists := r.Devices[name]; !exists {
		return false
	}
	delete(r.Devices, name)
	return true
}

// UpdateDeviceSeen records what a device reported on its last successful exchange.
// Empty values leave the stored ones unchanged.
func (r *Registry) UpdateDeviceSeen(name, alias, model, mac string) {
	entry := r.GetDevice(name)
	if entry == nil {
		return
	}
	if alias != "" {
		entry.Alias = alias
	}
	if model != "" {
		entry.Model = model
	}
	if mac != "" {
		entry.MAC = mac
	}
	entry.LastSeen = time.Now()
}

// DeviceNames returns the registered names in sorted order.
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a registry name or a literal address to host:port.
// Registry names win over addresses. The second return value is the
// registry name, empty for literal addresses.
func (r *Registry) Resolve(target string) (address string, name string, err error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", fmt.Errorf("no device given (use --device or add one with 'devices add')")
	}

	if entry := r.GetDevice(target); entry != nil {
		if entry.Address == "" {
			return "", "", fmt.Errorf("device %q has no address", target)
		}
		return r.withPort(entry.Address), target, nil
	}

	return r.withPort(target), "", nil
}

func (r *Registry) withPort(address string) string {
	return device.WithPort(address, r.Preferences.Port())
}
