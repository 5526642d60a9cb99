package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/smartplug/internal/config"
	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/logging"
	"github.com/muurk/smartplug/internal/ui"
)

// session bundles what a device command needs: the resolved plug, the
// registry it was resolved from and the output settings.
type session struct {
	plug     device.Device
	name     string // registry name, empty for literal addresses
	registry *config.Registry
	format   string
	out      io.Writer
	printer  *ui.Printer
}

func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.LoadRegistry()
}

func saveRegistry(r *config.Registry) error {
	if configPath != "" {
		return r.SaveTo(configPath)
	}
	return r.Save()
}

// newSession resolves --device against the registry and applies the
// timeout and format preferences unless overridden by flags.
func newSession(cmd *cobra.Command) (*session, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	address, name, err := registry.Resolve(deviceTarget)
	if err != nil {
		return nil, err
	}

	deadline := timeout
	if deadline <= 0 {
		deadline = registry.Preferences.TimeoutDuration()
	}

	format := outputFormat
	if format == "" {
		format = registry.Preferences.Format()
	}

	plug := device.New(address).WithTimeout(deadline)
	logging.Debug("Resolved device",
		zap.String("target", deviceTarget),
		zap.String("address", plug.Address()),
		zap.Duration("timeout", deadline))

	out := cmd.OutOrStdout()
	return &session{
		plug:     plug,
		name:     name,
		registry: registry,
		format:   format,
		out:      out,
		printer:  ui.NewPrinter(out),
	}, nil
}

// wantJSON reports whether machine-readable output was requested
func (s *session) wantJSON() bool {
	return s.format == config.FormatJSON
}

// printJSON writes v as indented JSON
func (s *session) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	_, err = fmt.Fprintln(s.out, string(data))
	return err
}

// acknowledge reports the outcome of an action that only returns a status.
// A rejected action becomes an error, a missing status a warning.
func (s *session) acknowledge(title string, resp *device.Response, status *device.Status, details map[string]string) error {
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}

	if s.wantJSON() {
		return s.printJSON(resp)
	}

	if details == nil {
		details = make(map[string]string)
	}
	details["Device"] = s.plug.Address()

	if status == nil {
		s.printer.PrintWarning(title+" (no confirmation from device)", details)
		return nil
	}
	s.printer.PrintSuccess(title, details)
	return nil
}

// remember stores what a registered device reported about itself
func (s *session) remember(info *device.SysInfo) {
	if s.name == "" || info == nil {
		return
	}

	s.registry.UpdateDeviceSeen(s.name, valueOr(info.Alias, ""), valueOr(info.Model, ""), valueOr(info.MAC, ""))

	if err := saveRegistry(s.registry); err != nil {
		logging.Warn("Failed to save device details", zap.String("device", s.name), zap.Error(err))
	}
}

// confirmed asks for the agreement phrase unless skip is set
func confirmed(cmd *cobra.Command, skip bool, ask func(in io.Reader, out io.Writer) bool) error {
	if skip {
		return nil
	}
	if !ask(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return fmt.Errorf("operation cancelled")
	}
	return nil
}

// reportedError marks an error whose result box has already been printed
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }
