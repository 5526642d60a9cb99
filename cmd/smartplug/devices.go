package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/smartplug/internal/config"
	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/logging"
	"github.com/muurk/smartplug/internal/transport"
	"github.com/muurk/smartplug/internal/ui"
)

var probeDevice bool

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)

	devicesAddCmd.Flags().BoolVar(&probeDevice, "probe", true, "Query the device and store its alias, model and MAC")
}

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"device"},
	Short:   "Manage named devices",
	Long: `Manage the names that --device accepts in place of an address.

Names are stored in the smartplug config file together with the alias,
model and MAC address the device last reported.`,
}

var devicesAddCmd = &cobra.Command{
	Use:     "add NAME ADDRESS",
	Short:   "Register a device under a name",
	Example: `  smartplug devices add lamp 192.168.0.42`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]

		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		if err := registry.AddDevice(name, address); err != nil {
			return err
		}

		details := map[string]string{"Name": name, "Address": address}
		printer := ui.NewPrinter(cmd.OutOrStdout())

		if probeDevice {
			resolved, _, err := registry.Resolve(name)
			if err != nil {
				return err
			}
			deadline := timeout
			if deadline <= 0 {
				deadline = registry.Preferences.TimeoutDuration()
			}

			info, err := probe(device.New(resolved).WithTimeout(deadline))
			if err != nil {
				logging.Debug("Probe failed", zap.String("address", resolved), zap.Error(err))
				details["Probe"] = transport.ShortErrorMessage(err)
			} else {
				registry.UpdateDeviceSeen(name, valueOr(info.Alias, ""), valueOr(info.Model, ""), valueOr(info.MAC, ""))
				details["Alias"] = valueOr(info.Alias, "-")
				details["Model"] = valueOr(info.Model, "-")
			}
		}

		if err := saveRegistry(registry); err != nil {
			return err
		}

		if _, failed := details["Probe"]; failed {
			printer.PrintWarning("Device added (not reachable)", details)
			return nil
		}
		printer.PrintSuccess("Device added", details)
		return nil
	},
}

func probe(plug device.Device) (*device.SysInfo, error) {
	resp, err := plug.SysInfo()
	if err != nil {
		return nil, err
	}
	info := resp.SystemResult().GetSysInfo
	if info == nil {
		return nil, fmt.Errorf("device did not return system information")
	}
	if err := info.Err(); err != nil {
		return nil, err
	}
	return info, nil
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		format := outputFormat
		if format == "" {
			format = registry.Preferences.Format()
		}

		names := registry.DeviceNames()
		if format == config.FormatJSON {
			s := &session{out: out}
			return s.printJSON(registry.Devices)
		}

		if len(names) == 0 {
			fmt.Fprintln(out, "No devices registered. Add one with 'smartplug devices add NAME ADDRESS'.")
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%-16s %-22s %-20s %-12s %s\n", "NAME", "ADDRESS", "ALIAS", "MODEL", "LAST SEEN")
		for _, name := range names {
			d := registry.GetDevice(name)
			fmt.Fprintf(&b, "%-16s %-22s %-20s %-12s %s\n",
				name, d.Address, orDash(d.Alias), orDash(d.Model), lastSeen(d.LastSeen))
		}
		fmt.Fprint(out, b.String())
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Forget a registered device",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		if !registry.RemoveDevice(args[0]) {
			return fmt.Errorf("no device named %q", args[0])
		}
		if err := saveRegistry(registry); err != nil {
			return err
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Device removed", map[string]string{"Name": args[0]})
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func lastSeen(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
