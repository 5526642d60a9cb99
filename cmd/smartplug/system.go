package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/smartplug/internal/config"
	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/ui"
)

// System command flags
var (
	delaySeconds int
	assumeYes    bool
	iconHash     string
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(ledCmd)
	rootCmd.AddCommand(aliasCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(iconCmd)
	rootCmd.AddCommand(diagCmd)

	rebootCmd.Flags().IntVar(&delaySeconds, "delay", device.DefaultDelay, "Seconds before the device reboots")
	resetCmd.Flags().IntVar(&delaySeconds, "delay", device.DefaultDelay, "Seconds before the device resets")
	resetCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")

	identityCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	identityCmd.AddCommand(identityMACCmd)
	identityCmd.AddCommand(identityDeviceIDCmd)
	identityCmd.AddCommand(identityHardwareIDCmd)

	iconSetCmd.Flags().StringVar(&iconHash, "hash", "", "Icon hash reported back by get_sysinfo")
	iconCmd.AddCommand(iconGetCmd)
	iconCmd.AddCommand(iconSetCmd)

	diagCmd.AddCommand(diagBootloaderCmd)
	diagCmd.AddCommand(diagConfigCmd)
	diagCmd.AddCommand(diagTestModeCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information",
	Long: `Query get_sysinfo and show the device identity and state.

Use --format compact for a short summary or --format json for the decoded
system information block.`,
	Example: `  smartplug info --device 192.168.0.42
  smartplug info --device lamp --format json`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	resp, err := s.plug.SysInfo()
	if err != nil {
		return err
	}

	info := resp.SystemResult().GetSysInfo
	if info == nil {
		return fmt.Errorf("device did not return system information")
	}
	if err := info.Err(); err != nil {
		return err
	}
	s.remember(info)

	switch s.format {
	case config.FormatJSON:
		return s.printJSON(info)
	case config.FormatCompact:
		s.printer.Println(info.FormatCompact())
	default:
		s.printer.Println(info.FormatDetailed())
	}
	return nil
}

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Switch the relay on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelay(cmd, true)
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Switch the relay off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelay(cmd, false)
	},
}

func runRelay(cmd *cobra.Command, on bool) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	resp, err := s.plug.SetRelayState(on)
	if err != nil {
		return err
	}

	return s.acknowledge("Relay switched "+onOffWord(on), resp,
		resp.SystemResult().SetRelayState,
		map[string]string{"Relay": ui.RenderRelayState(on)})
}

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.Reboot(delaySeconds)
		if err != nil {
			return err
		}
		return s.acknowledge("Reboot scheduled", resp, resp.SystemResult().Reboot,
			map[string]string{"Delay": fmt.Sprintf("%ds", delaySeconds)})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the device to factory defaults",
	Long: `Reset the device to factory defaults.

The device forgets its Wi-Fi credentials, alias, schedules and cloud
binding, then reboots into setup mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		if err := confirmed(cmd, assumeYes, ui.FactoryResetConfirmation); err != nil {
			return err
		}

		resp, err := s.plug.ResetToFactory(delaySeconds)
		if err != nil {
			return err
		}
		return s.acknowledge("Factory reset scheduled", resp, resp.SystemResult().Reset,
			map[string]string{"Delay": fmt.Sprintf("%ds", delaySeconds)})
	},
}

var ledCmd = &cobra.Command{
	Use:       "led on|off",
	Short:     "Switch the status LED on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseOnOff(args[0])
		if err != nil {
			return err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.SetLED(on)
		if err != nil {
			return err
		}
		return s.acknowledge("LED switched "+onOffWord(on), resp, resp.SystemResult().SetLEDOff, nil)
	},
}

var aliasCmd = &cobra.Command{
	Use:     "alias NAME",
	Short:   "Set the device alias",
	Example: `  smartplug alias "Living Room" --device lamp`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.SetAlias(args[0])
		if err != nil {
			return err
		}
		return s.acknowledge("Alias set", resp, resp.SystemResult().SetDevAlias,
			map[string]string{"Alias": args[0]})
	},
}

var locationCmd = &cobra.Command{
	Use:     "location LATITUDE LONGITUDE",
	Short:   "Set the device location",
	Example: `  smartplug location 51.5 -0.1234 --device lamp`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil || lat < -90 || lat > 90 {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil || lon < -180 || lon > 180 {
			return fmt.Errorf("invalid longitude %q", args[1])
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.SetLocation(lat, lon)
		if err != nil {
			return err
		}
		return s.acknowledge("Location set", resp, resp.SystemResult().SetDevLocation,
			map[string]string{"Latitude": args[0], "Longitude": args[1]})
	},
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Change hardware identifiers (MAC, device ID, hardware ID)",
	Long: `Change the identifiers the device reports to the cloud.

Wrong values can stop the cloud service and firmware updates from
recognising the device. Each command asks for confirmation.`,
}

var identityMACCmd = &cobra.Command{
	Use:   "mac ADDRESS",
	Short: "Set the MAC address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIdentity(cmd, "MAC address", args[0], device.Device.SetMACAddress,
			func(r *device.SystemResponse) *device.Status { return r.SetMACAddr })
	},
}

var identityDeviceIDCmd = &cobra.Command{
	Use:   "device-id ID",
	Short: "Set the device ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIdentity(cmd, "device ID", args[0], device.Device.SetDeviceID,
			func(r *device.SystemResponse) *device.Status { return r.SetDeviceID })
	},
}

var identityHardwareIDCmd = &cobra.Command{
	Use:   "hw-id ID",
	Short: "Set the hardware ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIdentity(cmd, "hardware ID", args[0], device.Device.SetHardwareID,
			func(r *device.SystemResponse) *device.Status { return r.SetHWID })
	},
}

func runIdentity(cmd *cobra.Command, field, value string,
	set func(device.Device, string) (*device.Response, error),
	status func(*device.SystemResponse) *device.Status,
) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	ask := func(in io.Reader, out io.Writer) bool {
		return ui.IdentityChangeConfirmation(in, out, field)
	}
	if err := confirmed(cmd, assumeYes, ask); err != nil {
		return err
	}

	resp, err := set(s.plug, value)
	if err != nil {
		return err
	}
	return s.acknowledge(strings.ToUpper(field[:1])+field[1:]+" set", resp,
		status(resp.SystemResult()), map[string]string{"Value": value})
}

var iconCmd = &cobra.Command{
	Use:   "icon",
	Short: "Read or replace the device icon",
}

var iconGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored icon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.GetIcon()
		if err != nil {
			return err
		}
		icon := resp.SystemResult().GetDevIcon
		if icon == nil {
			return fmt.Errorf("device did not return an icon")
		}
		if err := icon.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(icon)
		}
		s.printer.PrintSuccess("Device icon", map[string]string{
			"Hash": valueOr(icon.Hash, "-"),
			"Size": fmt.Sprintf("%d bytes", len(valueOr(icon.Icon, ""))),
		})
		return nil
	},
}

var iconSetCmd = &cobra.Command{
	Use:   "set ICON",
	Short: "Upload an icon (base64 encoded)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.SetIcon(args[0], iconHash)
		if err != nil {
			return err
		}
		return s.acknowledge("Icon set", resp, resp.SystemResult().SetDevIcon, nil)
	},
}

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Factory diagnostics",
}

var diagBootloaderCmd = &cobra.Command{
	Use:   "bootloader",
	Short: "Check the bootloader",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		resp, err := s.plug.CheckBootloader()
		if err != nil {
			return err
		}
		return s.acknowledge("Bootloader check passed", resp, resp.SystemResult().TestCheckUboot, nil)
	},
}

var diagConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Ask the device to check for a new configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		resp, err := s.plug.CheckConfig()
		if err != nil {
			return err
		}
		return s.acknowledge("Configuration check requested", resp, resp.SystemResult().CheckNewConfig, nil)
	},
}

var diagTestModeCmd = &cobra.Command{
	Use:   "test-mode",
	Short: "Enable factory test mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		resp, err := s.plug.SetTestMode()
		if err != nil {
			return err
		}
		return s.acknowledge("Test mode enabled", resp, resp.SystemResult().SetTestMode, nil)
	},
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func onOffWord(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func valueOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
