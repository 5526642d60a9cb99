package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/smartplug/internal/device"
)

// Network command flags
var (
	scanRefresh  bool
	wifiPassword string
	wifiKeyType  string
)

func init() {
	rootCmd.AddCommand(wifiCmd)
	rootCmd.AddCommand(cloudCmd)

	wifiCmd.AddCommand(wifiScanCmd)
	wifiCmd.AddCommand(wifiJoinCmd)
	wifiScanCmd.Flags().BoolVar(&scanRefresh, "refresh", true, "Ask the device to rescan before listing")
	wifiJoinCmd.Flags().StringVar(&wifiPassword, "password", "", "Network password (prompted for when omitted)")
	wifiJoinCmd.Flags().StringVar(&wifiKeyType, "key-type", "wpa2", "Security type (open, wep, wpa, wpa2 or 0-3)")

	cloudCmd.AddCommand(cloudInfoCmd)
	cloudCmd.AddCommand(cloudBindCmd)
	cloudCmd.AddCommand(cloudUnbindCmd)
	cloudCmd.AddCommand(cloudServerCmd)
}

var wifiCmd = &cobra.Command{
	Use:   "wifi",
	Short: "Scan for and join Wi-Fi networks",
}

var wifiScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List access points visible to the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.ScanAccessPoints(scanRefresh)
		if err != nil {
			return err
		}
		scan := resp.NetifResult().GetScanInfo
		if scan == nil {
			return fmt.Errorf("device did not return scan results")
		}
		if err := scan.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(scan)
		}
		s.printer.Println(scan.FormatTable())
		return nil
	},
}

var wifiJoinCmd = &cobra.Command{
	Use:   "join SSID",
	Short: "Connect the device to an access point",
	Long: `Send Wi-Fi credentials to the device.

A plug in setup mode runs its own access point; connect to it first and use
--device 192.168.0.1. The device drops off the setup network once it joins.`,
	Example: `  smartplug wifi join HomeNetwork --device 192.168.0.1
  smartplug wifi join Guest --key-type open --device 192.168.0.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyType, err := device.ParseKeyType(wifiKeyType)
		if err != nil {
			return err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		password := wifiPassword
		if password == "" && keyType != device.KeyTypeNone {
			password, err = readSecret(cmd, fmt.Sprintf("Password for %s: ", args[0]))
			if err != nil {
				return err
			}
		}

		resp, err := s.plug.JoinAccessPoint(args[0], password, keyType)
		if err != nil {
			return err
		}
		return s.acknowledge("Wi-Fi credentials sent", resp, resp.NetifResult().SetStaInfo,
			map[string]string{"SSID": args[0], "Security": device.KeyTypeName(keyType)})
	},
}

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Cloud account binding",
}

var cloudInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the cloud binding state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.CloudInfo()
		if err != nil {
			return err
		}
		info := resp.CloudResult().GetInfo
		if info == nil {
			return fmt.Errorf("device did not return cloud information")
		}
		if err := info.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(info)
		}
		s.printer.Println(info.FormatDetailed())
		return nil
	},
}

var cloudBindCmd = &cobra.Command{
	Use:   "bind USERNAME",
	Short: "Bind the device to a cloud account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		password, err := readSecret(cmd, fmt.Sprintf("Cloud password for %s: ", args[0]))
		if err != nil {
			return err
		}

		resp, err := s.plug.BindCloud(args[0], password)
		if err != nil {
			return err
		}
		return s.acknowledge("Bound to cloud account", resp, resp.CloudResult().Bind,
			map[string]string{"Username": args[0]})
	},
}

var cloudUnbindCmd = &cobra.Command{
	Use:   "unbind",
	Short: "Remove the cloud account binding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.UnbindCloud()
		if err != nil {
			return err
		}
		return s.acknowledge("Cloud binding removed", resp, resp.CloudResult().Unbind, nil)
	},
}

var cloudServerCmd = &cobra.Command{
	Use:     "server URL",
	Short:   "Point the device at a different cloud server",
	Example: `  smartplug cloud server devs.tplinkcloud.com --device lamp`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.SetServerURL(args[0])
		if err != nil {
			return err
		}
		return s.acknowledge("Cloud server set", resp, resp.CloudResult().SetServerURL,
			map[string]string{"Server": args[0]})
	},
}

// readSecret prompts for a password without echo on a terminal, or reads
// one line from piped input.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
