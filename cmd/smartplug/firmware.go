package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/transport"
	"github.com/muurk/smartplug/internal/ui"
)

// Firmware command flags
var (
	pollInterval    time.Duration
	downloadTimeout time.Duration
	verbose         bool
)

func init() {
	rootCmd.AddCommand(firmwareCmd)

	firmwareCmd.AddCommand(firmwareListCmd)
	firmwareCmd.AddCommand(firmwareDownloadCmd)
	firmwareCmd.AddCommand(firmwareStatusCmd)
	firmwareCmd.AddCommand(firmwareFlashCmd)
	firmwareCmd.AddCommand(firmwareUpgradeCmd)

	firmwareFlashCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	firmwareUpgradeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	firmwareUpgradeCmd.Flags().DurationVar(&pollInterval, "poll", device.DefaultPollInterval, "Download state poll interval")
	firmwareUpgradeCmd.Flags().DurationVar(&downloadTimeout, "download-timeout", 5*time.Minute, "Give up waiting for the download after this long")
	firmwareUpgradeCmd.Flags().BoolVar(&verbose, "verbose", false, "Show the last device reply")
}

var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Firmware download and upgrade",
}

var firmwareListCmd = &cobra.Command{
	Use:   "list",
	Short: "List firmware offered by the cloud",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.FirmwareList()
		if err != nil {
			return err
		}
		list := resp.CloudResult().GetIntlFwList
		if list == nil {
			return fmt.Errorf("device did not return a firmware list")
		}
		if err := list.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(list)
		}
		s.printer.Println(list.FormatTable())
		return nil
	},
}

var firmwareDownloadCmd = &cobra.Command{
	Use:   "download URL",
	Short: "Start downloading a firmware image to the device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.DownloadFirmware(args[0])
		if err != nil {
			return err
		}
		return s.acknowledge("Firmware download started", resp, resp.SystemResult().DownloadFirmware,
			map[string]string{"URL": args[0]})
	},
}

var firmwareStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show firmware download progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.DownloadState()
		if err != nil {
			return err
		}
		state := resp.SystemResult().GetDownloadState
		if state == nil {
			return device.ErrNoDownloadState
		}
		if err := state.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(state)
		}
		s.printer.PrintSuccess("Firmware download", map[string]string{
			"Progress":    fmt.Sprintf("%d%%", state.Percent()),
			"State":       int64Or(state.State),
			"Flash time":  seconds(state.FlashTime),
			"Reboot time": seconds(state.RebootTime),
		})
		return nil
	},
}

var firmwareFlashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Flash a downloaded firmware image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		if err := confirmed(cmd, assumeYes, ui.FirmwareFlashConfirmation); err != nil {
			return err
		}

		resp, err := s.plug.FlashFirmware()
		if err != nil {
			return err
		}
		return s.acknowledge("Firmware flash started", resp, resp.SystemResult().FlashFirmware, nil)
	},
}

var firmwareUpgradeCmd = &cobra.Command{
	Use:   "upgrade URL",
	Short: "Download and flash a firmware image",
	Long: `Download a firmware image to the device, wait for the download to
finish and flash it. The device reboots when flashing completes.`,
	Example: `  smartplug firmware upgrade http://192.168.0.10/hs110.bin --device lamp`,
	Args:    cobra.ExactArgs(1),
	RunE:    runFirmwareUpgrade,
}

func runFirmwareUpgrade(cmd *cobra.Command, args []string) error {
	url := args[0]

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if err := confirmed(cmd, assumeYes, ui.FirmwareFlashConfirmation); err != nil {
		return err
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Firmware Upgrade",
		Command: "smartplug firmware upgrade",
		Params: map[string]string{
			"Device": s.plug.Address(),
			"URL":    url,
		},
		StepNames: []string{"Request download", "Download image", "Flash image"},
		Verbose:   verbose,
		Output:    s.out,
	})

	_, err = runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		fail := func(step int, err error) (map[string]string, error) {
			onStep(step, "", ui.StepFailed, transport.ShortErrorMessage(err))
			return nil, err
		}

		onStep(1, "", ui.StepRunning, "")
		resp, err := s.plug.DownloadFirmware(url)
		if err != nil {
			return fail(1, err)
		}
		if err := resp.SystemResult().DownloadFirmware.Err(); err != nil {
			return fail(1, err)
		}
		onStep(1, "", ui.StepComplete, "accepted")

		onStep(2, "", ui.StepRunning, "0%")
		ctx, cancel := context.WithTimeout(cmd.Context(), downloadTimeout)
		defer cancel()
		state, err := s.plug.WaitForDownload(ctx, pollInterval, func(st *device.DownloadState) {
			runner.Fraction(float64(st.Percent())/100, fmt.Sprintf("%d%%", st.Percent()))
		})
		if err != nil {
			return fail(2, err)
		}
		onStep(2, "", ui.StepComplete, "100%")

		onStep(3, "", ui.StepRunning, "")
		resp, err = s.plug.FlashFirmware()
		if err != nil {
			return fail(3, err)
		}
		if err := resp.SystemResult().FlashFirmware.Err(); err != nil {
			return fail(3, err)
		}
		onStep(3, "", ui.StepComplete, "device rebooting")

		if reply, err := json.Marshal(resp); err == nil {
			runner.SetReply(reply)
		}

		return map[string]string{
			"Flash time":  seconds(state.FlashTime),
			"Reboot time": seconds(state.RebootTime),
		}, nil
	})
	if err != nil {
		return reportedError{err}
	}
	return nil
}

func seconds(p *int64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%ds", *p)
}
