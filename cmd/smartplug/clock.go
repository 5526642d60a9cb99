package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(timezoneCmd)
	timezoneCmd.AddCommand(timezoneSetCmd)
}

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Show the device clock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.Time()
		if err != nil {
			return err
		}
		clock := resp.TimeResult().GetTime
		if clock == nil {
			return fmt.Errorf("device did not return its clock")
		}
		if err := clock.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(clock)
		}

		details := map[string]string{"Device time": clock.FormatClock()}
		if t, ok := clock.Time(time.UTC); ok {
			details["Drift"] = driftFrom(t).String()
		}
		s.printer.PrintSuccess("Device clock", details)
		return nil
	},
}

// driftFrom compares a device wall clock reading with the local wall clock
func driftFrom(device time.Time) time.Duration {
	now := time.Now()
	local := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	return device.Sub(local).Round(time.Second)
}

var timezoneCmd = &cobra.Command{
	Use:   "timezone",
	Short: "Show the device timezone index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.Timezone()
		if err != nil {
			return err
		}
		tz := resp.TimeResult().GetTimezone
		if tz == nil {
			return fmt.Errorf("device did not return its timezone")
		}
		if err := tz.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(tz)
		}
		s.printer.PrintSuccess("Device timezone", map[string]string{"Index": int64Or(tz.Index)})
		return nil
	},
}

var timezoneSetCmd = &cobra.Command{
	Use:   "set INDEX",
	Short: "Set the timezone index and sync the clock to local time",
	Long: `Set the device timezone index and set its clock to the current local time.

The index refers to the timezone table built into the device firmware.`,
	Example: `  smartplug timezone set 39 --device lamp`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 {
			return fmt.Errorf("invalid timezone index %q", args[0])
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		now := time.Now()
		resp, err := s.plug.SetTimezone(now, index)
		if err != nil {
			return err
		}
		return s.acknowledge("Timezone set", resp, resp.TimeResult().SetTimezone, map[string]string{
			"Index": args[0],
			"Clock": now.Format("2006-01-02 15:04:05"),
		})
	},
}
