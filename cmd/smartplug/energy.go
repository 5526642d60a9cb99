package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/smartplug/internal/config"
	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/ui"
)

// Energy command flags
var (
	statYear  int
	statMonth int
)

func init() {
	rootCmd.AddCommand(energyCmd)

	energyCmd.AddCommand(energyRealtimeCmd)
	energyCmd.AddCommand(energyGainCmd)
	energyCmd.AddCommand(energyDayCmd)
	energyCmd.AddCommand(energyMonthCmd)
	energyCmd.AddCommand(energyEraseCmd)

	now := time.Now()
	energyDayCmd.Flags().IntVar(&statYear, "year", now.Year(), "Year of the statistics")
	energyDayCmd.Flags().IntVar(&statMonth, "month", int(now.Month()), "Month of the statistics (1-12)")
	energyMonthCmd.Flags().IntVar(&statYear, "year", now.Year(), "Year of the statistics")
	energyEraseCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Energy meter readings and statistics",
	Long: `Read the energy meter of plugs that have one (for example HS110).

Readings are shown in volts, amps, watts and kilowatt-hours regardless of
whether the firmware reports base units or milli-units.`,
}

var energyRealtimeCmd = &cobra.Command{
	Use:   "realtime",
	Short: "Show the current voltage, current and power",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		reading, resp, err := readRealtime(s.plug)
		if err != nil {
			return err
		}

		switch s.format {
		case config.FormatJSON:
			return s.printJSON(resp.Emeter)
		case config.FormatCompact:
			s.printer.Println(reading.String())
		default:
			s.printer.Println(reading.FormatDetailed())
		}
		return nil
	},
}

// readRealtime fetches one reading and fails if the device has no meter
func readRealtime(plug device.Device) (*device.Realtime, *device.Response, error) {
	resp, err := plug.Realtime()
	if err != nil {
		return nil, nil, err
	}

	reading := resp.EmeterResult().GetRealtime
	if reading == nil {
		return nil, resp, fmt.Errorf("device has no energy meter")
	}
	if err := reading.Err(); err != nil {
		return nil, resp, err
	}
	return reading, resp, nil
}

var energyGainCmd = &cobra.Command{
	Use:   "gain",
	Short: "Show the meter calibration gains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.Gain()
		if err != nil {
			return err
		}
		gain := resp.EmeterResult().GetVGainIGain
		if gain == nil {
			return fmt.Errorf("device has no energy meter")
		}
		if err := gain.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(gain)
		}
		s.printer.PrintSuccess("Energy meter gains", map[string]string{
			"Voltage gain": int64Or(gain.VGain),
			"Current gain": int64Or(gain.IGain),
		})
		return nil
	},
}

var energyDayCmd = &cobra.Command{
	Use:     "day",
	Short:   "Show daily energy totals for a month",
	Example: `  smartplug energy day --year 2024 --month 2 --device lamp`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statMonth < 1 || statMonth > 12 {
			return fmt.Errorf("invalid month %d (use 1-12)", statMonth)
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.DayStats(statYear, statMonth)
		if err != nil {
			return err
		}
		stats := resp.EmeterResult().GetDaystat
		if stats == nil {
			return fmt.Errorf("device has no energy meter")
		}
		if err := stats.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(stats)
		}
		s.printer.Println(stats.FormatTable())
		return nil
	},
}

var energyMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show monthly energy totals for a year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		resp, err := s.plug.MonthStats(statYear)
		if err != nil {
			return err
		}
		stats := resp.EmeterResult().GetMonthstat
		if stats == nil {
			return fmt.Errorf("device has no energy meter")
		}
		if err := stats.Err(); err != nil {
			return err
		}

		if s.wantJSON() {
			return s.printJSON(stats)
		}
		s.printer.Println(stats.FormatTable())
		return nil
	},
}

var energyEraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase all stored energy statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		ask := func(in io.Reader, out io.Writer) bool {
			return ui.ConfirmDangerousOperation(in, out, "ERASE ENERGY STATISTICS",
				[]string{"All daily and monthly energy totals stored on the device will be deleted"},
				"The statistics cannot be recovered.")
		}
		if err := confirmed(cmd, assumeYes, ask); err != nil {
			return err
		}

		resp, err := s.plug.EraseStats()
		if err != nil {
			return err
		}
		return s.acknowledge("Energy statistics erased", resp, resp.EmeterResult().EraseEmeterStat, nil)
	},
}

func int64Or(p *int64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}
