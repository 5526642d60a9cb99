package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/smartplug/internal/config"
	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/ui"
)

// Raw and watch command flags
var (
	rawDocument   string
	watchInterval time.Duration
	watchCount    int
)

func init() {
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(watchCmd)

	rawCmd.Flags().StringVar(&rawDocument, "json", "", "Complete request document ('-' reads stdin)")
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 2*time.Second, "Time between readings")
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "Stop after this many readings (0 = until quit)")
}

var rawCmd = &cobra.Command{
	Use:   "raw [MODULE ACTION [PARAMS]]",
	Short: "Send an arbitrary request and print the reply",
	Long: `Send any request to the device and print the decoded JSON reply.

Either give a module, an action and optional JSON parameters, or pass a
complete request document with --json.`,
	Example: `  smartplug raw system get_sysinfo --device lamp
  smartplug raw emeter get_daystat '{"year":2024,"month":2}' --device lamp
  smartplug raw --json '{"system":{"get_sysinfo":{}}}' --device lamp
  echo '{"time":{"get_time":null}}' | smartplug raw --json - --device lamp`,
	Args: cobra.RangeArgs(0, 3),
	RunE: runRaw,
}

func runRaw(cmd *cobra.Command, args []string) error {
	request, err := rawRequest(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	reply, err := s.plug.Exchange(request)
	if err != nil {
		return err
	}

	if s.format == config.FormatDetailed {
		s.printer.PrintReply(reply)
		return nil
	}
	s.printer.Println(ui.PrettyJSON(reply))
	return nil
}

// rawRequest builds the request document from --json or from positional
// module, action and params arguments
func rawRequest(stdin io.Reader, args []string) ([]byte, error) {
	if rawDocument != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--json cannot be combined with module and action arguments")
		}

		doc := []byte(rawDocument)
		if rawDocument == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read request from stdin: %w", err)
			}
			doc = []byte(strings.TrimSpace(string(data)))
		}
		if !json.Valid(doc) {
			return nil, fmt.Errorf("request is not valid JSON")
		}
		return doc, nil
	}

	if len(args) < 2 {
		return nil, fmt.Errorf("give a module and an action, or a request with --json")
	}

	var params any = map[string]any{}
	if len(args) == 3 {
		if err := json.Unmarshal([]byte(args[2]), &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	return device.Command(args[0], args[1], params)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously show energy meter readings",
	Long: `Poll the energy meter and show live voltage, current and power.

On a terminal this runs an interactive view (press q to quit). When output
is redirected one line is printed per reading.`,
	Example: `  smartplug watch --device lamp
  smartplug watch --device lamp --interval 5s --count 12 > power.log`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchInterval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	fetch := func() (*device.Realtime, error) {
		reading, _, err := readRealtime(s.plug)
		return reading, err
	}

	if !ui.IsTerminal() || s.wantJSON() {
		return watchLines(cmd, s, fetch)
	}

	title := "Energy monitor " + s.plug.Address()
	if s.name != "" {
		title = "Energy monitor " + s.name
	}

	monitor := ui.NewMonitor(title, fetch, watchInterval, watchCount)
	final, err := ui.RunMonitor(monitor, tea.WithOutput(s.out))
	if err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}
	if final.Samples() > 0 && final.Latest() == nil {
		return fmt.Errorf("no reading succeeded")
	}
	return nil
}

// watchLines prints one reading per line until the count is reached or
// the command context is cancelled
func watchLines(cmd *cobra.Command, s *session, fetch ui.FetchFunc) error {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		reading, err := fetch()
		stamp := time.Now().Format(time.RFC3339)
		switch {
		case err != nil:
			fmt.Fprintf(s.out, "%s error: %v\n", stamp, err)
		case s.wantJSON():
			data, err := json.Marshal(reading)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, string(data))
		default:
			fmt.Fprintf(s.out, "%s %s\n", stamp, reading)
		}

		if watchCount > 0 && n >= watchCount {
			return nil
		}

		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}
