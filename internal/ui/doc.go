// Package ui provides terminal UI components for the smartplug CLI.
//
// Most components follow a "render once" pattern: they build a styled
// string with Lipgloss and the caller prints it. The exception is Monitor,
// a Bubble Tea model that keeps polling a plug's energy meter until the
// user quits.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - Progress: progress bar with step list
//   - Result: success, failure and warning boxes; failure boxes carry
//     troubleshooting tips derived from the transport error kind
//   - ReplyBox: indented JSON reply for raw and verbose output
//   - Runner: header, progress and result flow for multi-step commands
//   - Monitor: live energy meter view with a spinner and power sparkline
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Firmware Upgrade",
//	    Command:   "smartplug firmware upgrade",
//	    Params:    map[string]string{"Device": plug.Address()},
//	    StepNames: []string{"Start download", "Download image", "Flash"},
//	})
//
//	_, err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "", ui.StepComplete, "")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// zap logging is silent unless SMARTPLUG_LOG_LEVEL or --log-level is set,
// so the curated UI output is displayed cleanly by default.
package ui
