package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title     string            // Command title (e.g., "Firmware Upgrade")
	Command   string            // Full command (e.g., "smartplug firmware upgrade")
	Params    map[string]string // Parameters to display in header
	StepNames []string          // Names for each step
	Verbose   bool              // Whether to show the last device reply
	Output    io.Writer         // Output writer (default: os.Stdout)
}

// Runner orchestrates the header, progress and result output of a
// multi-step command such as a firmware upgrade.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	reply     []byte
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var progress *Progress
	if len(config.StepNames) > 0 {
		progress = NewProgress("", len(config.StepNames))
		progress.SetWidth(width)
		progress.SetStepNames(config.StepNames)
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the work a Runner executes. It reports progress through
// onStep and returns details for the success box.
type Operation func(onStep StepCallback) (map[string]string, error)

// Run prints the header, executes operation and prints the result box.
func (r *Runner) Run(operation Operation) (map[string]string, error) {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(r.stepCallback())
	duration := time.Since(r.startTime)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		result := NewErrorResult(r.config.Title+" failed", err)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
	} else {
		if details == nil {
			details = make(map[string]string)
		}
		details["Duration"] = duration.Round(time.Millisecond).String()

		result := NewSuccessResult(r.config.Title+" complete", details)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
	}

	if r.config.Verbose && len(r.reply) > 0 {
		_, _ = fmt.Fprintln(r.output)
		box := NewReplyBox(r.reply)
		box.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, box.Render())
	}

	return details, err
}

// SetReply stores the last device reply for verbose display
func (r *Runner) SetReply(reply []byte) {
	r.reply = reply
}

// Fraction reports partial progress of the running step, e.g. a download ratio
func (r *Runner) Fraction(fraction float64, message string) {
	if r.progress == nil || r.progress.Current == 0 {
		return
	}
	r.progress.SetStepFraction(fraction)
	step := &r.progress.Steps[r.progress.Current-1]
	step.Message = message
	_, _ = fmt.Fprint(r.output, r.progress.renderStepLine(*step)+"  "+r.progress.bar.ViewAs(fraction)+"\r")
}

func (r *Runner) stepCallback() StepCallback {
	return func(stepNumber int, name string, status StepStatus, message string) {
		if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
			return
		}

		if name != "" {
			r.progress.Steps[stepNumber-1].Name = name
		}
		r.progress.UpdateStep(stepNumber, status, message)

		line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
		switch status {
		case StepComplete, StepFailed, StepSkipped:
			// Pad to overwrite a longer running line
			_, _ = fmt.Fprintf(r.output, "%-*s\n", r.width, line)
		case StepRunning:
			_, _ = fmt.Fprint(r.output, line+"\r")
		}
	}
}
