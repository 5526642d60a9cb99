package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/transport"
)

func TestHeaderRenderSortsParams(t *testing.T) {
	h := NewHeader("Firmware Upgrade", "smartplug firmware upgrade", map[string]string{
		"URL":    "http://fw/img.bin",
		"Device": "10.0.0.2:9999",
	})
	h.SetWidth(80)

	out := h.Render()
	if !strings.Contains(out, "FIRMWARE UPGRADE") {
		t.Errorf("header missing title:\n%s", out)
	}
	if strings.Index(out, "Device:") > strings.Index(out, "URL:") {
		t.Error("params should be rendered in sorted order")
	}
}

func TestResultRender(t *testing.T) {
	ok := NewSuccessResult("Relay switched on", map[string]string{"Device": "lamp"}).SetWidth(80).Render()
	if !strings.Contains(ok, "SUCCESS") || !strings.Contains(ok, "lamp") {
		t.Errorf("success box:\n%s", ok)
	}

	warn := NewWarningResult("Relay state unknown", nil).SetWidth(80).Render()
	if !strings.Contains(warn, "WARNING") {
		t.Errorf("warning box:\n%s", warn)
	}
}

func TestErrorResultUsesTroubleshootingHint(t *testing.T) {
	err := &transport.ProtocolError{Kind: transport.ErrConnection, Message: "failed to connect", Address: "10.0.0.2:9999"}

	out := NewErrorResult("Command failed", err).SetWidth(90).Render()
	for _, want := range []string{"FAILED", "Cannot connect to device", "Troubleshooting", "9999"} {
		if !strings.Contains(out, want) {
			t.Errorf("error box missing %q:\n%s", want, out)
		}
	}

	plain := NewErrorResult("Command failed", errors.New("boom")).SetWidth(80).Render()
	if strings.Contains(plain, "Troubleshooting") {
		t.Error("plain errors should not get troubleshooting tips")
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress("Upgrading", 3)
	p.SetStepNames([]string{"Download", "Wait", "Flash"})

	p.StartStep(1, "")
	p.CompleteStep(1, "")
	if p.Percent < 0.33 || p.Percent > 0.34 {
		t.Errorf("Percent = %v, want 1/3", p.Percent)
	}

	p.StartStep(2, "")
	p.SetStepFraction(0.5)
	if p.Percent < 0.49 || p.Percent > 0.51 {
		t.Errorf("Percent = %v, want 0.5", p.Percent)
	}

	p.SetStepFraction(7)
	if p.Percent < 0.66 || p.Percent > 0.67 {
		t.Errorf("fraction should clamp to 1, Percent = %v", p.Percent)
	}

	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(9, StepComplete, "")

	out := p.Render()
	if !strings.Contains(out, "Download") || !strings.Contains(out, StepMarkerComplete) {
		t.Errorf("progress render:\n%s", out)
	}
}

func TestRunner(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:     "Firmware Upgrade",
		Command:   "smartplug firmware upgrade",
		StepNames: []string{"Download", "Flash"},
		Verbose:   true,
		Output:    &out,
	})
	r.SetReply([]byte(`{"system":{"flash_firmware":{"err_code":0}}}`))

	details, err := r.Run(func(onStep StepCallback) (map[string]string, error) {
		onStep(1, "", StepRunning, "")
		r.Fraction(0.5, "50%")
		onStep(1, "", StepComplete, "")
		onStep(2, "Flash image", StepComplete, "")
		return map[string]string{"Version": "1.5.6"}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if details["Duration"] == "" {
		t.Error("Run() should add a Duration detail")
	}

	s := out.String()
	for _, want := range []string{"FIRMWARE UPGRADE", "Flash image", "complete", "1.5.6", "Device Reply", `"err_code": 0`} {
		if !strings.Contains(s, want) {
			t.Errorf("runner output missing %q", want)
		}
	}
}

func TestRunnerFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{Title: "Firmware Upgrade", StepNames: []string{"Download"}, Output: &out})

	_, err := r.Run(func(onStep StepCallback) (map[string]string, error) {
		onStep(1, "", StepFailed, "")
		return nil, &transport.ProtocolError{Kind: transport.ErrRead, Timeout: true}
	})
	if err == nil {
		t.Fatal("Run() should return the operation error")
	}
	if !strings.Contains(out.String(), "Device not responding") {
		t.Errorf("failure output:\n%s", out.String())
	}
}

func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON([]byte(`{"a":{"b":1}}`))
	if got != "{\n  \"a\": {\n    \"b\": 1\n  }\n}" {
		t.Errorf("PrettyJSON() = %q", got)
	}
	if got := PrettyJSON([]byte("not json")); got != "not json" {
		t.Errorf("PrettyJSON(invalid) = %q", got)
	}
}

func TestReplyBoxMaxLines(t *testing.T) {
	box := NewReplyBox([]byte(`{"a":1,"b":2,"c":3}`)).SetMaxLines(2).SetWidth(80)
	out := box.Render()
	if !strings.Contains(out, "truncated") {
		t.Errorf("reply box should be truncated:\n%s", out)
	}
	if len(box.Lines) != 5 {
		t.Errorf("SetMaxLines must not modify Lines, got %d", len(box.Lines))
	}
}

func TestConfirmDangerousOperation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"I AGREE\n", true},
		{"  I AGREE  \n", true},
		{"I AGREE", true},
		{"yes\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got := ConfirmDangerousOperation(strings.NewReader(tt.input), &out, "TEST", []string{"danger"}, "")
			if got != tt.want {
				t.Errorf("ConfirmDangerousOperation(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "danger") {
				t.Error("warnings should be printed")
			}
		})
	}

	if FactoryResetConfirmation(strings.NewReader("no\n"), &bytes.Buffer{}) {
		t.Error("FactoryResetConfirmation should require the phrase")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Errorf("Sparkline(nil) = %q", got)
	}
	if got := Sparkline([]float64{0, 7}); got != "▁█" {
		t.Errorf("Sparkline() = %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "▁▁▁" {
		t.Errorf("flat Sparkline() = %q", got)
	}
}

func watts(w float64) *device.Realtime {
	return &device.Realtime{Power: &w}
}

func TestMonitorUpdate(t *testing.T) {
	m := NewMonitor("Living Room", func() (*device.Realtime, error) { return watts(10), nil }, 10*time.Millisecond, 2)

	if !strings.Contains(m.View(), "Waiting for first reading") {
		t.Error("initial view should wait for a reading")
	}

	model, cmd := m.Update(pollMsg{})
	m = model.(Monitor)
	if !m.fetching || cmd == nil {
		t.Fatal("poll should start a fetch")
	}

	model, cmd = m.Update(cmd())
	m = model.(Monitor)
	if m.Samples() != 1 || m.fetching {
		t.Fatalf("after one reading: samples=%d fetching=%v", m.Samples(), m.fetching)
	}
	if cmd == nil {
		t.Fatal("monitor should schedule the next poll")
	}
	if !strings.Contains(m.View(), "10.0 W") {
		t.Errorf("view missing power:\n%s", m.View())
	}

	model, _ = m.Update(readingMsg{reading: watts(25), at: time.Now()})
	m = model.(Monitor)
	if !m.quitting {
		t.Error("monitor should quit after the sample limit")
	}
	if m.peak != 25 {
		t.Errorf("peak = %v, want 25", m.peak)
	}
	if got, _ := m.Latest().Watts(); got != 25 {
		t.Errorf("latest = %v, want 25", got)
	}
}

func TestMonitorShowsErrors(t *testing.T) {
	m := NewMonitor("plug", nil, time.Second, 0)

	model, _ := m.Update(readingMsg{err: &transport.ProtocolError{Kind: transport.ErrConnection}, at: time.Now()})
	m = model.(Monitor)

	view := m.View()
	if !strings.Contains(view, "Cannot connect to device") || !strings.Contains(view, "1 failed") {
		t.Errorf("view:\n%s", view)
	}
	if m.quitting {
		t.Error("errors should not stop an unlimited monitor")
	}
}

func TestMonitorQuitKey(t *testing.T) {
	m := NewMonitor("plug", nil, time.Second, 0)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !model.(Monitor).quitting || cmd == nil {
		t.Error("q should quit")
	}
}
