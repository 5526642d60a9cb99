package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmPhrase is what the user must type to approve a dangerous operation
const ConfirmPhrase = "I AGREE"

// ConfirmDangerousOperation displays a warning box on out and reads one line
// from in. Returns true only if the user typed ConfirmPhrase.
func ConfirmDangerousOperation(in io.Reader, out io.Writer, title string, warnings []string, disclaimer string) bool {
	width := GetTerminalWidth()

	lines := []string{
		"",
		lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", title)),
		"",
	}

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	if disclaimer != "" {
		disclaimerStyle := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		lines = append(lines, disclaimerStyle.Render(disclaimer), "")
	}

	_, _ = fmt.Fprintln(out, WarningBoxStyle(width).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprintln(out)

	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", ConfirmPhrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	if strings.TrimSpace(input) == ConfirmPhrase {
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	_, _ = fmt.Fprintln(out)
	return false
}

// FactoryResetConfirmation asks before erasing all device settings
func FactoryResetConfirmation(in io.Reader, out io.Writer) bool {
	return ConfirmDangerousOperation(in, out,
		"FACTORY RESET",
		[]string{
			"All settings on the plug will be erased",
			"The plug will leave your Wi-Fi network and start its own access point",
			"Cloud binding, schedules and energy statistics are lost",
		},
		"",
	)
}

// FirmwareFlashConfirmation asks before installing firmware
func FirmwareFlashConfirmation(in io.Reader, out io.Writer) bool {
	return ConfirmDangerousOperation(in, out,
		"FIRMWARE FLASH",
		[]string{
			"The plug will write a new firmware image and reboot",
			"Do not unplug the device until it is reachable again",
			"An image for the wrong model can leave the plug unusable",
		},
		"DISCLAIMER: This software is provided as-is, without warranty of any kind. "+
			"The authors accept no responsibility for any damage to your device.",
	)
}

// IdentityChangeConfirmation asks before overwriting MAC, device or hardware IDs
func IdentityChangeConfirmation(in io.Reader, out io.Writer, field string) bool {
	return ConfirmDangerousOperation(in, out,
		"CHANGE "+strings.ToUpper(field),
		[]string{
			"Identity fields are used by the cloud service to recognise the plug",
			"A wrong value can break cloud binding and firmware updates",
		},
		"",
	)
}
