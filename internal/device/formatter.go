package device

import (
	"fmt"
	"strings"
	"time"
)

const missing = "-"

func str(p *string) string {
	if p == nil || *p == "" {
		return missing
	}
	return *p
}

func onOff(on, ok bool) string {
	if !ok {
		return missing
	}
	if on {
		return "ON"
	}
	return "OFF"
}

// Summary returns a one-line summary of the device
func (s *SysInfo) Summary() string {
	on, ok := s.RelayOn()
	return fmt.Sprintf("%s (%s) relay %s, FW %s", str(s.Alias), str(s.Model), onOff(on, ok), str(s.SWVersion))
}

// FormatIdentity returns device identification fields
func (s *SysInfo) FormatIdentity() string {
	var b strings.Builder

	b.WriteString("=== Device Information ===\n")
	b.WriteString(fmt.Sprintf("Alias:       %s\n", str(s.Alias)))
	b.WriteString(fmt.Sprintf("Model:       %s\n", str(s.Model)))
	b.WriteString(fmt.Sprintf("Name:        %s\n", str(s.DevName)))
	b.WriteString(fmt.Sprintf("Type:        %s\n", str(s.Type)))
	b.WriteString(fmt.Sprintf("MAC Address: %s\n", str(s.MAC)))
	b.WriteString(fmt.Sprintf("Firmware:    %s\n", str(s.SWVersion)))
	b.WriteString(fmt.Sprintf("Hardware:    %s\n", str(s.HWVersion)))
	b.WriteString(fmt.Sprintf("Device ID:   %s\n", str(s.DeviceID)))
	b.WriteString(fmt.Sprintf("Hardware ID: %s\n", str(s.HWID)))
	b.WriteString(fmt.Sprintf("OEM ID:      %s\n", str(s.OEMID)))

	return b.String()
}

// FormatState returns relay, LED and radio state
func (s *SysInfo) FormatState() string {
	var b strings.Builder

	b.WriteString("=== State ===\n")
	on, ok := s.RelayOn()
	b.WriteString(fmt.Sprintf("Relay:    %s\n", onOff(on, ok)))
	if uptime, ok := s.Uptime(); ok {
		b.WriteString(fmt.Sprintf("On Time:  %s\n", uptime))
	}
	led, ok := s.LEDOn()
	b.WriteString(fmt.Sprintf("LED:      %s\n", onOff(led, ok)))
	if s.RSSI != nil {
		b.WriteString(fmt.Sprintf("RSSI:     %d dBm\n", *s.RSSI))
	}
	if lat, lon, ok := s.Location(); ok {
		b.WriteString(fmt.Sprintf("Location: %.4f, %.4f\n", lat, lon))
	}
	if s.Updating != nil && *s.Updating != 0 {
		b.WriteString("Updating: yes\n")
	}

	for _, o := range s.Children {
		state := missing
		if o.State != nil {
			state = onOff(*o.State == 1, true)
		}
		b.WriteString(fmt.Sprintf("Outlet %s: %s (%s)\n", str(o.ID), state, str(o.Alias)))
	}

	return b.String()
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (s *SysInfo) FormatCompact() string {
	var b strings.Builder

	on, ok := s.RelayOn()
	b.WriteString(fmt.Sprintf("Device:   %s (MAC: %s)\n", str(s.Alias), str(s.MAC)))
	b.WriteString(fmt.Sprintf("Model:    %s\n", str(s.Model)))
	b.WriteString(fmt.Sprintf("Firmware: %s\n", str(s.SWVersion)))
	b.WriteString(fmt.Sprintf("Relay:    %s\n", onOff(on, ok)))

	return b.String()
}

// FormatDetailed returns every known field of the system information block
func (s *SysInfo) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                   SMART PLUG SYSTEM INFO                       ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	b.WriteString(s.FormatIdentity())
	b.WriteString("\n")
	b.WriteString(s.FormatState())

	return b.String()
}

// FormatDetailed renders the reading with the accumulated total
func (r *Realtime) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Energy Meter ===\n")
	if v, ok := r.Volts(); ok {
		b.WriteString(fmt.Sprintf("Voltage: %.1f V\n", v))
	}
	if i, ok := r.Amps(); ok {
		b.WriteString(fmt.Sprintf("Current: %.3f A\n", i))
	}
	if p, ok := r.Watts(); ok {
		b.WriteString(fmt.Sprintf("Power:   %.1f W\n", p))
	}
	if t, ok := r.KilowattHours(); ok {
		b.WriteString(fmt.Sprintf("Total:   %.3f kWh\n", t))
	}

	return b.String()
}

// FormatTable renders the daily totals one per line
func (d *DayStats) FormatTable() string {
	var b strings.Builder

	b.WriteString("Date       | Energy (kWh)\n")
	b.WriteString("-----------+-------------\n")
	for _, s := range d.DayList {
		b.WriteString(fmt.Sprintf("%s | %s\n", statDate(s, true), statEnergy(s)))
	}
	b.WriteString(fmt.Sprintf("Total: %.3f kWh\n", d.Total()))

	return b.String()
}

// FormatTable renders the monthly totals one per line
func (m *MonthStats) FormatTable() string {
	var b strings.Builder

	b.WriteString("Month   | Energy (kWh)\n")
	b.WriteString("--------+-------------\n")
	for _, s := range m.MonthList {
		b.WriteString(fmt.Sprintf("%-7s | %s\n", statDate(s, false), statEnergy(s)))
	}
	b.WriteString(fmt.Sprintf("Total: %.3f kWh\n", m.Total()))

	return b.String()
}

func statDate(s EnergyStat, withDay bool) string {
	var year, month, day int64
	if s.Year != nil {
		year = *s.Year
	}
	if s.Month != nil {
		month = *s.Month
	}
	if s.Day != nil {
		day = *s.Day
	}
	if withDay {
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

func statEnergy(s EnergyStat) string {
	kwh, ok := s.KilowattHours()
	if !ok {
		return missing
	}
	return fmt.Sprintf("%.3f", kwh)
}

// FormatTable renders the access point list
func (s *ScanInfo) FormatTable() string {
	var b strings.Builder

	for _, ap := range s.APList {
		keyType := missing
		if ap.KeyType != nil {
			keyType = KeyTypeName(int(*ap.KeyType))
		}
		b.WriteString(fmt.Sprintf("%-32s %s\n", str(ap.SSID), keyType))
	}
	if len(s.APList) == 0 {
		b.WriteString("(no networks found)\n")
	}

	return b.String()
}

// KeyTypeName returns the display name of a Wi-Fi security type
func KeyTypeName(keyType int) string {
	switch keyType {
	case KeyTypeNone:
		return "OPEN"
	case KeyTypeWEP:
		return "WEP"
	case KeyTypeWPA:
		return "WPA"
	case KeyTypeWPA2:
		return "WPA2"
	default:
		return fmt.Sprintf("unknown(%d)", keyType)
	}
}

// ParseKeyType accepts a security type by name or number
func ParseKeyType(s string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "0", "NONE", "OPEN":
		return KeyTypeNone, nil
	case "1", "WEP":
		return KeyTypeWEP, nil
	case "2", "WPA":
		return KeyTypeWPA, nil
	case "3", "WPA2":
		return KeyTypeWPA2, nil
	default:
		return 0, fmt.Errorf("unknown key type %q (use none, wep, wpa or wpa2)", s)
	}
}

// FormatDetailed renders the cloud binding state
func (c *CloudInfo) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Cloud ===\n")
	b.WriteString(fmt.Sprintf("Server:   %s\n", str(c.Server)))
	b.WriteString(fmt.Sprintf("Username: %s\n", str(c.Username)))
	b.WriteString(fmt.Sprintf("Bound:    %v\n", c.Bound()))
	if c.CldConnection != nil {
		b.WriteString(fmt.Sprintf("Online:   %v\n", *c.CldConnection == 1))
	}

	return b.String()
}

// FormatTable renders the firmware list
func (f *FirmwareList) FormatTable() string {
	var b strings.Builder

	if len(f.FwList) == 0 {
		return "(no firmware available)\n"
	}
	for _, fw := range f.FwList {
		b.WriteString(fmt.Sprintf("%s  %s\n", str(fw.FwVer), str(fw.FwTitle)))
		b.WriteString(fmt.Sprintf("  URL: %s\n", str(fw.FwURL)))
		if fw.FwReleaseLog != nil && *fw.FwReleaseLog != "" {
			b.WriteString(fmt.Sprintf("  %s\n", *fw.FwReleaseLog))
		}
	}

	return b.String()
}

// FormatClock renders the device clock or a placeholder when incomplete
func (t *TimeInfo) FormatClock() string {
	ts, ok := t.Time(time.UTC)
	if !ok {
		return missing
	}
	return ts.Format("2006-01-02 15:04:05")
}
