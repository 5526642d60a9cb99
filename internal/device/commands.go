package device

import "time"

// Wi-Fi security types accepted by JoinAccessPoint
const (
	KeyTypeNone = 0
	KeyTypeWEP  = 1
	KeyTypeWPA  = 2
	KeyTypeWPA2 = 3
)

// DefaultDelay is the delay in seconds used by reboot and reset
const DefaultDelay = 1

// SetRelayState switches the relay on or off
func (d Device) SetRelayState(on bool) (*Response, error) {
	return d.send(ModuleSystem, "set_relay_state", map[string]any{"state": boolInt(on)})
}

// On switches the relay on
func (d Device) On() (*Response, error) {
	return d.SetRelayState(true)
}

// Off switches the relay off
func (d Device) Off() (*Response, error) {
	return d.SetRelayState(false)
}

// Reboot restarts the device after delay seconds
func (d Device) Reboot(delay int) (*Response, error) {
	return d.send(ModuleSystem, "reboot", map[string]any{"delay": delay})
}

// ResetToFactory erases all settings after delay seconds
func (d Device) ResetToFactory(delay int) (*Response, error) {
	return d.send(ModuleSystem, "reset", map[string]any{"delay": delay})
}

// SetLED turns the status LED on or off
func (d Device) SetLED(on bool) (*Response, error) {
	return d.send(ModuleSystem, "set_led_off", map[string]any{"off": boolInt(!on)})
}

// SetAlias renames the device
func (d Device) SetAlias(name string) (*Response, error) {
	return d.send(ModuleSystem, "set_dev_alias", map[string]any{"alias": name})
}

// SetMACAddress overwrites the device MAC address
func (d Device) SetMACAddress(mac string) (*Response, error) {
	return d.send(ModuleSystem, "set_mac_addr", map[string]any{"mac": mac})
}

// SetDeviceID overwrites the device ID
func (d Device) SetDeviceID(id string) (*Response, error) {
	return d.send(ModuleSystem, "set_device_id", map[string]any{"deviceId": id})
}

// SetHardwareID overwrites the hardware ID
func (d Device) SetHardwareID(id string) (*Response, error) {
	return d.send(ModuleSystem, "set_hw_id", map[string]any{"hwId": id})
}

// SetLocation stores coordinates on the device
func (d Device) SetLocation(latitude, longitude float64) (*Response, error) {
	return d.send(ModuleSystem, "set_dev_location", map[string]any{
		"latitude":  latitude,
		"longitude": longitude,
	})
}

// CheckBootloader asks the device to verify its bootloader
func (d Device) CheckBootloader() (*Response, error) {
	return d.send(ModuleSystem, "test_check_uboot", nil)
}

// GetIcon reads the stored device icon
func (d Device) GetIcon() (*Response, error) {
	return d.send(ModuleSystem, "get_dev_icon", nil)
}

// SetIcon stores a device icon and its hash
func (d Device) SetIcon(icon, hash string) (*Response, error) {
	return d.send(ModuleSystem, "set_dev_icon", map[string]any{
		"icon": icon,
		"hash": hash,
	})
}

// SetTestMode enables manufacturing test mode
func (d Device) SetTestMode() (*Response, error) {
	return d.send(ModuleSystem, "set_test_mode", map[string]any{"enable": 1})
}

// DownloadFirmware makes the device fetch a firmware image from url
func (d Device) DownloadFirmware(url string) (*Response, error) {
	return d.send(ModuleSystem, "download_firmware", map[string]any{"url": url})
}

// DownloadState reports progress of a firmware download
func (d Device) DownloadState() (*Response, error) {
	return d.send(ModuleSystem, "get_download_state", empty())
}

// FlashFirmware installs a previously downloaded image
func (d Device) FlashFirmware() (*Response, error) {
	return d.send(ModuleSystem, "flash_firmware", empty())
}

// CheckConfig asks the device to check for a new configuration
func (d Device) CheckConfig() (*Response, error) {
	return d.send(ModuleSystem, "check_new_config", nil)
}

// SysInfo reads the system information block
func (d Device) SysInfo() (*Response, error) {
	return d.send(ModuleSystem, "get_sysinfo", empty())
}

// ScanAccessPoints lists visible Wi-Fi networks. With refresh the device
// performs a fresh scan instead of returning cached results.
func (d Device) ScanAccessPoints(refresh bool) (*Response, error) {
	return d.send(ModuleNetif, "get_scaninfo", map[string]any{"refresh": boolInt(refresh)})
}

// JoinAccessPoint connects the device to a Wi-Fi network
func (d Device) JoinAccessPoint(ssid, password string, keyType int) (*Response, error) {
	return d.send(ModuleNetif, "set_stainfo", map[string]any{
		"ssid":     ssid,
		"password": password,
		"key_type": keyType,
	})
}

// CloudInfo reads the cloud binding state
func (d Device) CloudInfo() (*Response, error) {
	return d.send(ModuleCloud, "get_info", nil)
}

// FirmwareList asks the cloud for available firmware images
func (d Device) FirmwareList() (*Response, error) {
	return d.send(ModuleCloud, "get_intl_fw_list", empty())
}

// SetServerURL points the device at a different cloud server
func (d Device) SetServerURL(url string) (*Response, error) {
	return d.send(ModuleCloud, "set_server_url", map[string]any{"server": url})
}

// BindCloud registers the device with a cloud account
func (d Device) BindCloud(username, password string) (*Response, error) {
	return d.send(ModuleCloud, "bind", map[string]any{
		"username": username,
		"password": password,
	})
}

// UnbindCloud removes the device from its cloud account
func (d Device) UnbindCloud() (*Response, error) {
	return d.send(ModuleCloud, "unbind", nil)
}

// Time reads the device clock
func (d Device) Time() (*Response, error) {
	return d.send(ModuleTime, "get_time", nil)
}

// Timezone reads the device timezone index
func (d Device) Timezone() (*Response, error) {
	return d.send(ModuleTime, "get_timezone", nil)
}

// SetTimezone sets the device clock to t and its timezone to index
func (d Device) SetTimezone(t time.Time, index int) (*Response, error) {
	return d.send(ModuleTime, "set_timezone", map[string]any{
		"year":  t.Year(),
		"month": int(t.Month()),
		"mday":  t.Day(),
		"hour":  t.Hour(),
		"min":   t.Minute(),
		"sec":   t.Second(),
		"index": index,
	})
}

// Realtime reads the energy meter
func (d Device) Realtime() (*Response, error) {
	return d.send(ModuleEmeter, "get_realtime", empty())
}

// Gain reads the energy meter calibration
func (d Device) Gain() (*Response, error) {
	return d.send(ModuleEmeter, "get_vgain_igain", empty())
}

// DayStats reads daily energy totals for one month
func (d Device) DayStats(year, month int) (*Response, error) {
	return d.send(ModuleEmeter, "get_daystat", map[string]any{
		"year":  year,
		"month": month,
	})
}

// MonthStats reads monthly energy totals for one year
func (d Device) MonthStats(year int) (*Response, error) {
	return d.send(ModuleEmeter, "get_monthstat", map[string]any{"year": year})
}

// EraseStats clears the stored energy statistics
func (d Device) EraseStats() (*Response, error) {
	return d.send(ModuleEmeter, "erase_emeter_stat", nil)
}
