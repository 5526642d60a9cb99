package device

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response mirrors the module/action nesting of a request. Devices omit
// modules, actions and fields they do not support, so every field is a
// pointer or slice and absence decodes as nil.
type Response struct {
	System  *SystemResponse `json:"system,omitempty"`
	Emeter  *EmeterResponse `json:"emeter,omitempty"`
	Netif   *NetifResponse  `json:"netif,omitempty"`
	CnCloud *CloudResponse  `json:"cnCloud,omitempty"`
	Time    *TimeResponse   `json:"time,omitempty"`
}

// Status is the error code pair every action result carries
type Status struct {
	ErrCode *int64  `json:"err_code,omitempty"`
	ErrMsg  *string `json:"err_msg,omitempty"`
}

// OK reports whether the device accepted the action. A missing err_code
// counts as success.
func (s *Status) OK() bool {
	return s == nil || s.ErrCode == nil || *s.ErrCode == 0
}

// Err returns a description of a rejected action, or nil
func (s *Status) Err() error {
	if s.OK() {
		return nil
	}
	if s.ErrMsg != nil {
		return fmt.Errorf("device returned err_code %d: %s", *s.ErrCode, *s.ErrMsg)
	}
	return fmt.Errorf("device returned err_code %d", *s.ErrCode)
}

// SystemResponse holds results of "system" module actions
type SystemResponse struct {
	GetSysInfo       *SysInfo       `json:"get_sysinfo,omitempty"`
	SetRelayState    *Status        `json:"set_relay_state,omitempty"`
	Reboot           *Status        `json:"reboot,omitempty"`
	Reset            *Status        `json:"reset,omitempty"`
	SetLEDOff        *Status        `json:"set_led_off,omitempty"`
	SetDevAlias      *Status        `json:"set_dev_alias,omitempty"`
	SetMACAddr       *Status        `json:"set_mac_addr,omitempty"`
	SetDeviceID      *Status        `json:"set_device_id,omitempty"`
	SetHWID          *Status        `json:"set_hw_id,omitempty"`
	SetDevLocation   *Status        `json:"set_dev_location,omitempty"`
	TestCheckUboot   *Status        `json:"test_check_uboot,omitempty"`
	GetDevIcon       *Icon          `json:"get_dev_icon,omitempty"`
	SetDevIcon       *Status        `json:"set_dev_icon,omitempty"`
	SetTestMode      *Status        `json:"set_test_mode,omitempty"`
	DownloadFirmware *Status        `json:"download_firmware,omitempty"`
	GetDownloadState *DownloadState `json:"get_download_state,omitempty"`
	FlashFirmware    *Status        `json:"flash_firmware,omitempty"`
	CheckNewConfig   *Status        `json:"check_new_config,omitempty"`
}

// SysInfo is the system information block
type SysInfo struct {
	Status
	SWVersion  *string  `json:"sw_ver,omitempty"`
	HWVersion  *string  `json:"hw_ver,omitempty"`
	Type       *string  `json:"type,omitempty"`
	MICType    *string  `json:"mic_type,omitempty"`
	Model      *string  `json:"model,omitempty"`
	MAC        *string  `json:"mac,omitempty"`
	MICMAC     *string  `json:"mic_mac,omitempty"`
	DeviceID   *string  `json:"deviceId,omitempty"`
	HWID       *string  `json:"hwId,omitempty"`
	FWID       *string  `json:"fwId,omitempty"`
	OEMID      *string  `json:"oemId,omitempty"`
	Alias      *string  `json:"alias,omitempty"`
	DevName    *string  `json:"dev_name,omitempty"`
	IconHash   *string  `json:"icon_hash,omitempty"`
	RelayState *int64   `json:"relay_state,omitempty"`
	OnTime     *int64   `json:"on_time,omitempty"`
	ActiveMode *string  `json:"active_mode,omitempty"`
	Feature    *string  `json:"feature,omitempty"`
	Updating   *int64   `json:"updating,omitempty"`
	RSSI       *int64   `json:"rssi,omitempty"`
	LEDOff     *int64   `json:"led_off,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	LatitudeI  *int64   `json:"latitude_i,omitempty"`
	LongitudeI *int64   `json:"longitude_i,omitempty"`
	DevStatus  *string  `json:"status,omitempty"`
	Children   []Outlet `json:"children,omitempty"`
}

// Outlet is one socket of a power strip
type Outlet struct {
	ID         *string         `json:"id,omitempty"`
	State      *int64          `json:"state,omitempty"`
	Alias      *string         `json:"alias,omitempty"`
	OnTime     *int64          `json:"on_time,omitempty"`
	NextAction json.RawMessage `json:"next_action,omitempty"`
}

// RelayOn reports the relay state and whether the device sent it
func (s *SysInfo) RelayOn() (on bool, ok bool) {
	if s == nil || s.RelayState == nil {
		return false, false
	}
	return *s.RelayState == 1, true
}

// LEDOn reports the LED state and whether the device sent it
func (s *SysInfo) LEDOn() (on bool, ok bool) {
	if s == nil || s.LEDOff == nil {
		return false, false
	}
	return *s.LEDOff == 0, true
}

// Location returns the device coordinates. Firmware that reports the
// scaled integer fields (degrees * 10000) is normalised to degrees.
func (s *SysInfo) Location() (lat, lon float64, ok bool) {
	if s == nil {
		return 0, 0, false
	}
	if s.Latitude != nil && s.Longitude != nil {
		return *s.Latitude, *s.Longitude, true
	}
	if s.LatitudeI != nil && s.LongitudeI != nil {
		return float64(*s.LatitudeI) / 10000, float64(*s.LongitudeI) / 10000, true
	}
	return 0, 0, false
}

// Uptime returns how long the relay has been in its current state
func (s *SysInfo) Uptime() (time.Duration, bool) {
	if s == nil || s.OnTime == nil {
		return 0, false
	}
	return time.Duration(*s.OnTime) * time.Second, true
}

// Icon is the device icon as stored on the device
type Icon struct {
	Status
	Icon *string `json:"icon,omitempty"`
	Hash *string `json:"hash,omitempty"`
}

// DownloadState reports progress of a firmware download
type DownloadState struct {
	Status
	State      *int64 `json:"status,omitempty"`
	Ratio      *int64 `json:"ratio,omitempty"`
	RebootTime *int64 `json:"reboot_time,omitempty"`
	FlashTime  *int64 `json:"flash_time,omitempty"`
}

// Percent returns the download ratio, 0 when absent
func (d *DownloadState) Percent() int64 {
	if d == nil || d.Ratio == nil {
		return 0
	}
	return *d.Ratio
}

// EmeterResponse holds results of "emeter" module actions
type EmeterResponse struct {
	GetRealtime     *Realtime   `json:"get_realtime,omitempty"`
	GetVGainIGain   *Gain       `json:"get_vgain_igain,omitempty"`
	GetDaystat      *DayStats   `json:"get_daystat,omitempty"`
	GetMonthstat    *MonthStats `json:"get_monthstat,omitempty"`
	EraseEmeterStat *Status     `json:"erase_emeter_stat,omitempty"`
}

// Realtime is an instantaneous energy meter reading. Older firmware sends
// decimal base units (A, V, W, kWh); newer firmware sends milli-units
// (mA, mV, mW) and watt-hours. Either set may be absent.
type Realtime struct {
	Status
	Current   *float64 `json:"current,omitempty"`
	Voltage   *float64 `json:"voltage,omitempty"`
	Power     *float64 `json:"power,omitempty"`
	Total     *float64 `json:"total,omitempty"`
	CurrentMA *float64 `json:"current_ma,omitempty"`
	VoltageMV *float64 `json:"voltage_mv,omitempty"`
	PowerMW   *float64 `json:"power_mw,omitempty"`
	TotalWH   *float64 `json:"total_wh,omitempty"`
}

func pick(base, milli *float64, scale float64) (float64, bool) {
	switch {
	case base != nil:
		return *base, true
	case milli != nil:
		return *milli / scale, true
	default:
		return 0, false
	}
}

// Amps returns the current in amperes
func (r *Realtime) Amps() (float64, bool) {
	if r == nil {
		return 0, false
	}
	return pick(r.Current, r.CurrentMA, 1000)
}

// Volts returns the voltage in volts
func (r *Realtime) Volts() (float64, bool) {
	if r == nil {
		return 0, false
	}
	return pick(r.Voltage, r.VoltageMV, 1000)
}

// Watts returns the power in watts
func (r *Realtime) Watts() (float64, bool) {
	if r == nil {
		return 0, false
	}
	return pick(r.Power, r.PowerMW, 1000)
}

// KilowattHours returns the accumulated energy in kWh
func (r *Realtime) KilowattHours() (float64, bool) {
	if r == nil {
		return 0, false
	}
	return pick(r.Total, r.TotalWH, 1000)
}

// String renders the reading as "V = 230.1 V, I = 0.1 A, P = 12.5 W"
func (r *Realtime) String() string {
	v, _ := r.Volts()
	i, _ := r.Amps()
	p, _ := r.Watts()
	return fmt.Sprintf("V = %.1f V, I = %.3f A, P = %.1f W", v, i, p)
}

// Gain holds the energy meter calibration
type Gain struct {
	Status
	VGain *int64 `json:"vgain,omitempty"`
	IGain *int64 `json:"igain,omitempty"`
}

// EnergyStat is one day or month of accumulated energy
type EnergyStat struct {
	Year     *int64   `json:"year,omitempty"`
	Month    *int64   `json:"month,omitempty"`
	Day      *int64   `json:"day,omitempty"`
	Energy   *float64 `json:"energy,omitempty"`
	EnergyWH *float64 `json:"energy_wh,omitempty"`
}

// KilowattHours returns the energy in kWh
func (e EnergyStat) KilowattHours() (float64, bool) {
	return pick(e.Energy, e.EnergyWH, 1000)
}

// DayStats lists daily energy totals for one month
type DayStats struct {
	Status
	DayList []EnergyStat `json:"day_list,omitempty"`
}

// Total sums the listed days in kWh
func (d *DayStats) Total() float64 {
	if d == nil {
		return 0
	}
	return sumStats(d.DayList)
}

// MonthStats lists monthly energy totals for one year
type MonthStats struct {
	Status
	MonthList []EnergyStat `json:"month_list,omitempty"`
}

// Total sums the listed months in kWh
func (m *MonthStats) Total() float64 {
	if m == nil {
		return 0
	}
	return sumStats(m.MonthList)
}

func sumStats(stats []EnergyStat) float64 {
	var total float64
	for _, s := range stats {
		if kwh, ok := s.KilowattHours(); ok {
			total += kwh
		}
	}
	return total
}

// NetifResponse holds results of "netif" module actions
type NetifResponse struct {
	GetScanInfo *ScanInfo `json:"get_scaninfo,omitempty"`
	SetStaInfo  *Status   `json:"set_stainfo,omitempty"`
}

// ScanInfo lists the access points a device can see
type ScanInfo struct {
	Status
	APList []AccessPoint `json:"ap_list,omitempty"`
}

// AccessPoint is one network found by a scan
type AccessPoint struct {
	SSID    *string `json:"ssid,omitempty"`
	KeyType *int64  `json:"key_type,omitempty"`
}

// CloudResponse holds results of "cnCloud" module actions
type CloudResponse struct {
	GetInfo       *CloudInfo    `json:"get_info,omitempty"`
	GetIntlFwList *FirmwareList `json:"get_intl_fw_list,omitempty"`
	SetServerURL  *Status       `json:"set_server_url,omitempty"`
	Bind          *Status       `json:"bind,omitempty"`
	Unbind        *Status       `json:"unbind,omitempty"`
}

// CloudInfo is the cloud binding state
type CloudInfo struct {
	Status
	Username      *string `json:"username,omitempty"`
	Server        *string `json:"server,omitempty"`
	Binded        *int64  `json:"binded,omitempty"`
	CldConnection *int64  `json:"cld_connection,omitempty"`
	IllegalType   *int64  `json:"illegalType,omitempty"`
	TCSPStatus    *int64  `json:"tcspStatus,omitempty"`
	FwDlPage      *string `json:"fwDlPage,omitempty"`
	TCSPInfo      *string `json:"tcspInfo,omitempty"`
	StopConnect   *int64  `json:"stopConnect,omitempty"`
	FwNotifyType  *int64  `json:"fwNotifyType,omitempty"`
}

// Bound reports whether the device is bound to a cloud account
func (c *CloudInfo) Bound() bool {
	return c != nil && c.Binded != nil && *c.Binded == 1
}

// FirmwareList lists firmware images offered by the cloud
type FirmwareList struct {
	Status
	FwList []Firmware `json:"fw_list,omitempty"`
}

// Firmware describes one downloadable image
type Firmware struct {
	FwType       *int64  `json:"fwType,omitempty"`
	FwURL        *string `json:"fwUrl,omitempty"`
	FwVer        *string `json:"fwVer,omitempty"`
	FwReleaseLog *string `json:"fwReleaseLog,omitempty"`
	FwTitle      *string `json:"fwTitle,omitempty"`
}

// TimeResponse holds results of "time" module actions
type TimeResponse struct {
	GetTime     *TimeInfo     `json:"get_time,omitempty"`
	GetTimezone *TimezoneInfo `json:"get_timezone,omitempty"`
	SetTimezone *Status       `json:"set_timezone,omitempty"`
}

// TimeInfo is the device clock
type TimeInfo struct {
	Status
	Year  *int64 `json:"year,omitempty"`
	Month *int64 `json:"month,omitempty"`
	MDay  *int64 `json:"mday,omitempty"`
	Hour  *int64 `json:"hour,omitempty"`
	Min   *int64 `json:"min,omitempty"`
	Sec   *int64 `json:"sec,omitempty"`
}

// Time converts the device clock to a time.Time in loc. It fails when any
// component is missing.
func (t *TimeInfo) Time(loc *time.Location) (time.Time, bool) {
	if t == nil || t.Year == nil || t.Month == nil || t.MDay == nil ||
		t.Hour == nil || t.Min == nil || t.Sec == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(int(*t.Year), time.Month(*t.Month), int(*t.MDay),
		int(*t.Hour), int(*t.Min), int(*t.Sec), 0, loc), true
}

// TimezoneInfo is the device timezone index
type TimezoneInfo struct {
	Status
	Index *int64 `json:"index,omitempty"`
}

// SystemResult returns the system block, or an empty one when the device
// did not send it. The action fields of an empty block are all nil.
func (r *Response) SystemResult() *SystemResponse {
	if r == nil || r.System == nil {
		return &SystemResponse{}
	}
	return r.System
}

// EmeterResult returns the emeter block or an empty one
func (r *Response) EmeterResult() *EmeterResponse {
	if r == nil || r.Emeter == nil {
		return &EmeterResponse{}
	}
	return r.Emeter
}

// NetifResult returns the netif block or an empty one
func (r *Response) NetifResult() *NetifResponse {
	if r == nil || r.Netif == nil {
		return &NetifResponse{}
	}
	return r.Netif
}

// CloudResult returns the cnCloud block or an empty one
func (r *Response) CloudResult() *CloudResponse {
	if r == nil || r.CnCloud == nil {
		return &CloudResponse{}
	}
	return r.CnCloud
}

// TimeResult returns the time block or an empty one
func (r *Response) TimeResult() *TimeResponse {
	if r == nil || r.Time == nil {
		return &TimeResponse{}
	}
	return r.Time
}
