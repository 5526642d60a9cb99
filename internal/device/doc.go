// Package device provides a command facade for TP-Link style smart plugs.
//
// Every operation builds a {"<module>":{"<action>":<params>}} document,
// sends it with a single transport exchange and decodes the reply into
// Response. Nothing is cached between calls: a Device is just an address
// and transport limits, so the same handle may be used concurrently.
//
// Devices omit modules and fields they do not implement, so every field of
// Response is optional. Action results embed Status; a non-zero err_code is
// a device-side rejection and is reported through Status.Err, not as a
// transport error.
//
// # Usage Example
//
//	plug := device.New("192.168.0.42")
//
//	resp, err := plug.SysInfo()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.SystemResult().GetSysInfo.Summary())
//
//	resp, err = plug.Off()
//	if err == nil {
//	    err = resp.SystemResult().SetRelayState.Err()
//	}
//
// # Energy Meter Units
//
// Older firmware reports amperes, volts, watts and kWh; newer firmware
// reports mA, mV, mW and Wh. Realtime exposes both and the Amps, Volts,
// Watts and KilowattHours helpers normalise to base units.
package device
