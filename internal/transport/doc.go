// Package transport performs single request/response exchanges with a smart plug.
//
// Each exchange dials a fresh TCP connection, writes one encoded request
// frame, reads exactly one response frame (looping until the length the
// header declares has arrived), checks the payload is UTF-8 and closes the
// connection. Nothing is pooled, cached or retried.
//
// # Usage Example
//
//	t := transport.Default()
//	payload, err := t.Exchange("192.168.1.50:9999", []byte(`{"system":{"get_sysinfo":{}}}`))
//
//	// Or decode straight into a typed response
//	resp, err := transport.Send[device.Response](t, addr, request)
//
// # Timeouts
//
// The write and the read share one deadline (5 seconds by default). A device
// that accepts the connection but never answers yields a read error with
// Timeout set rather than blocking forever.
//
// # Error Handling
//
// Every failure is a *ProtocolError whose Kind names the failed stage:
//   - ErrConnection: dial failed, or the device closed the socket without replying
//   - ErrWrite: the request could not be sent
//   - ErrRead: the reply timed out, was cut short, or exceeded MaxFrameSize
//   - ErrDecoding: the decrypted reply is not UTF-8
//   - ErrDeserialization: the reply is not the expected JSON (parser detail kept)
//
// Use the IsXxxError helpers or errors.As to inspect them.
//
// # Thread Safety
//
// Transport is a plain value with no shared state. Concurrent exchanges each
// own their socket and cipher state.
package transport
