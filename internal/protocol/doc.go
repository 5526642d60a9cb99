// Package protocol implements the wire framing used by TP-Link style smart plugs.
//
// Devices listen on TCP port 9999 and exchange JSON documents wrapped in a
// simple obfuscating frame. This package converts between plaintext JSON bytes
// and that frame. It knows nothing about the JSON itself.
//
// # Frame Format
//
// Every request and response is a single frame:
//   - Length: 4 bytes (big-endian), the plaintext length
//   - Payload: Length bytes of keystream-encrypted JSON
//
// The payload is the same size as the plaintext since the cipher substitutes
// one byte for one byte.
//
// # Keystream
//
// The key starts at 171 for every frame. Each plaintext byte p is XORed with
// the key to give c, and c becomes the next key:
//
//	key := 171
//	for each p: c = p ^ key; key = c
//
// Decoding runs the same recurrence over the ciphertext, so the byte read
// from the wire (not the recovered plaintext) becomes the next key. The
// scheme hides payloads from casual inspection only; it is not encryption.
//
// # Usage Example - Encoding
//
//	frame := protocol.Encode([]byte(`{"system":{"get_sysinfo":{}}}`))
//	_, err := conn.Write(frame)
//
// # Usage Example - Reading From a Connection
//
//	frame, err := protocol.ReadFrame(conn, protocol.DefaultMaxFrameSize)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(frame.Payload))
//
// # Error Handling
//
// Decode and ReadFrame never read past the length a header declares. Input
// that ends early yields ErrTruncatedFrame and a header above the caller's
// limit yields ErrFrameTooLarge. Both are wrapped with size details.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use. Key state lives
// only for the duration of one call.
package protocol
