package protocol

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"
)

const relayOffRequest = `{"system":{"set_relay_state":{"state":0}}}`

func randomPayload(t *testing.T, size int) []byte {
	t.Helper()
	p := make([]byte, size)
	if _, err := rand.Read(p); err != nil {
		t.Fatalf("rand.Read() error = %v", err)
	}
	return p
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
		verify    func(t *testing.T, frame []byte)
	}{
		{
			name:      "empty payload",
			plaintext: []byte{},
			verify: func(t *testing.T, frame []byte) {
				if !bytes.Equal(frame, []byte{0, 0, 0, 0}) {
					t.Errorf("frame = %x, want 00000000", frame)
				}
			},
		},
		{
			name:      "single byte",
			plaintext: []byte{0x00},
			verify: func(t *testing.T, frame []byte) {
				want := []byte{0, 0, 0, 1, InitialKey}
				if !bytes.Equal(frame, want) {
					t.Errorf("frame = %x, want %x", frame, want)
				}
			},
		},
		{
			name:      "relay off request",
			plaintext: []byte(relayOffRequest),
			verify: func(t *testing.T, frame []byte) {
				if got := binary.BigEndian.Uint32(frame[:4]); got != uint32(len(relayOffRequest)) {
					t.Errorf("length prefix = %d, want %d", got, len(relayOffRequest))
				}
				if frame[4] != 0x7B^InitialKey {
					t.Errorf("first cipher byte = 0x%02x, want 0x%02x", frame[4], 0x7B^InitialKey)
				}
				want := []byte{0xd0, 0xf2, 0x81, 0xf8, 0x8b, 0xff}
				if !bytes.Equal(frame[4:10], want) {
					t.Errorf("cipher prefix = %x, want %x", frame[4:10], want)
				}
			},
		},
		{
			name:      "ciphertext feeds the key",
			plaintext: []byte{0x01, 0x01},
			verify: func(t *testing.T, frame []byte) {
				c0 := byte(0x01) ^ InitialKey
				c1 := byte(0x01) ^ c0
				if frame[4] != c0 || frame[5] != c1 {
					t.Errorf("cipher = %x, want %02x%02x", frame[4:], c0, c1)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Encode(tt.plaintext)
			if len(frame) != len(tt.plaintext)+HeaderSize {
				t.Fatalf("frame length = %d, want %d", len(frame), len(tt.plaintext)+HeaderSize)
			}
			tt.verify(t, frame)
		})
	}
}

func TestDecodeRelayOffRequest(t *testing.T) {
	frame := Encode([]byte(relayOffRequest))

	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(got) != relayOffRequest {
		t.Errorf("Decode() = %q, want %q", got, relayOffRequest)
	}
}

func TestRoundTripAllSingleBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		in := []byte{byte(b)}
		out, err := Decode(Encode(in))
		if err != nil {
			t.Fatalf("Decode(Encode(%02x)) error = %v", b, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round trip of %02x = %x", b, out)
		}
	}
}

func TestRoundTripAllBytePairs(t *testing.T) {
	in := make([]byte, 2)
	for hi := 0; hi < 256; hi++ {
		for lo := 0; lo < 256; lo++ {
			in[0], in[1] = byte(hi), byte(lo)
			out, err := Decode(Encode(in))
			if err != nil {
				t.Fatalf("Decode(Encode(%x)) error = %v", in, err)
			}
			if !bytes.Equal(out, in) {
				t.Fatalf("round trip of %x = %x", in, out)
			}
		}
	}
}

func TestRoundTripKeyValuedBytes(t *testing.T) {
	// Plaintext equal to the running key produces zero ciphertext bytes
	in := []byte{InitialKey, 0x00, InitialKey, InitialKey, 0x00}
	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("round trip = %x, want %x", out, in)
	}
}

func TestRoundTripRandomPayloads(t *testing.T) {
	for _, size := range []int{0, 1, 3, 4, 5, 255, 2047, 2048, 2049, 64 * 1024} {
		in := randomPayload(t, size)
		out, err := Decode(Encode(in))
		if err != nil {
			t.Fatalf("size %d: Decode() error = %v", size, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("size %d: round trip mismatch", size)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	in := randomPayload(t, 512)
	if !bytes.Equal(Encode(in), Encode(in)) {
		t.Error("Encode() returned different frames for identical input")
	}
}

func TestEncryptDecryptInverse(t *testing.T) {
	in := []byte(relayOffRequest)
	if got := Decrypt(Encrypt(in)); !bytes.Equal(got, in) {
		t.Errorf("Decrypt(Encrypt()) = %q, want %q", got, in)
	}
	if bytes.Equal(Encrypt(in), in) {
		t.Error("Encrypt() returned plaintext unchanged")
	}
}

func TestDecodeBounds(t *testing.T) {
	valid := Encode([]byte(relayOffRequest))

	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "nil buffer", frame: nil},
		{name: "partial header", frame: []byte{0x00, 0x00}},
		{name: "header only", frame: valid[:HeaderSize]},
		{name: "payload cut short", frame: valid[:len(valid)-1]},
		{name: "huge declared length", frame: []byte{0xff, 0xff, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.frame)
			if !errors.Is(err, ErrTruncatedFrame) {
				t.Fatalf("Decode() error = %v, want ErrTruncatedFrame", err)
			}
			if got != nil {
				t.Errorf("Decode() = %x, want nil", got)
			}
		})
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	frame := append(Encode([]byte("abc")), 0xde, 0xad, 0xbe, 0xef)

	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Decode() = %q, want %q", got, "abc")
	}
}

func TestDeclaredLength(t *testing.T) {
	n, err := DeclaredLength([]byte{0x00, 0x00, 0x01, 0x02})
	if err != nil {
		t.Fatalf("DeclaredLength() error = %v", err)
	}
	if n != 258 {
		t.Errorf("DeclaredLength() = %d, want 258", n)
	}

	if _, err := DeclaredLength([]byte{0x01}); !errors.Is(err, ErrTruncatedFrame) {
		t.Errorf("DeclaredLength(short) error = %v, want ErrTruncatedFrame", err)
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{InitialKey})
	f.Add([]byte(relayOffRequest))
	f.Add([]byte(`{"emeter":{"get_realtime":{}}}`))

	f.Fuzz(func(t *testing.T, in []byte) {
		frame := Encode(in)
		if len(frame) != len(in)+HeaderSize {
			t.Fatalf("frame length = %d, want %d", len(frame), len(in)+HeaderSize)
		}
		if got := binary.BigEndian.Uint32(frame[:HeaderSize]); got != uint32(len(in)) {
			t.Fatalf("length prefix = %d, want %d", got, len(in))
		}
		out, err := Decode(frame)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round trip = %x, want %x", out, in)
		}
	})
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00, 0x00, 0x00, 0x10, 0x01})
	f.Add(Encode([]byte(relayOffRequest)))

	f.Fuzz(func(t *testing.T, frame []byte) {
		out, err := Decode(frame)
		if err != nil {
			if !errors.Is(err, ErrTruncatedFrame) {
				t.Fatalf("Decode() error = %v, want ErrTruncatedFrame", err)
			}
			return
		}
		if len(out) > len(frame)-HeaderSize {
			t.Fatalf("Decode() returned %d bytes from a %d byte frame", len(out), len(frame))
		}
	})
}
