package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReadFrame(t *testing.T) {
	large := bytes.Repeat([]byte(`{"day":1,"energy":0.12},`), 200)

	tests := []struct {
		name    string
		data    func() io.Reader
		wantErr error
		verify  func(t *testing.T, frame *Frame)
	}{
		{
			name: "complete frame",
			data: func() io.Reader { return bytes.NewReader(Encode([]byte(relayOffRequest))) },
			verify: func(t *testing.T, frame *Frame) {
				if string(frame.Payload) != relayOffRequest {
					t.Errorf("payload = %q, want %q", frame.Payload, relayOffRequest)
				}
				if frame.Length != uint32(len(relayOffRequest)) {
					t.Errorf("length = %d, want %d", frame.Length, len(relayOffRequest))
				}
				if len(frame.Raw) != frame.Size() {
					t.Errorf("raw length = %d, want %d", len(frame.Raw), frame.Size())
				}
			},
		},
		{
			name: "one byte at a time",
			data: func() io.Reader { return iotest.OneByteReader(bytes.NewReader(Encode([]byte(relayOffRequest)))) },
			verify: func(t *testing.T, frame *Frame) {
				if string(frame.Payload) != relayOffRequest {
					t.Errorf("payload = %q, want %q", frame.Payload, relayOffRequest)
				}
			},
		},
		{
			name: "larger than a single 2048 byte read",
			data: func() io.Reader { return iotest.HalfReader(bytes.NewReader(Encode(large))) },
			verify: func(t *testing.T, frame *Frame) {
				if !bytes.Equal(frame.Payload, large) {
					t.Errorf("payload length = %d, want %d", len(frame.Payload), len(large))
				}
			},
		},
		{
			name: "empty payload",
			data: func() io.Reader { return bytes.NewReader(Encode(nil)) },
			verify: func(t *testing.T, frame *Frame) {
				if len(frame.Payload) != 0 {
					t.Errorf("payload length = %d, want 0", len(frame.Payload))
				}
			},
		},
		{
			name:    "closed before header",
			data:    func() io.Reader { return bytes.NewReader(nil) },
			wantErr: io.EOF,
		},
		{
			name:    "incomplete header",
			data:    func() io.Reader { return bytes.NewReader([]byte{0x00, 0x00}) },
			wantErr: ErrTruncatedFrame,
		},
		{
			name: "incomplete payload",
			data: func() io.Reader {
				frame := Encode([]byte(relayOffRequest))
				return bytes.NewReader(frame[:len(frame)-5])
			},
			wantErr: ErrTruncatedFrame,
		},
		{
			name:    "declared length above limit",
			data:    func() io.Reader { return bytes.NewReader([]byte{0x7f, 0xff, 0xff, 0xff}) },
			wantErr: ErrFrameTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := ReadFrame(tt.data(), DefaultMaxFrameSize)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadFrame() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			tt.verify(t, frame)
		})
	}
}

func TestReadFrameTruncatedPayloadKeepsCause(t *testing.T) {
	frame := Encode([]byte("hello"))
	_, err := ReadFrame(bytes.NewReader(frame[:6]), 0)

	if !errors.Is(err, ErrTruncatedFrame) {
		t.Errorf("error = %v, want ErrTruncatedFrame", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF in chain", err)
	}
}

func TestReadFrameLeavesTrailingBytes(t *testing.T) {
	data := append(Encode([]byte("first")), Encode([]byte("second"))...)
	r := bytes.NewReader(data)

	first, err := ReadFrame(r, 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if string(first.Payload) != "first" {
		t.Errorf("first payload = %q", first.Payload)
	}

	second, err := ReadFrame(r, 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if string(second.Payload) != "second" {
		t.Errorf("second payload = %q", second.Payload)
	}
}

// chunkWriter accepts at most limit bytes per call
type chunkWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.buf.Write(p)
}

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriteFrame(t *testing.T) {
	t.Run("whole frame", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteFrame(&buf, []byte(relayOffRequest)); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
		if !bytes.Equal(buf.Bytes(), Encode([]byte(relayOffRequest))) {
			t.Error("written bytes differ from Encode()")
		}
	})

	t.Run("short writes are retried", func(t *testing.T) {
		w := &chunkWriter{limit: 3}
		if err := WriteFrame(w, []byte(relayOffRequest)); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
		if !bytes.Equal(w.buf.Bytes(), Encode([]byte(relayOffRequest))) {
			t.Error("written bytes differ from Encode()")
		}
	})

	t.Run("no progress", func(t *testing.T) {
		w := &chunkWriter{limit: 0}
		err := WriteFrame(w, []byte("x"))
		if !errors.Is(err, io.ErrShortWrite) {
			t.Errorf("WriteFrame() error = %v, want io.ErrShortWrite", err)
		}
	})

	t.Run("writer error", func(t *testing.T) {
		cause := errors.New("broken pipe")
		err := WriteFrame(failingWriter{err: cause}, []byte("x"))
		if !errors.Is(err, cause) {
			t.Errorf("WriteFrame() error = %v, want %v", err, cause)
		}
	})
}

func TestFrameString(t *testing.T) {
	frame, err := ReadFrame(bytes.NewReader(Encode([]byte("abc"))), 0)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	if got := frame.String(); got != "Frame{Length=3, Wire=7}" {
		t.Errorf("String() = %q", got)
	}
	if got := frame.HexDump(0); !strings.HasPrefix(got, "00000003") {
		t.Errorf("HexDump() = %q, want 00000003 prefix", got)
	}
	if got := frame.HexDump(2); got != "0000..." {
		t.Errorf("HexDump(2) = %q, want 0000...", got)
	}
}
