package protocol

import (
	"encoding/hex"
	"fmt"
	"io"
)

// DefaultMaxFrameSize bounds the payload ReadFrame will allocate for
const DefaultMaxFrameSize = 1 << 20

// Frame represents one length-prefixed, encrypted unit read from a connection
type Frame struct {
	Length  uint32 // Payload length from the header
	Payload []byte // Decrypted payload
	Raw     []byte // Original frame bytes for debugging
}

// ReadFrame reads exactly one frame from r: the 4-byte header first, then
// as many payload bytes as the header declares. It keeps reading across
// partial reads until the frame is complete or r fails.
//
// A reader that ends before any header byte arrives yields io.EOF. A frame
// cut short yields an error wrapping both ErrTruncatedFrame and the read error.
func ReadFrame(r io.Reader, maxSize uint32) (*Frame, error) {
	header := make([]byte, HeaderSize)
	if n, err := io.ReadFull(r, header); err != nil {
		if n == 0 {
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}
		return nil, fmt.Errorf("%w: read %d of %d header bytes: %w", ErrTruncatedFrame, n, HeaderSize, err)
	}

	length, _ := DeclaredLength(header)
	if maxSize > 0 && length > maxSize {
		return nil, fmt.Errorf("%w: header declares %d bytes, limit is %d", ErrFrameTooLarge, length, maxSize)
	}

	ciphertext := make([]byte, length)
	if n, err := io.ReadFull(r, ciphertext); err != nil {
		return nil, fmt.Errorf("%w: read %d of %d payload bytes: %w", ErrTruncatedFrame, n, length, err)
	}

	raw := make([]byte, 0, HeaderSize+len(ciphertext))
	raw = append(raw, header...)
	raw = append(raw, ciphertext...)

	return &Frame{
		Length:  length,
		Payload: Decrypt(ciphertext),
		Raw:     raw,
	}, nil
}

// WriteFrame encodes plaintext and writes the whole frame to w, retrying
// short writes until every byte is sent or w fails.
func WriteFrame(w io.Writer, plaintext []byte) error {
	frame := Encode(plaintext)

	written := 0
	for written < len(frame) {
		n, err := w.Write(frame[written:])
		written += n
		if err != nil {
			return fmt.Errorf("failed to write frame (%d of %d bytes sent): %w", written, len(frame), err)
		}
		if n == 0 {
			return fmt.Errorf("failed to write frame (%d of %d bytes sent): %w", written, len(frame), io.ErrShortWrite)
		}
	}

	return nil
}

// Size returns the number of bytes the frame occupies on the wire
func (f *Frame) Size() int {
	return HeaderSize + int(f.Length)
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{Length=%d, Wire=%d}", f.Length, f.Size())
}

// HexDump returns the raw wire bytes as hex, capped at limit bytes (0 = no cap)
func (f *Frame) HexDump(limit int) string {
	if limit > 0 && len(f.Raw) > limit {
		return hex.EncodeToString(f.Raw[:limit]) + "..."
	}
	return hex.EncodeToString(f.Raw)
}
