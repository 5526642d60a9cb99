package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// InitialKey seeds the keystream at the start of every frame
	InitialKey byte = 171

	// HeaderSize is the size of the big-endian length prefix
	HeaderSize = 4

	// DefaultPort is the TCP port smart plugs listen on
	DefaultPort = 9999
)

var (
	// ErrTruncatedFrame is returned when a buffer holds fewer bytes than its
	// length prefix declares.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrFrameTooLarge is returned when a length prefix exceeds the reader's limit.
	ErrFrameTooLarge = errors.New("frame too large")
)

// Encrypt applies the keystream to plaintext without a length prefix.
// Each ciphertext byte becomes the key for the next byte.
func Encrypt(plaintext []byte) []byte {
	out := make([]byte, len(plaintext))
	encryptInto(out, plaintext)
	return out
}

// Decrypt reverses Encrypt. The ciphertext byte just consumed, not the
// recovered plaintext, becomes the key for the next byte.
func Decrypt(ciphertext []byte) []byte {
	out := make([]byte, len(ciphertext))
	key := InitialKey
	for i, c := range ciphertext {
		out[i] = c ^ key
		key = c
	}
	return out
}

func encryptInto(dst, plaintext []byte) {
	key := InitialKey
	for i, p := range plaintext {
		c := p ^ key
		dst[i] = c
		key = c
	}
}

// Encode builds a wire frame: a 4-byte big-endian plaintext length followed
// by the encrypted payload.
func Encode(plaintext []byte) []byte {
	frame := make([]byte, HeaderSize+len(plaintext))
	binary.BigEndian.PutUint32(frame[:HeaderSize], uint32(len(plaintext)))
	encryptInto(frame[HeaderSize:], plaintext)
	return frame
}

// Decode extracts and decrypts the payload of a wire frame starting at
// offset 0. Bytes past the declared length are ignored.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < HeaderSize {
		return nil, fmt.Errorf("%w: have %d header bytes, need %d", ErrTruncatedFrame, len(frame), HeaderSize)
	}

	length := binary.BigEndian.Uint32(frame[:HeaderSize])
	available := len(frame) - HeaderSize
	if uint64(length) > uint64(available) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncatedFrame, length, available)
	}

	return Decrypt(frame[HeaderSize : HeaderSize+int(length)]), nil
}

// DeclaredLength returns the payload length announced by a frame header
func DeclaredLength(header []byte) (uint32, error) {
	if len(header) < HeaderSize {
		return 0, fmt.Errorf("%w: have %d header bytes, need %d", ErrTruncatedFrame, len(header), HeaderSize)
	}
	return binary.BigEndian.Uint32(header[:HeaderSize]), nil
}
