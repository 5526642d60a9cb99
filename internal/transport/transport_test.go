package transport

import (
	"bytes"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/smartplug/internal/protocol"
)

const sysinfoRequest = `{"system":{"get_sysinfo":{}}}`

type stubResponse struct {
	System *struct {
		GetSysinfo *struct {
			Alias *string `json:"alias"`
		} `json:"get_sysinfo"`
	} `json:"system"`
}

// startStub listens on loopback and runs handler for each accepted connection
func startStub(t *testing.T, handler func(conn net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer func() { _ = conn.Close() }()
				handler(conn)
			}()
		}
	}()

	return ln.Addr().String()
}

// reply reads one request frame and answers with payload
func reply(payload []byte) func(net.Conn) {
	return func(conn net.Conn) {
		if _, err := protocol.ReadFrame(conn, 0); err != nil {
			return
		}
		_ = protocol.WriteFrame(conn, payload)
	}
}

func quickTransport() Transport {
	return Default().WithTimeout(300 * time.Millisecond)
}

func TestExchange(t *testing.T) {
	var got []byte
	var mu sync.Mutex

	addr := startStub(t, func(conn net.Conn) {
		frame, err := protocol.ReadFrame(conn, 0)
		if err != nil {
			return
		}
		mu.Lock()
		got = frame.Payload
		mu.Unlock()
		_ = protocol.WriteFrame(conn, []byte(`{"system":{"get_sysinfo":{"alias":"Lamp"}}}`))
	})

	payload, err := Default().Exchange(addr, []byte(sysinfoRequest))
	require.NoError(t, err)
	assert.JSONEq(t, `{"system":{"get_sysinfo":{"alias":"Lamp"}}}`, string(payload))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, sysinfoRequest, string(got))
}

func TestSend(t *testing.T) {
	addr := startStub(t, reply([]byte(`{"system":{"get_sysinfo":{"alias":"Lamp","unknown_field":[1,2]}}}`)))

	resp, err := Send[stubResponse](Default(), addr, []byte(sysinfoRequest))
	require.NoError(t, err)
	require.NotNil(t, resp.System)
	require.NotNil(t, resp.System.GetSysinfo)
	require.NotNil(t, resp.System.GetSysinfo.Alias)
	assert.Equal(t, "Lamp", *resp.System.GetSysinfo.Alias)
}

func TestSendLargeResponse(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"system":{"get_sysinfo":{"alias":"`)
	b.WriteString(strings.Repeat("a", 10000))
	b.WriteString(`"}}}`)

	addr := startStub(t, reply([]byte(b.String())))

	resp, err := Send[stubResponse](Default(), addr, []byte(sysinfoRequest))
	require.NoError(t, err)
	assert.Len(t, *resp.System.GetSysinfo.Alias, 10000)
}

func TestConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = quickTransport().Exchange(addr, []byte(sysinfoRequest))
	require.Error(t, err)
	assert.True(t, IsConnectionError(err), "got %v", err)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, addr, pe.Address)
}

func TestServerClosesImmediately(t *testing.T) {
	addr := startStub(t, func(conn net.Conn) {})

	start := time.Now()
	_, err := Send[stubResponse](Default(), addr, []byte(sysinfoRequest))
	require.Error(t, err)
	assert.True(t, IsConnectionError(err), "got %v", err)
	assert.False(t, IsTimeout(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestServerNeverResponds(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	addr := startStub(t, func(conn net.Conn) {
		_, _ = protocol.ReadFrame(conn, 0)
		<-done
	})

	start := time.Now()
	_, err := quickTransport().Exchange(addr, []byte(sysinfoRequest))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsReadError(err), "got %v", err)
	assert.True(t, IsTimeout(err))
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestServerNeverRespondsDefaultDeadline(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the full 5 second deadline")
	}

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	addr := startStub(t, func(conn net.Conn) {
		_, _ = protocol.ReadFrame(conn, 0)
		<-done
	})

	start := time.Now()
	_, err := Default().Exchange(addr, []byte(sysinfoRequest))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsReadError(err), "got %v", err)
	assert.True(t, IsTimeout(err))
	assert.GreaterOrEqual(t, elapsed, 4900*time.Millisecond)
	assert.Less(t, elapsed, 10*time.Second)
}

func TestNonJSONResponse(t *testing.T) {
	addr := startStub(t, reply([]byte("definitely not json")))

	_, err := Send[stubResponse](Default(), addr, []byte(sysinfoRequest))
	require.Error(t, err)
	assert.True(t, IsDeserializationError(err), "got %v", err)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.NotEmpty(t, pe.Message)
	assert.Contains(t, pe.Message, "invalid character")
}

func TestWrongShapeResponse(t *testing.T) {
	addr := startStub(t, reply([]byte(`{"system":{"get_sysinfo":{"alias":42}}}`)))

	_, err := Send[stubResponse](Default(), addr, []byte(sysinfoRequest))
	assert.True(t, IsDeserializationError(err), "got %v", err)
}

func TestInvalidUTF8Response(t *testing.T) {
	addr := startStub(t, reply([]byte{'{', 0xff, 0xfe, '}'}))

	_, err := Default().Exchange(addr, []byte(sysinfoRequest))
	require.Error(t, err)
	assert.True(t, IsDecodingError(err), "got %v", err)
}

func TestTruncatedResponse(t *testing.T) {
	addr := startStub(t, func(conn net.Conn) {
		if _, err := protocol.ReadFrame(conn, 0); err != nil {
			return
		}
		frame := protocol.Encode([]byte(`{"system":{"get_sysinfo":{"alias":"Lamp"}}}`))
		_, _ = conn.Write(frame[:len(frame)-10])
	})

	_, err := Default().Exchange(addr, []byte(sysinfoRequest))
	require.Error(t, err)
	assert.True(t, IsReadError(err), "got %v", err)
	assert.ErrorIs(t, err, protocol.ErrTruncatedFrame)
}

func TestResponseAboveMaxFrameSize(t *testing.T) {
	addr := startStub(t, reply(bytes.Repeat([]byte("x"), 4096)))

	tr := Default()
	tr.MaxFrameSize = 1024

	_, err := tr.Exchange(addr, []byte(sysinfoRequest))
	require.Error(t, err)
	assert.True(t, IsReadError(err), "got %v", err)
	assert.ErrorIs(t, err, protocol.ErrFrameTooLarge)
}

func TestConcurrentExchanges(t *testing.T) {
	addr := startStub(t, func(conn net.Conn) {
		frame, err := protocol.ReadFrame(conn, 0)
		if err != nil {
			return
		}
		_ = protocol.WriteFrame(conn, frame.Payload)
	})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := []byte(strings.Repeat("{}", i+1))
			got, err := Default().Exchange(addr, req)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, req) {
				errs <- assert.AnError
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent exchange failed: %v", err)
	}
}

func TestZeroValueTransportUsesDefaults(t *testing.T) {
	var tr Transport
	assert.Equal(t, DefaultTimeout, tr.timeout())
	assert.Equal(t, DefaultDialTimeout, tr.dialTimeout())
	assert.Equal(t, uint32(protocol.DefaultMaxFrameSize), tr.maxFrameSize())
}
