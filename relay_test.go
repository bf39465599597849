package sercom

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// syncBuffer guards a bytes.Buffer written by the relay dispatcher and
// read by the test goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// pipePort builds a Port backed by a plain pipe so peer EOF can be
// simulated by closing the write end. Returns the port and the peer's
// write fd.
func pipePort(t *testing.T) (*Port, int) {
	t.Helper()
	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	return &Port{fd: fds[0], path: "test-pipe"}, fds[1]
}

func startRelay(t *testing.T, r *Relay) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- r.Run() }()
	require.Eventually(t, func() bool { return r.State() != StateIdle },
		time.Second, time.Millisecond)
	return done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for relay to terminate")
		return nil
	}
}

func TestRelayPeerClose(t *testing.T) {
	port, peer := pipePort(t)

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { inR.Close(); inW.Close() })

	out := &syncBuffer{}
	notices := &syncBuffer{}
	relay := NewRelay(port, WithInput(inR), WithOutput(out), WithNotices(notices))
	done := startRelay(t, relay)

	_, err = unix.Write(peer, []byte("hello"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.String() == "hello" },
		time.Second, time.Millisecond)

	// Peer closes: zero-byte read, notice exactly once, clean shutdown
	require.NoError(t, unix.Close(peer))
	require.NoError(t, waitDone(t, done))

	require.Equal(t, "Connection closed\n", notices.String())
	require.Equal(t, StateTerminated, relay.State())

	_, err = port.Read(make([]byte, 1))
	require.ErrorIs(t, err, ErrPortClosed)
}

func TestRelayStdinEOF(t *testing.T) {
	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	t.Cleanup(func() { unix.Close(fds[0]) })
	// The relay's "device" is the pipe's write end; the test reads what
	// the relay forwarded from the read end
	port := &Port{fd: fds[1], path: "test-pipe"}

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { inR.Close() })

	relay := NewRelay(port, WithInput(inR), WithOutput(&syncBuffer{}), WithNotices(&syncBuffer{}))
	done := startRelay(t, relay)

	_, err = inW.Write([]byte("AT\r\n"))
	require.NoError(t, err)

	forwarded := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := unix.Read(fds[0], buf)
		forwarded <- buf[:n]
	}()
	select {
	case data := <-forwarded:
		require.Equal(t, "AT\r\n", string(data))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for relayed stdin data")
	}

	// Local EOF shuts the relay down without a notice
	require.NoError(t, inW.Close())
	require.NoError(t, waitDone(t, done))
	require.Equal(t, StateTerminated, relay.State())
}

func TestRelayInterrupt(t *testing.T) {
	port, peer := pipePort(t)
	t.Cleanup(func() { unix.Close(peer) })

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { inR.Close(); inW.Close() })

	notices := &syncBuffer{}
	relay := NewRelay(port, WithInput(inR), WithOutput(&syncBuffer{}), WithNotices(notices))
	done := startRelay(t, relay)
	require.Eventually(t, func() bool { return relay.State() == StateConnected },
		time.Second, time.Millisecond)

	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGINT))

	require.NoError(t, waitDone(t, done))
	require.Contains(t, notices.String(), "Interrupted")
	require.Equal(t, StateTerminated, relay.State())
}

func TestRelayShutdownIdempotent(t *testing.T) {
	port, peer := pipePort(t)
	t.Cleanup(func() { unix.Close(peer) })

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { inR.Close(); inW.Close() })

	relay := NewRelay(port, WithInput(inR), WithOutput(&syncBuffer{}), WithNotices(&syncBuffer{}))
	done := startRelay(t, relay)
	require.Eventually(t, func() bool { return relay.State() == StateConnected },
		time.Second, time.Millisecond)

	relay.Shutdown()
	relay.Shutdown()
	require.NoError(t, waitDone(t, done))

	require.Equal(t, StateTerminated, relay.State())

	// Calling again after termination stays a no-op
	relay.Shutdown()
	require.Equal(t, StateTerminated, relay.State())
	require.NoError(t, port.Close())
}

func TestRelayOutputError(t *testing.T) {
	port, peer := pipePort(t)
	t.Cleanup(func() { unix.Close(peer) })

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { inR.Close(); inW.Close() })

	relay := NewRelay(port, WithInput(inR), WithOutput(&failingWriter{}), WithNotices(&syncBuffer{}))
	done := startRelay(t, relay)

	_, err = unix.Write(peer, []byte("x"))
	require.NoError(t, err)

	err = waitDone(t, done)
	var derr *DeviceError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, CodeRelayIO, derr.Code)
	require.Equal(t, StateTerminated, relay.State())
}

func TestRelayLoopback(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	port, err := Open(slave.Name(),
		WithBaudRate(9600),
		WithDataBits(8),
		WithStopBits(1),
		WithParity(ParityNone),
	)
	require.NoError(t, err)

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { inR.Close(); inW.Close() })

	out := &syncBuffer{}
	relay := NewRelay(port, WithInput(inR), WithOutput(out), WithNotices(&syncBuffer{}))
	done := startRelay(t, relay)

	// stdin -> port: the peer sees the bytes in order
	_, err = inW.Write([]byte("AT\r\n"))
	require.NoError(t, err)

	received := make(chan string, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := master.Read(buf)
		received <- string(buf[:n])
	}()
	select {
	case data := <-received:
		require.Equal(t, "AT\r\n", data)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for peer to receive stdin data")
	}

	// port -> stdout: echo from the peer lands on output unmodified
	_, err = master.Write([]byte("OK\r\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "OK\r\n") },
		time.Second, time.Millisecond)

	relay.Shutdown()
	require.NoError(t, waitDone(t, done))
	require.Equal(t, StateTerminated, relay.State())
}

// failingWriter reports a permanent I/O failure
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, unix.EIO
}

// shortWriter accepts at most max bytes per call
type shortWriter struct {
	max   int
	data  []byte
	calls int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	w.calls++
	n := len(p)
	if n > w.max {
		n = w.max
	}
	w.data = append(w.data, p[:n]...)
	return n, nil
}

// flakyWriter fails transiently before succeeding
type flakyWriter struct {
	failures int
	data     []byte
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.failures > 0 {
		w.failures--
		return 0, unix.EINTR
	}
	w.data = append(w.data, p...)
	return len(p), nil
}

func TestWriteFullPartialWrites(t *testing.T) {
	chunk := bytes.Repeat([]byte{0xA5}, 1024)

	w := &shortWriter{max: 1000}
	require.NoError(t, writeFull(w, chunk))
	require.Equal(t, chunk, w.data)
	require.Equal(t, 2, w.calls) // 1000 then the remaining 24
}

func TestWriteFullTransientErrors(t *testing.T) {
	w := &flakyWriter{failures: 3}
	require.NoError(t, writeFull(w, []byte("retry me")))
	require.Equal(t, "retry me", string(w.data))
}

func TestWriteFullPermanentError(t *testing.T) {
	err := writeFull(failingWriter{}, []byte("data"))
	require.True(t, errors.Is(err, unix.EIO))
}
