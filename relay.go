package sercom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// relayChunkSize is the per-read chunk for both directions
const relayChunkSize = 1024

// RelayState tracks the relay lifecycle. Transitions are one-way:
// Idle -> Connected -> ShuttingDown -> Terminated.
type RelayState int32

const (
	StateIdle RelayState = iota
	StateConnected
	StateShuttingDown
	StateTerminated
)

func (s RelayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateShuttingDown:
		return "shutting down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Relay moves bytes bidirectionally between an open serial port and the
// invoking terminal. A single dispatcher goroutine polls the port, the
// input descriptor and a self-pipe written by the interrupt handler, so
// the port is never touched from two goroutines at once.
type Relay struct {
	port    *Port
	in      *os.File
	out     io.Writer
	notices io.Writer

	pipeR, pipeW int
	sigCh        chan os.Signal

	started      atomic.Bool
	state        atomic.Int32
	shutdownOnce sync.Once
	relayErr     error
}

// RelayOption adjusts where the relay reads input and writes output
type RelayOption func(*Relay)

// WithInput replaces standard input as the local byte source
func WithInput(f *os.File) RelayOption {
	return func(r *Relay) { r.in = f }
}

// WithOutput replaces standard output as the local byte sink
func WithOutput(w io.Writer) RelayOption {
	return func(r *Relay) { r.out = w }
}

// WithNotices redirects user-visible notices (connection closed,
// interrupt) away from standard output
func WithNotices(w io.Writer) RelayOption {
	return func(r *Relay) { r.notices = w }
}

// NewRelay wraps an open, configured port. The relay owns the port from
// here on and closes it exactly once on shutdown.
func NewRelay(port *Port, opts ...RelayOption) *Relay {
	r := &Relay{
		port:    port,
		in:      os.Stdin,
		out:     os.Stdout,
		notices: os.Stdout,
		pipeR:   -1,
		pipeW:   -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state
func (r *Relay) State() RelayState {
	return RelayState(r.state.Load())
}

// Run drives the relay until the peer closes, local input reaches EOF,
// a non-transient I/O error occurs, or an interrupt arrives. It returns
// nil on a clean shutdown and the triggering error otherwise; the port
// is closed on every exit path.
func (r *Relay) Run() error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("relay already started (%s)", r.State())
	}

	// Self-pipe wakes the poll loop when a signal arrives
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		r.state.Store(int32(StateTerminated))
		r.port.Close()
		return deviceErr(CodeRelayIO, err)
	}
	r.pipeR, r.pipeW = pipeFds[0], pipeFds[1]
	defer func() {
		unix.Close(r.pipeR)
		unix.Close(r.pipeW)
	}()

	// A shutdown that already happened means there is nothing to relay
	if r.State() != StateIdle {
		r.state.Store(int32(StateTerminated))
		return r.relayErr
	}

	// The interrupt disposition lives exactly as long as the relay:
	// registered here, torn down in shutdown via signal.Stop.
	r.sigCh = make(chan os.Signal, 1)
	signal.Notify(r.sigCh, os.Interrupt)
	go func() {
		for range r.sigCh {
			unix.Write(r.pipeW, []byte{1})
		}
	}()

	// A shutdown racing startup leaves the state at ShuttingDown and
	// the loop never runs
	r.state.CompareAndSwap(int32(StateIdle), int32(StateConnected))
	log.Debug().Str("device", r.port.Path()).Msg("relay connected")

	buf := make([]byte, relayChunkSize)
	for r.State() == StateConnected {
		pfd := []unix.PollFd{
			{Fd: int32(r.port.Fd()), Events: unix.POLLIN},
			{Fd: int32(r.in.Fd()), Events: unix.POLLIN},
			{Fd: int32(r.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			if isTransient(err) {
				continue
			}
			r.fail(err)
			break
		}
		if r.State() != StateConnected {
			break
		}

		if pfd[2].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(r.pipeR, b[:])
			fmt.Fprintln(r.notices, "Interrupted")
			r.Shutdown()
			continue
		}
		if pfd[0].Revents != 0 {
			r.portReadable(buf)
			continue
		}
		if pfd[1].Revents != 0 {
			r.inputReadable(buf)
		}
	}

	r.Shutdown()
	r.state.Store(int32(StateTerminated))
	log.Debug().Err(r.relayErr).Msg("relay terminated")
	return r.relayErr
}

// portReadable relays one chunk from the device to local output. A
// zero-byte read means the peer closed the line.
func (r *Relay) portReadable(buf []byte) {
	n, err := r.port.Read(buf)
	if err != nil {
		if isTransient(err) {
			return
		}
		r.fail(err)
		return
	}
	if n == 0 {
		fmt.Fprintln(r.notices, "Connection closed")
		r.Shutdown()
		return
	}
	if err := writeFull(r.out, buf[:n]); err != nil {
		r.fail(err)
	}
}

// inputReadable relays one chunk from local input to the device. A
// zero-byte read means stdin reached EOF.
func (r *Relay) inputReadable(buf []byte) {
	n, err := r.in.Read(buf)
	if err != nil {
		if isTransient(err) {
			return
		}
		if errors.Is(err, io.EOF) {
			r.Shutdown()
			return
		}
		r.fail(err)
		return
	}
	if n == 0 {
		r.Shutdown()
		return
	}
	if err := writeFull(r.port, buf[:n]); err != nil {
		r.fail(err)
	}
}

// writeFull writes all of data, retrying partial writes with the
// remaining slice and transient errors with the same slice. Bytes are
// never reordered or dropped.
func writeFull(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			if isTransient(err) {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}

// fail records the first non-transient relay error and starts shutdown
func (r *Relay) fail(err error) {
	if r.relayErr == nil {
		r.relayErr = deviceErr(CodeRelayIO, err)
	}
	r.Shutdown()
}

// Shutdown stops the relay: the interrupt handler is deregistered and
// the port closed exactly once. Safe to invoke any number of times;
// repeat calls are no-ops.
func (r *Relay) Shutdown() {
	r.shutdownOnce.Do(func() {
		wake := r.State() == StateConnected
		r.state.Store(int32(StateShuttingDown))
		if r.sigCh != nil {
			signal.Stop(r.sigCh)
			close(r.sigCh)
		}
		r.port.Close()
		if wake && r.pipeW >= 0 {
			unix.Write(r.pipeW, []byte{1})
		}
	})
}
