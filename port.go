package sercom

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Port is an open, configured serial device handle. It is created only
// after the full line configuration has been applied; once Close has
// run, no further I/O is possible on it.
type Port struct {
	mu     sync.RWMutex
	fd     int
	path   string
	config Config
	closed bool
}

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// Open opens a serial device and applies the line configuration built
// from opts. On any configuration failure the descriptor opened here is
// closed before the error is returned.
func Open(device string, opts ...Option) (*Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	// Non-blocking so a dangling carrier-detect line cannot hang the
	// open; cleared again once the port is configured.
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, deviceErr(CodeOpenFailed, fmt.Errorf("%s: %w", device, err))
	}

	if err := configurePort(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	log.Debug().
		Str("device", device).
		Int("baud", config.BaudRate).
		Int("data_bits", config.DataBits).
		Int("stop_bits", config.StopBits).
		Str("parity", config.Parity.String()).
		Msg("serial port configured")

	return &Port{fd: fd, path: device, config: config}, nil
}

// configurePort applies the full termios setup for raw byte transport
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return deviceErr(CodeAttributeReadFailed, err)
	}

	// Raw mode: no input/output translation, no line editing, no echo,
	// no signal-generating control characters
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return deviceErr(CodeUnsupportedBaud, fmt.Errorf("%d: %w", config.BaudRate, err))
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	// Character size
	termios.Cflag &^= unix.CSIZE
	switch config.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return deviceErr(CodeInvalidConfig, fmt.Errorf("data bits %d: %w", config.DataBits, ErrInvalidConfig))
	}

	// Parity
	termios.Cflag &^= unix.PARENB | unix.PARODD
	switch config.Parity {
	case ParityEven:
		termios.Cflag |= unix.PARENB
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	}

	// Stop bits
	switch config.StopBits {
	case 1:
		termios.Cflag &^= unix.CSTOPB
	case 2:
		termios.Cflag |= unix.CSTOPB
	default:
		return deviceErr(CodeInvalidConfig, fmt.Errorf("stop bits %d: %w", config.StopBits, ErrInvalidConfig))
	}

	// Keep the receiver enabled and ignore modem control lines so the
	// port works regardless of carrier-detect wiring
	termios.Cflag |= unix.CREAD | unix.CLOCAL

	// Block each read until at least one byte is available, no
	// inter-byte timeout
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	// TCSETS applies immediately without draining pending I/O
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return deviceErr(CodeAttributeWriteFailed, err)
	}

	// Discard stale bytes buffered before the framing change
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return deviceErr(CodeFlushFailed, err)
	}

	// Exclusive access: further opens of the device fail with EBUSY
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		return deviceErr(CodeExclusiveAccessFailed, err)
	}

	// Back to blocking mode now that VMIN/VTIME govern read behavior
	if err := unix.SetNonblock(fd, false); err != nil {
		return deviceErr(CodeAttributeWriteFailed, err)
	}

	return nil
}

// Close releases the port. Safe to call multiple times; the descriptor
// is closed exactly once and subsequent calls are no-ops.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}

// Read reads data from the serial port
func (p *Port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	return unix.Read(p.fd, buf)
}

// Write writes data to the serial port
func (p *Port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	return unix.Write(p.fd, data)
}

// Fd returns the underlying descriptor for readiness polling
func (p *Port) Fd() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fd
}

// Path returns the device path the port was opened with
func (p *Port) Path() string {
	return p.path
}

// Config returns the line configuration applied to the port
func (p *Port) Config() Config {
	return p.config
}

// FlushInput discards any unread input data
func (p *Port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// FlushOutput discards any unwritten output data
func (p *Port) FlushOutput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCOFLUSH)
}

// isTransient reports whether err is a retryable I/O condition
// (would-block or interrupted by a signal) rather than a genuine fault.
func isTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}
