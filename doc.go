// Package sercom discovers serial (UART-over-USB) devices on a Linux
// host, applies line-level configuration to a chosen device, and relays
// bytes bidirectionally between that device and the invoking terminal.
//
// # Basic Usage
//
// Open a serial port with default configuration (115200 8N1):
//
//	port, err := sercom.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
// Use functional options for custom framing:
//
//	port, err := sercom.Open("/dev/ttyUSB0",
//	    sercom.WithBaudRate(9600),
//	    sercom.WithDataBits(7),
//	    sercom.WithStopBits(2),
//	    sercom.WithParity(sercom.ParityEven),
//	)
//
// The port is configured for raw byte transport: no character
// translation, no line buffering, no echo. Exclusive access is
// requested so no other process can open the same device concurrently.
//
// # Relaying
//
// A Relay couples the open port to the terminal's stdin/stdout until
// the peer closes the line, stdin reaches EOF, or the user interrupts:
//
//	relay := sercom.NewRelay(port)
//	if err := relay.Run(); err != nil {
//	    fmt.Fprintf(os.Stderr, "Error: %v\n", err)
//	}
//
// Run drives a single poll-based dispatcher, so the port handle is only
// ever touched from one goroutine. Shutdown is idempotent and closes
// the port exactly once regardless of which side terminated first.
//
// # Port Discovery
//
// List serial-capable devices with optional sysfs names:
//
//	for _, entry := range sercom.ListPorts() {
//	    fmt.Printf("%s - %s\n", entry.Path, entry.Name)
//	}
//
// # Error Handling
//
// Device setup failures are reported as *DeviceError carrying the setup
// step that failed and the underlying OS error:
//
//	var derr *sercom.DeviceError
//	if errors.As(err, &derr) {
//	    fmt.Println(derr.Code)
//	}
//
// Configuration values are validated before any device is touched;
// invalid framing is rejected with ErrInvalidConfig and unsupported
// baud rates with ErrInvalidBaudRate.
//
// # Platform Support
//
// Linux only. Port configuration and the relay are built on termios
// and poll via golang.org/x/sys/unix.
package sercom
