package sercom

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")
	ErrPortClosed      = errors.New("serial port is closed")
)

// ErrorCode identifies which step of device setup or relay I/O failed.
type ErrorCode string

const (
	CodeOpenFailed            ErrorCode = "open_failed"
	CodeAttributeReadFailed   ErrorCode = "attribute_read_failed"
	CodeAttributeWriteFailed  ErrorCode = "attribute_write_failed"
	CodeUnsupportedBaud       ErrorCode = "unsupported_baud"
	CodeInvalidConfig         ErrorCode = "invalid_config"
	CodeFlushFailed           ErrorCode = "flush_failed"
	CodeExclusiveAccessFailed ErrorCode = "exclusive_access_failed"
	CodeRelayIO               ErrorCode = "relay_io"
)

// DeviceError wraps an underlying OS error with the setup step that failed.
// The rendered form is "<code> - <description>" so that command-level
// reporting ("Error: %v") produces the documented operator-facing shape.
type DeviceError struct {
	Code ErrorCode
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s - %v", e.Code, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// deviceErr builds a DeviceError, keeping call sites in port.go short.
func deviceErr(code ErrorCode, err error) *DeviceError {
	return &DeviceError{Code: code, Err: err}
}
