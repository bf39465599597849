package sercom

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDeviceErrorFormat(t *testing.T) {
	err := deviceErr(CodeExclusiveAccessFailed, unix.EBUSY)
	expected := "exclusive_access_failed - device or resource busy"
	if err.Error() != expected {
		t.Errorf("Error() = %q, expected %q", err.Error(), expected)
	}

	bare := deviceErr(CodeFlushFailed, nil)
	if bare.Error() != "flush_failed" {
		t.Errorf("Error() = %q, expected %q", bare.Error(), "flush_failed")
	}
}

func TestDeviceErrorUnwrap(t *testing.T) {
	err := deviceErr(CodeOpenFailed, unix.EACCES)
	if !errors.Is(err, unix.EACCES) {
		t.Error("DeviceError should unwrap to the underlying OS error")
	}

	wrapped := deviceErr(CodeUnsupportedBaud, ErrInvalidBaudRate)
	if !errors.Is(wrapped, ErrInvalidBaudRate) {
		t.Error("DeviceError should unwrap to ErrInvalidBaudRate")
	}
}
