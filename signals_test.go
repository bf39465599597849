package sercom

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestDecodeModemStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ModemSignals
	}{
		{"none", 0, ModemSignals{}},
		{"cts only", unix.TIOCM_CTS, ModemSignals{CTS: true}},
		{"dcd and dsr", unix.TIOCM_CAR | unix.TIOCM_DSR, ModemSignals{DCD: true, DSR: true}},
		{
			"all",
			unix.TIOCM_CTS | unix.TIOCM_DSR | unix.TIOCM_RI | unix.TIOCM_CAR | unix.TIOCM_RTS | unix.TIOCM_DTR,
			ModemSignals{CTS: true, DSR: true, RI: true, DCD: true, RTS: true, DTR: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeModemStatus(tt.status); got != tt.expected {
				t.Errorf("decodeModemStatus(%#x) = %+v, expected %+v", tt.status, got, tt.expected)
			}
		})
	}
}
