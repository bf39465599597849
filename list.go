package sercom

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// PortEntry is one discovered serial device: the /dev path and, when
// sysfs exposes one, a human-readable name.
type PortEntry struct {
	Path string
	Name string
}

// Regular expressions for different types of serial devices
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// Exclude patterns for virtual terminals and other non-serial devices
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),  // Virtual terminals (tty1, tty2, etc.)
	regexp.MustCompile(`^console$`), // Console
	regexp.MustCompile(`^ptmx$`),    // Pseudo-terminal multiplexer
	regexp.MustCompile(`^pty.*$`),   // Pseudo-terminals
	regexp.MustCompile(`^pts/.*$`),  // Pseudo-terminal slaves
}

// ListPorts returns the serial-capable devices currently present on the
// system, sorted by path. Absence of devices is not an error: any
// enumeration failure yields an empty list.
func ListPorts() []PortEntry {
	return listPortsIn("/dev", "/sys/class/tty")
}

// listPortsIn is the testable core of ListPorts
func listPortsIn(devDir, sysDir string) []PortEntry {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil
	}

	var ports []PortEntry
	for _, entry := range entries {
		name := entry.Name()

		if matchesExcludePattern(name) || !matchesSerialPattern(name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)
		if !isCharacterDevice(fullPath) {
			continue
		}

		ports = append(ports, PortEntry{
			Path: fullPath,
			Name: sysfsName(sysDir, name),
		})
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })
	return ports
}

func matchesSerialPattern(name string) bool {
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

func matchesExcludePattern(name string) bool {
	for _, pattern := range excludePatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// sysfsName resolves a friendly device name from sysfs. The tty's
// device link sits a varying number of levels below the USB device
// node (ttyUSB and ttyACM differ), so walk upwards until an interface
// or product string shows up.
func sysfsName(sysDir, dev string) string {
	node := filepath.Join(sysDir, dev, "device")
	for range 4 {
		for _, file := range []string{"interface", "product"} {
			data, err := os.ReadFile(filepath.Join(node, file))
			if err != nil {
				continue
			}
			if name := strings.TrimSpace(string(data)); name != "" {
				return name
			}
		}
		node = filepath.Join(node, "..")
	}
	return ""
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// PortInfo describes a single device in detail, including USB metadata
// from sysfs when available.
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	VendorID     string
	ProductID    string
	Product      string
	SerialNumber string
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, deviceErr(CodeOpenFailed, os.ErrNotExist)
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") {
		enrichUSBInfo("/sys/class/tty", info)
	}
	return info, nil
}

// enrichUSBInfo reads USB identity files from the device's sysfs node,
// walking upwards to find the USB device directory (the one holding
// idVendor).
func enrichUSBInfo(sysDir string, info *PortInfo) {
	node := filepath.Join(sysDir, info.Name, "device")
	for range 4 {
		if _, err := os.Stat(filepath.Join(node, "idVendor")); err == nil {
			read := func(file string) string {
				data, err := os.ReadFile(filepath.Join(node, file))
				if err != nil {
					return ""
				}
				return strings.TrimSpace(string(data))
			}
			info.VendorID = read("idVendor")
			info.ProductID = read("idProduct")
			info.Product = read("product")
			info.SerialNumber = read("serial")
			return
		}
		node = filepath.Join(node, "..")
	}
}
