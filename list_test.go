package sercom

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListPorts(t *testing.T) {
	ports := ListPorts()

	for _, entry := range ports {
		if !filepath.IsAbs(entry.Path) {
			t.Errorf("Port path is not absolute: %s", entry.Path)
		}
		if !isCharacterDevice(entry.Path) {
			t.Errorf("Port is not a character device: %s", entry.Path)
		}
	}

	for i := 1; i < len(ports); i++ {
		if ports[i-1].Path > ports[i].Path {
			t.Errorf("Ports are not sorted: %s > %s", ports[i-1].Path, ports[i].Path)
		}
	}
}

func TestListPortsMissingDevDir(t *testing.T) {
	// Enumeration failure must yield an empty list, never an error
	ports := listPortsIn(filepath.Join(t.TempDir(), "nonexistent"), "/sys/class/tty")
	if len(ports) != 0 {
		t.Errorf("Expected empty list for missing dev dir, got %d entries", len(ports))
	}
}

func TestListPortsNoMatchingDevices(t *testing.T) {
	// Regular files matching serial names are not character devices and
	// must be skipped
	devDir := t.TempDir()
	for _, name := range []string{"ttyUSB0", "ttyACM1", "random"} {
		if err := os.WriteFile(filepath.Join(devDir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ports := listPortsIn(devDir, "/sys/class/tty")
	if len(ports) != 0 {
		t.Errorf("Expected no entries, got %d", len(ports))
	}
}

func TestIsCharacterDevice(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dev/null", true},
		{"/dev/zero", true},
		{"/tmp", false},
		{"/nonexistent", false},
	}

	for _, test := range tests {
		if got := isCharacterDevice(test.path); got != test.expected {
			t.Errorf("isCharacterDevice(%s) = %v, expected %v", test.path, got, test.expected)
		}
	}
}

func TestPortFiltering(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB12", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"ttymxc2", true},
		{"ttyTHS1", true},
		{"tty1", false},    // Virtual terminal
		{"console", false}, // Console
		{"ptmx", false},    // Pseudo-terminal multiplexer
		{"ptyp0", false},   // Pseudo-terminal
		{"random", false},
		{"ttyUSB", false}, // No index
	}

	for _, test := range tests {
		matched := matchesSerialPattern(test.name) && !matchesExcludePattern(test.name)
		if matched != test.shouldMatch {
			t.Errorf("Device %s: expected match=%v, got match=%v", test.name, test.shouldMatch, matched)
		}
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		if got := getPortDescription(test.name); got != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, got, test.expected)
		}
	}
}

func TestSysfsName(t *testing.T) {
	sysDir := t.TempDir()

	// interface string directly on the device node
	deviceDir := filepath.Join(sysDir, "ttyUSB0", "device")
	if err := os.MkdirAll(deviceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deviceDir, "interface"), []byte("FT232R USB UART\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if name := sysfsName(sysDir, "ttyUSB0"); name != "FT232R USB UART" {
		t.Errorf("sysfsName = %q, expected %q", name, "FT232R USB UART")
	}

	// product string one level up
	parent := filepath.Join(sysDir, "ttyACM0")
	if err := os.MkdirAll(filepath.Join(parent, "device"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "product"), []byte("Arduino Uno\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if name := sysfsName(sysDir, "ttyACM0"); name != "Arduino Uno" {
		t.Errorf("sysfsName = %q, expected %q", name, "Arduino Uno")
	}

	// nothing available
	if name := sysfsName(sysDir, "ttyS0"); name != "" {
		t.Errorf("sysfsName for unknown device = %q, expected empty", name)
	}
}

func TestEnrichUSBInfo(t *testing.T) {
	sysDir := t.TempDir()

	deviceDir := filepath.Join(sysDir, "ttyUSB0", "device")
	if err := os.MkdirAll(deviceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"idVendor":  "0403\n",
		"idProduct": "6001\n",
		"product":   "FT232R USB UART\n",
		"serial":    "A50285BI\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(deviceDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	info := &PortInfo{Name: "ttyUSB0"}
	enrichUSBInfo(sysDir, info)

	if info.VendorID != "0403" {
		t.Errorf("VendorID = %q, expected 0403", info.VendorID)
	}
	if info.ProductID != "6001" {
		t.Errorf("ProductID = %q, expected 6001", info.ProductID)
	}
	if info.Product != "FT232R USB UART" {
		t.Errorf("Product = %q", info.Product)
	}
	if info.SerialNumber != "A50285BI" {
		t.Errorf("SerialNumber = %q", info.SerialNumber)
	}
}

func TestGetPortInfo(t *testing.T) {
	info, err := GetPortInfo("/dev/null")
	if err != nil {
		t.Fatalf("GetPortInfo failed for /dev/null: %v", err)
	}
	if info.Name != "null" {
		t.Errorf("Expected name 'null', got '%s'", info.Name)
	}
	if info.Path != "/dev/null" {
		t.Errorf("Expected path '/dev/null', got '%s'", info.Path)
	}
	if info.Description == "" {
		t.Error("Description should not be empty")
	}

	_, err = GetPortInfo("/dev/nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent device")
	}
}
