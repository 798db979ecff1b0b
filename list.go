package fedsync

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

// ExcludedPorts are never offered for selection. COM3 is the built-in
// Windows modem port that FED3 rigs never use.
var ExcludedPorts = []string{"COM3"}

var (
	// Regular expressions for different types of serial devices
	portPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
		regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices (Feather M0 based FED3)
		regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
		regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
		regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
		regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
		regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
		regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
	}

	// Virtual terminals and other non-serial devices
	excludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^tty\d+$`),
		regexp.MustCompile(`^console$`),
		regexp.MustCompile(`^ptmx$`),
		regexp.MustCompile(`^pty.*$`),
		regexp.MustCompile(`^pts/.*$`),
	}
)

// ListPorts returns the serial character devices under /dev, sorted
func ListPorts() ([]string, error) {
	return listPortsIn("/dev")
}

func listPortsIn(devDir string) ([]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if matchesAny(excludePatterns, name) || !matchesAny(portPatterns, name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	sort.Strings(ports)
	return ports, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// AvailablePorts returns ListPorts without the ExcludedPorts
func AvailablePorts() ([]string, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	return FilterExcluded(ports), nil
}

// FilterExcluded drops every port whose path or base name is in ExcludedPorts
func FilterExcluded(ports []string) []string {
	filtered := make([]string, 0, len(ports))
	for _, p := range ports {
		if isExcluded(p) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func isExcluded(portPath string) bool {
	for _, excluded := range ExcludedPorts {
		if portPath == excluded || filepath.Base(portPath) == excluded {
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

// PortInfo describes a discovered port
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") {
		info.IsUSB = true
		enrichUSBInfo(info)
	}

	return info, nil
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

// enrichUSBInfo fills USB metadata from the OS enumerator. Missing
// metadata is not an error; the fields stay empty.
func enrichUSBInfo(info *PortInfo) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.Debug().Err(err).Str("port", info.Path).Msg("usb enumeration unavailable")
		return
	}

	for _, d := range details {
		if d.Name != info.Path && filepath.Base(d.Name) != info.Name {
			continue
		}
		info.IsUSB = d.IsUSB
		info.VendorID = d.VID
		info.ProductID = d.PID
		info.SerialNumber = d.SerialNumber
		info.Product = d.Product
		return
	}
}
