package transport

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// hidReportSize is the size of one interrupt report of the console.
const hidReportSize = 8

// HIDRawLink talks to the console through a Linux hidraw node. Every output
// report is prefixed with report id 0; replies arrive as 8-byte input reports.
type HIDRawLink struct {
	f    *os.File
	path string
}

// OpenHIDRaw opens path, for example /dev/hidraw0.
func OpenHIDRaw(path string) (*HIDRawLink, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &HIDRawLink{f: f, path: path}, nil
}

func (l *HIDRawLink) Send(frame []byte) error {
	report := make([]byte, hidReportSize+1)
	for off := 0; off < len(frame); off += hidReportSize {
		clear(report)
		copy(report[1:], frame[off:min(off+hidReportSize, len(frame))])
		if _, err := l.f.Write(report); err != nil {
			return fmt.Errorf("write report to %s: %w", l.path, err)
		}
	}
	return nil
}

func (l *HIDRawLink) Receive(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	report := make([]byte, hidReportSize)
	for len(out) < n {
		got, err := l.f.Read(report)
		if err != nil {
			return nil, fmt.Errorf("read report from %s: %w", l.path, err)
		}
		out = append(out, report[:got]...)
	}
	return out[:n], nil
}

func (l *HIDRawLink) SetDeadline(t time.Time) error {
	return l.f.SetDeadline(t)
}

func (l *HIDRawLink) Close() error {
	return l.f.Close()
}

// FindHIDRaw returns the hidraw node of the first attached console, searching
// the sysfs tree rooted at sysRoot (normally "/sys").
func FindHIDRaw(sysRoot string) (string, error) {
	want := fmt.Sprintf("HID_ID=%04X:%08X:%08X", 3, VendorID, ProductID)

	nodes, err := filepath.Glob(filepath.Join(sysRoot, "class", "hidraw", "hidraw*"))
	if err != nil {
		return "", err
	}
	for _, node := range nodes {
		if ueventMatches(filepath.Join(node, "device", "uevent"), want) {
			return filepath.Join("/dev", filepath.Base(node)), nil
		}
	}
	return "", fmt.Errorf("%w: id %04x:%04x under %s", ErrNoDevice, VendorID, ProductID, sysRoot)
}

func ueventMatches(path, want string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.EqualFold(strings.TrimSpace(sc.Text()), want) {
			return true
		}
	}
	return false
}
