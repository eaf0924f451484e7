package acquire

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate of the sensor head.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the scans channel buffer.
	DefaultBufferSize = 4
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the sensor-head MCU.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	scans     chan Scan
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		scans:     make(chan Scan, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading scan lines.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readScans()

	return nil
}

// Close closes the connection and stops reading scans.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	close(d.scans)

	return nil
}

// StartScan requests one dual-channel scan of the selected sensor pair.
// The result arrives on the Scans channel when the MCU finishes sampling.
func (d *Serial) StartScan(kind ScanKind) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(kind.String() + "\n")); err != nil {
		return fmt.Errorf("failed to send %s scan command: %w", kind, err)
	}

	return nil
}

// Scans returns the channel for reading completed scans.
func (d *Serial) Scans() <-chan Scan {
	return d.scans
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readScans reads lines from the serial port and parses them into Scans.
func (d *Serial) readScans() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readScans: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	// A scan line is ~700 bytes; leave generous headroom
	scanner.Buffer(make([]byte, 4096), 4096)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			scan, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse scan line: %v", err)
				continue
			}

			select {
			case d.scans <- scan:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Scans channel full, dropping scan")
			}
		}
	}
}
