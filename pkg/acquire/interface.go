package acquire

// Device defines the interface for sensor-head devices (real or mocked).
// A device performs one dual-channel scan per StartScan request and
// delivers the result on the Scans channel. Callers must not start a
// new scan while one is in flight.
type Device interface {
	Connect() error
	Close() error
	StartScan(kind ScanKind) error
	Scans() <-chan Scan
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
