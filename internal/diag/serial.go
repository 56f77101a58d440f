package diag

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

// reconnectInterval is how long a failed open is remembered before the next
// line tries again.
const reconnectInterval = 2 * time.Second

type openPortFunc func(path string, mode *serial.Mode) (io.WriteCloser, error)

func openPort(path string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(path, mode)
}

// Serial writes lines to a serial device such as a Bluetooth SPP link
// (/dev/rfcomm0). Lines are only sent while the port is open; the port is
// (re)opened lazily when a line arrives and the last attempt is old enough.
type Serial struct {
	path string
	mode *serial.Mode
	open openPortFunc
	now  func() time.Time

	mu      sync.Mutex
	port    io.WriteCloser
	retryAt time.Time
}

func NewSerial(path string, baud int) (*Serial, error) {
	return newSerial(path, baud, openPort, time.Now)
}

func newSerial(path string, baud int, open openPortFunc, now func() time.Time) (*Serial, error) {
	if path == "" {
		return nil, fmt.Errorf("diag: serial path is required")
	}
	if baud <= 0 {
		return nil, fmt.Errorf("diag: invalid baud rate %d", baud)
	}
	return &Serial{
		path: path,
		mode: &serial.Mode{BaudRate: baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit},
		open: open,
		now:  now,
	}, nil
}

func (s *Serial) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		if s.now().Before(s.retryAt) {
			return
		}
		p, err := s.open(s.path, s.mode)
		if err != nil {
			s.retryAt = s.now().Add(reconnectInterval)
			return
		}
		log.Printf("diag: serial %s connected", s.path)
		s.port = p
	}
	if _, err := fmt.Fprintf(s.port, format+"\r\n", args...); err != nil {
		log.Printf("diag: serial %s dropped: %v", s.path, err)
		_ = s.port.Close()
		s.port = nil
		s.retryAt = s.now().Add(reconnectInterval)
	}
}

// Connected reports whether a port is currently open.
func (s *Serial) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
