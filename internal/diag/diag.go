// Package diag carries the explorer's diagnostic lines to wherever someone
// is listening: the process log, a Bluetooth serial link or a UDP socket.
//
// Sinks are best-effort. A sink that cannot deliver drops the line; it never
// reports an error back to the exploration loop.
package diag

import (
	"errors"
	"fmt"
	"log"
)

type Sink interface {
	Printf(format string, args ...any)
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Printf(string, ...any) {}
func (Nop) Close() error          { return nil }

// Log writes to the standard logger.
type Log struct{}

func (Log) Printf(format string, args ...any) {
	log.Printf("diag: "+format, args...)
}

func (Log) Close() error { return nil }

// Multi fans every line out to all sinks.
type Multi []Sink

func (m Multi) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	for _, s := range m {
		s.Printf("%s", line)
	}
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
