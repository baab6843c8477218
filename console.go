//go:build !tinygo

package main

import (
	"fmt"
	"io"
	"os"

	"go.bug.st/serial"
)

// openConsole returns the diagnostic channel: the named serial port at
// ConsoleBaud, or stdout when no port is configured.
func openConsole(port string) (io.WriteCloser, error) {
	if port == "" {
		return nopCloser{os.Stdout}, nil
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: ConsoleBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return p, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
