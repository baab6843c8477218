//go:build !tinygo

package main

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioPin drives a BCM-numbered GPIO line through /dev/gpiomem.
type rpioPin struct {
	pin rpio.Pin
}

func openRPIOPin(n int) (*rpioPin, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	return &rpioPin{pin: rpio.Pin(n)}, nil
}

func (p *rpioPin) ConfigureOutput() {
	p.pin.Output()
}

func (p *rpioPin) Set(high bool) {
	if high {
		p.pin.High()
	} else {
		p.pin.Low()
	}
}

func (p *rpioPin) Close() error {
	p.pin.Low()
	return rpio.Close()
}
