package main

import "sync/atomic"

// nullPin stands in for the LED on machines without GPIO.
type nullPin struct {
	level atomic.Bool
}

func (*nullPin) ConfigureOutput() {}
func (p *nullPin) Set(high bool)  { p.level.Store(high) }
func (p *nullPin) High() bool     { return p.level.Load() }
