//go:build tinygo

package main

import (
	"context"
	"machine"

	"tinygo.org/x/bluetooth"
)

// machinePin is the on-board LED line.
type machinePin struct {
	pin machine.Pin
}

func (p machinePin) ConfigureOutput() {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

func (p machinePin) Set(high bool) {
	p.pin.Set(high)
}

func main() {
	uart := machine.DefaultUART
	uart.Configure(machine.UARTConfig{BaudRate: ConsoleBaud})

	board := NewBoard(uart, machinePin{pin: machine.Pin(LEDPin)}, newBLELink(bluetooth.DefaultAdapter), realClock{})
	board.Run(context.Background())
}
