package main

import (
	"log"
	"strings"

	"tinygo.org/x/bluetooth"
)

// bleAdapter is the part of *bluetooth.Adapter that bleLink uses.
type bleAdapter interface {
	Enable() error
	SetConnectHandler(c func(device bluetooth.Device, connected bool))
	Connect(address bluetooth.Address, params bluetooth.ConnectionParams) (bluetooth.Device, error)
}

// bleLink is a Link backed by tinygo.org/x/bluetooth. It works on the
// firmware targets the package supports and on Linux through BlueZ.
//
// Only the nRF and darwin backends call the connect handler. Elsewhere a
// successful Connect is taken as the connect edge, and disconnects are only
// seen if watch is set.
type bleLink struct {
	adapter bleAdapter
	state   linkState

	// watch, if set, reports Connected changes for addr from outside the
	// bluetooth package.
	watch func(addr string, onChange func(connected bool))
}

func newBLELink(adapter bleAdapter) *bleLink {
	return &bleLink{adapter: adapter}
}

func (l *bleLink) Begin(addr string) {
	// ParseMAC only accepts upper-case hex digits.
	mac, err := bluetooth.ParseMAC(strings.ToUpper(addr))
	if err != nil {
		log.Printf("parse controller address %q: %v", addr, err)
		return
	}
	if err := l.adapter.Enable(); err != nil {
		log.Printf("enable bluetooth adapter: %v", err)
		return
	}
	// Only one peer is ever connected, so every event is about it.
	l.adapter.SetConnectHandler(func(_ bluetooth.Device, connected bool) {
		l.state.event(connected)
	})
	if l.watch != nil {
		l.watch(addr, l.state.event)
	}

	target := bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}
	go l.connect(addr, target)
}

func (l *bleLink) connect(addr string, target bluetooth.Address) {
	if _, err := l.adapter.Connect(target, bluetooth.ConnectionParams{}); err != nil {
		log.Printf("connect %s: %v", addr, err)
		return
	}
	l.state.initial(true)
}

func (l *bleLink) IsConnected() bool {
	return l.state.get()
}
