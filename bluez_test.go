//go:build !tinygo

package main

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestDeviceObjectPath(t *testing.T) {
	got := deviceObjectPath(PeerAddress)
	if got != "/org/bluez/hci0/dev_78_3E_2B_05_06_07" {
		t.Fatalf("deviceObjectPath = %q", got)
	}
	if mac := macFromPath(got); mac != "78:3E:2B:05:06:07" {
		t.Fatalf("macFromPath = %q", mac)
	}
	if mac := macFromPath("/org/bluez/hci1/dev_78_3E_2B_05_06_07"); mac != "" {
		t.Fatalf("macFromPath on other adapter = %q", mac)
	}
}

func TestConnectedChange(t *testing.T) {
	changed := func(props map[string]dbus.Variant) []interface{} {
		return []interface{}{deviceIface, props, []string{}}
	}
	peer := deviceObjectPath(PeerAddress)

	cases := []struct {
		name          string
		sig           *dbus.Signal
		wantConnected bool
		wantOK        bool
	}{
		{
			name:          "connected",
			sig:           &dbus.Signal{Name: propsSignal, Path: peer, Body: changed(map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)})},
			wantConnected: true,
			wantOK:        true,
		},
		{
			name:   "disconnected",
			sig:    &dbus.Signal{Name: propsSignal, Path: peer, Body: changed(map[string]dbus.Variant{"Connected": dbus.MakeVariant(false)})},
			wantOK: true,
		},
		{
			name: "other device",
			sig:  &dbus.Signal{Name: propsSignal, Path: deviceObjectPath("11:22:33:44:55:66"), Body: changed(map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)})},
		},
		{
			name: "other property",
			sig:  &dbus.Signal{Name: propsSignal, Path: peer, Body: changed(map[string]dbus.Variant{"RSSI": dbus.MakeVariant(int16(-40))})},
		},
		{
			name: "adapter interface",
			sig:  &dbus.Signal{Name: propsSignal, Path: peer, Body: []interface{}{adapterIface, map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)}}},
		},
		{
			name: "other signal",
			sig:  &dbus.Signal{Name: "org.freedesktop.DBus.ObjectManager.InterfacesAdded", Path: peer},
		},
		{name: "nil", sig: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			connected, ok := connectedChange(tc.sig, PeerAddress)
			if ok != tc.wantOK || connected != tc.wantConnected {
				t.Fatalf("connectedChange = (%v, %v), want (%v, %v)", connected, ok, tc.wantConnected, tc.wantOK)
			}
		})
	}
}

func TestForwardConnectedUpdatesState(t *testing.T) {
	l := &bluezLink{}

	ch := make(chan *dbus.Signal, 2)
	ch <- &dbus.Signal{
		Name: propsSignal,
		Path: deviceObjectPath(PeerAddress),
		Body: []interface{}{deviceIface, map[string]dbus.Variant{"Connected": dbus.MakeVariant(true)}, []string{}},
	}
	ch <- &dbus.Signal{
		Name: propsSignal,
		Path: deviceObjectPath("11:22:33:44:55:66"),
		Body: []interface{}{deviceIface, map[string]dbus.Variant{"Connected": dbus.MakeVariant(false)}, []string{}},
	}
	close(ch)
	forwardConnected(ch, PeerAddress, l.state.event)

	if !l.IsConnected() {
		t.Fatal("IsConnected = false after Connected=true signal")
	}
}

func TestStartKeepsSignalOverStaleRead(t *testing.T) {
	cases := []struct {
		name      string
		signal    *bool
		read      bool
		readErr   error
		wantPair  bool
		connected bool
	}{
		{name: "read connected", read: true, connected: true},
		{name: "read disconnected pairs", read: false, wantPair: true},
		{name: "read error pairs", readErr: errors.New("no such device"), wantPair: true},
		{name: "connect signal beats stale read", signal: ptr(true), read: false, wantPair: true, connected: true},
		{name: "disconnect signal beats stale read", signal: ptr(false), read: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := &bluezLink{}
			read := func(addr string) (bool, error) {
				if addr != PeerAddress {
					t.Errorf("read %q", addr)
				}
				// The signal lands after BlueZ answered but before the
				// answer is applied.
				if tc.signal != nil {
					l.state.event(*tc.signal)
				}
				return tc.read, tc.readErr
			}
			paired := false
			pair := func(string) error { paired = true; return nil }

			l.start(PeerAddress, read, pair)

			if paired != tc.wantPair {
				t.Fatalf("paired = %v, want %v", paired, tc.wantPair)
			}
			if got := l.IsConnected(); got != tc.connected {
				t.Fatalf("IsConnected = %v, want %v", got, tc.connected)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
