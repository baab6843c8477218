//go:build !tinygo

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.bluez"
	adapterPath  = "/org/bluez/hci0"
	adapterIface = "org.bluez.Adapter1"
	deviceIface  = "org.bluez.Device1"
	propsIface   = "org.freedesktop.DBus.Properties"
	propsSignal  = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// deviceObjectPath converts a MAC address like "78:3e:2b:05:06:07" to
// "/org/bluez/hci0/dev_78_3E_2B_05_06_07".
func deviceObjectPath(addr string) dbus.ObjectPath {
	escaped := strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
	return dbus.ObjectPath(adapterPath + "/dev_" + escaped)
}

// macFromPath extracts a MAC address from a BlueZ device object path.
func macFromPath(path dbus.ObjectPath) string {
	s := string(path)
	prefix := adapterPath + "/dev_"
	if !strings.HasPrefix(s, prefix) {
		return ""
	}
	return strings.ReplaceAll(s[len(prefix):], "_", ":")
}

// bluez wraps a system D-Bus connection for BlueZ operations.
type bluez struct {
	conn *dbus.Conn
}

func newBluez() (*bluez, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	// Quick check that BlueZ is on the bus.
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return nil, fmt.Errorf("list bus names: %w", err)
	}
	found := false
	for _, n := range names {
		if n == busName {
			found = true
			break
		}
	}
	if !found {
		conn.Close()
		return nil, fmt.Errorf("org.bluez not found on system bus (is bluetooth.service running?)")
	}
	return &bluez{conn: conn}, nil
}

func (b *bluez) close() {
	b.conn.Close()
}

// --- property helpers ---

func (b *bluez) getProp(path dbus.ObjectPath, iface, prop string) (dbus.Variant, error) {
	obj := b.conn.Object(busName, path)
	var v dbus.Variant
	err := obj.Call(propsIface+".Get", 0, iface, prop).Store(&v)
	return v, err
}

func (b *bluez) setProp(path dbus.ObjectPath, iface, prop string, val interface{}) error {
	obj := b.conn.Object(busName, path)
	return obj.Call(propsIface+".Set", 0, iface, prop, dbus.MakeVariant(val)).Err
}

func (b *bluez) getBool(path dbus.ObjectPath, iface, prop string) (bool, error) {
	v, err := b.getProp(path, iface, prop)
	if err != nil {
		return false, err
	}
	val, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property %s is not bool", prop)
	}
	return val, nil
}

func (b *bluez) adapterPowered() (bool, error) {
	return b.getBool(adapterPath, adapterIface, "Powered")
}

func (b *bluez) setAdapterPowered(on bool) error {
	return b.setProp(adapterPath, adapterIface, "Powered", on)
}

func (b *bluez) deviceConnected(addr string) (bool, error) {
	return b.getBool(deviceObjectPath(addr), deviceIface, "Connected")
}

func (b *bluez) setBlocked(addr string, blocked bool) error {
	return b.setProp(deviceObjectPath(addr), deviceIface, "Blocked", blocked)
}

func (b *bluez) connect(addr string) error {
	obj := b.conn.Object(busName, deviceObjectPath(addr))
	return obj.Call(deviceIface+".Connect", 0).Err
}

func (b *bluez) subscribePropertyChanges() chan *dbus.Signal {
	b.conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch", 0,
		"type='signal',interface='"+propsIface+"',member='PropertiesChanged',path_namespace='/org/bluez'",
	)
	ch := make(chan *dbus.Signal, 16)
	b.conn.Signal(ch)
	return ch
}

// watchConnected reports Connected changes of the device at addr until the
// bus connection is closed.
func (b *bluez) watchConnected(addr string, onChange func(connected bool)) {
	go forwardConnected(b.subscribePropertyChanges(), addr, onChange)
}

func forwardConnected(sigCh <-chan *dbus.Signal, addr string, onChange func(connected bool)) {
	for sig := range sigCh {
		if c, ok := connectedChange(sig, addr); ok {
			onChange(c)
		}
	}
}

// connectedChange reports the new Connected value carried by sig, if sig is
// a Device1 property change for the device at addr.
func connectedChange(sig *dbus.Signal, addr string) (connected, ok bool) {
	if sig == nil || sig.Name != propsSignal {
		return false, false
	}
	// Body: [interface_name string, changed_props map[string]Variant, invalidated []string]
	if len(sig.Body) < 2 {
		return false, false
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != deviceIface {
		return false, false
	}
	mac := macFromPath(sig.Path)
	if mac == "" || !strings.EqualFold(mac, addr) {
		return false, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return false, false
	}
	connVar, ok := changed["Connected"]
	if !ok {
		return false, false
	}
	connected, ok = connVar.Value().(bool)
	return connected, ok
}

// bluezLink is a Link backed by BlueZ. Property-change signals are the
// source of truth; the Connected read in Begin only fills the gap before
// the first signal.
type bluezLink struct {
	bz    *bluez
	state linkState
}

func newBluezLink(bz *bluez) *bluezLink {
	return &bluezLink{bz: bz}
}

func (l *bluezLink) Begin(addr string) {
	// Subscribe before reading so no change falls between the two.
	l.bz.watchConnected(addr, l.state.event)
	go l.start(addr, l.bz.deviceConnected, l.pair)
}

func (l *bluezLink) start(addr string, read func(string) (bool, error), pair func(string) error) {
	if c, err := read(addr); err == nil {
		l.state.initial(c)
		if c {
			return
		}
	}
	if err := pair(addr); err != nil {
		log.Printf("pair %s: %v", addr, err)
	}
}

func (l *bluezLink) IsConnected() bool {
	return l.state.get()
}

func (l *bluezLink) pair(addr string) error {
	powered, err := l.bz.adapterPowered()
	if err != nil {
		return fmt.Errorf("adapter state: %w", err)
	}
	if !powered {
		if err := l.bz.setAdapterPowered(true); err != nil {
			return fmt.Errorf("power on: %w", err)
		}
	}
	if err := l.bz.setBlocked(addr, false); err != nil {
		return fmt.Errorf("unblock: %w", err)
	}
	if err := l.bz.connect(addr); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}
