package main

import (
	"errors"
	"testing"

	"tinygo.org/x/bluetooth"
)

// fakeAdapter connects on demand and lets the test fire the connect
// handler the way the nRF backend does.
type fakeAdapter struct {
	enableErr  error
	connectErr error
	enabled    bool
	handler    func(bluetooth.Device, bool)
	dialled    []bluetooth.Address

	// duringConnect runs inside Connect before it returns.
	duringConnect func()
}

func (a *fakeAdapter) Enable() error {
	a.enabled = true
	return a.enableErr
}

func (a *fakeAdapter) SetConnectHandler(c func(bluetooth.Device, bool)) { a.handler = c }

func (a *fakeAdapter) Connect(addr bluetooth.Address, _ bluetooth.ConnectionParams) (bluetooth.Device, error) {
	a.dialled = append(a.dialled, addr)
	if a.duringConnect != nil {
		a.duringConnect()
	}
	return bluetooth.Device{}, a.connectErr
}

func peerTarget(t *testing.T) bluetooth.Address {
	t.Helper()
	mac, err := bluetooth.ParseMAC("78:3E:2B:05:06:07")
	if err != nil {
		t.Fatal(err)
	}
	return bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}
}

func TestBLELinkBadAddress(t *testing.T) {
	a := &fakeAdapter{}
	l := newBLELink(a)
	l.Begin("78:3e:2b")
	if a.enabled {
		t.Fatal("adapter enabled for an unparsable address")
	}
	if l.IsConnected() {
		t.Fatal("IsConnected = true without a link")
	}
}

func TestBLELinkEnableFailure(t *testing.T) {
	a := &fakeAdapter{enableErr: errors.New("no radio")}
	l := newBLELink(a)
	l.Begin(PeerAddress)
	if a.handler != nil {
		t.Fatal("connect handler installed after Enable failed")
	}
}

func TestBLELinkBeginInstallsHandlerAndWatch(t *testing.T) {
	a := &fakeAdapter{}
	l := newBLELink(a)
	var watched string
	var onChange func(bool)
	l.watch = func(addr string, f func(bool)) { watched, onChange = addr, f }

	l.Begin(PeerAddress)
	if a.handler == nil {
		t.Fatal("connect handler not installed")
	}
	if watched != PeerAddress || onChange == nil {
		t.Fatalf("watch called with %q", watched)
	}

	onChange(true)
	if !l.IsConnected() {
		t.Fatal("watch event not applied")
	}
	a.handler(bluetooth.Device{}, false)
	if l.IsConnected() {
		t.Fatal("handler disconnect not applied")
	}
}

func TestBLELinkConnectEdges(t *testing.T) {
	cases := []struct {
		name      string
		connErr   error
		during    func(l *bleLink)
		after     func(l *bleLink)
		connected bool
	}{
		{
			name:      "connect without handler marks connected",
			connected: true,
		},
		{
			name:    "connect error stays disconnected",
			connErr: errors.New("page timeout"),
		},
		{
			name:      "handler connect before return",
			during:    func(l *bleLink) { l.state.event(true) },
			connected: true,
		},
		{
			name:   "disconnect seen before Connect returns",
			during: func(l *bleLink) { l.state.event(true); l.state.event(false) },
		},
		{
			name:  "disconnect after connect",
			after: func(l *bleLink) { l.state.event(false) },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &fakeAdapter{connectErr: tc.connErr}
			l := newBLELink(a)
			if tc.during != nil {
				a.duringConnect = func() { tc.during(l) }
			}

			l.connect(PeerAddress, peerTarget(t))
			if tc.after != nil {
				tc.after(l)
			}

			if len(a.dialled) != 1 || a.dialled[0] != peerTarget(t) {
				t.Fatalf("dialled %v", a.dialled)
			}
			if got := l.IsConnected(); got != tc.connected {
				t.Fatalf("IsConnected = %v, want %v", got, tc.connected)
			}
		})
	}
}
