package main

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"time"
)

const (
	// PeerAddress is the hardware address of the one controller we bind to.
	PeerAddress = "78:3e:2b:05:06:07"

	// LEDPin is the output line that mirrors the connection status.
	LEDPin = 4
	// ConsoleBaud is the symbol rate of the diagnostic console.
	ConsoleBaud = 9600

	// BootBlink is how long the LED stays lit at boot.
	BootBlink = 2000 * time.Millisecond
	// PollInterval is the delay between connection polls.
	PollInterval = 1000 * time.Millisecond
)

// Diagnostic lines written to the console.
const (
	lineReady        = "Controller ready."
	lineConnected    = "is connected!"
	lineNotConnected = "not connected..."
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "3"

func bannerLine() string {
	return version + " new code with new mac"
}

// Pin is a single digital output line.
type Pin interface {
	ConfigureOutput()
	Set(high bool)
}

// Link is the controller-link collaborator. Begin requests pairing and
// returns immediately; IsConnected reports the link's own view of the peer.
type Link interface {
	Begin(addr string)
	IsConnected() bool
}

// Board owns the console, the LED pin and the controller link. It is the
// only writer of the pin.
type Board struct {
	console *log.Logger
	pin     Pin
	link    Link
	clock   Clock

	level    atomic.Bool
	polls    atomic.Uint64
	lastPoll atomic.Int64 // unix nanos
}

// NewBoard wraps console in a line logger and takes ownership of pin. A nil
// clock means wall-clock time.
func NewBoard(console io.Writer, pin Pin, link Link, clock Clock) *Board {
	if clock == nil {
		clock = realClock{}
	}
	return &Board{
		console: log.New(console, "", 0),
		pin:     pin,
		link:    link,
		clock:   clock,
	}
}

// Boot blinks the LED once, prints the banner and asks the link to pair
// with PeerAddress. It only returns early if ctx is cancelled during the
// blink, in which case pairing is never requested.
func (b *Board) Boot(ctx context.Context) error {
	b.pin.ConfigureOutput()
	b.setLevel(true)
	if err := b.wait(ctx, BootBlink); err != nil {
		return err
	}
	b.setLevel(false)

	b.console.Println(bannerLine())
	b.link.Begin(PeerAddress)
	b.console.Println(lineReady)
	return nil
}

// Poll queries the link once, reports the result on the console and drives
// the pin to match. It returns the observed status.
func (b *Board) Poll() bool {
	connected := b.link.IsConnected()
	if connected {
		b.console.Println(lineConnected)
	} else {
		b.console.Println(lineNotConnected)
	}
	b.setLevel(connected)

	// lastPoll first, so a reader that sees the new count sees its time.
	b.lastPoll.Store(b.clock.Now().UnixNano())
	b.polls.Add(1)
	return connected
}

// Run boots the board and then polls once per PollInterval until ctx is
// done. With a context that is never cancelled it never returns.
func (b *Board) Run(ctx context.Context) error {
	if err := b.Boot(ctx); err != nil {
		return err
	}
	for {
		b.Poll()
		if err := b.wait(ctx, PollInterval); err != nil {
			return err
		}
	}
}

// Snapshot is a read-only copy of what the board last observed.
type Snapshot struct {
	State    ConnState
	Polls    uint64
	LastPoll time.Time
}

// Status returns the last observed status. It is safe to call from other
// goroutines while Run is polling.
func (b *Board) Status() Snapshot {
	s := Snapshot{
		State: StateDisconnected,
		Polls: b.polls.Load(),
	}
	if b.level.Load() {
		s.State = StateConnected
	}
	if s.Polls == 0 {
		s.State = StateBooting
		return s
	}
	s.LastPoll = time.Unix(0, b.lastPoll.Load())
	return s
}

func (b *Board) setLevel(high bool) {
	b.pin.Set(high)
	b.level.Store(high)
}

func (b *Board) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.clock.After(d):
		return nil
	}
}
