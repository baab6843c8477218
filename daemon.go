//go:build !tinygo

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tinygo.org/x/bluetooth"
)

func socketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, "padlamp.sock")
}

// statusServer answers read-only status queries about a running board.
type statusServer struct {
	board *Board
}

func (s *statusServer) handleRequest(req IPCRequest) IPCResponse {
	switch req.Command {
	case "status":
		snap := s.board.Status()
		resp := IPCResponse{State: string(snap.State), Device: PeerAddress, Polls: snap.Polls}
		if !snap.LastPoll.IsZero() {
			resp.LastPoll = snap.LastPoll.Format(time.RFC3339)
		}
		return resp
	default:
		return IPCResponse{Error: fmt.Sprintf("unknown command: %q", req.Command)}
	}
}

func (s *statusServer) handleConn(conn net.Conn) {
	defer conn.Close()

	var req IPCRequest
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		resp := IPCResponse{Error: "invalid request: " + err.Error()}
		json.NewEncoder(conn).Encode(resp)
		return
	}

	resp := s.handleRequest(req)
	json.NewEncoder(conn).Encode(resp)
}

func (s *statusServer) serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed by shutdown.
			return
		}
		go s.handleConn(conn)
	}
}

// openHardware builds the console, pin and link selected by cfg. The
// returned cleanup releases whatever was opened.
func openHardware(cfg Config) (io.Writer, Pin, Link, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	console, err := openConsole(cfg.SerialPort)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	closers = append(closers, func() { console.Close() })

	var pin Pin
	switch cfg.Pin {
	case pinRPIO:
		p, err := openRPIOPin(LEDPin)
		if err != nil {
			cleanup()
			return nil, nil, nil, nil, err
		}
		closers = append(closers, func() { p.Close() })
		pin = p
	default:
		pin = &nullPin{}
	}

	bz, err := newBluez()
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	closers = append(closers, bz.close)

	var link Link
	switch cfg.Link {
	case linkBLE:
		// The Linux backend of tinygo.org/x/bluetooth reports no
		// disconnects, so BlueZ signals supply them.
		ble := newBLELink(bluetooth.DefaultAdapter)
		ble.watch = bz.watchConnected
		link = ble
	default:
		link = newBluezLink(bz)
	}

	return console, pin, link, cleanup, nil
}

func runDaemon() error {
	cfg, err := loadConfig(configPath())
	if err != nil {
		return err
	}

	console, pin, link, cleanup, err := openHardware(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sock := socketPath()
	os.Remove(sock) // remove stale socket
	ln, err := net.Listen("unix", sock)
	if err != nil {
		return fmt.Errorf("listen %s: %w", sock, err)
	}
	os.Chmod(sock, 0700)
	defer os.Remove(sock)
	defer ln.Close()

	board := NewBoard(console, pin, link, realClock{})
	go (&statusServer{board: board}).serve(ln)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("link=%s pin=%s console=%q, status on %s", cfg.Link, cfg.Pin, cfg.SerialPort, sock)
	err = board.Run(ctx)
	log.Println("shutting down")
	if ctx.Err() != nil {
		return nil
	}
	return err
}
