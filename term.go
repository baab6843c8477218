//go:build !tinygo

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
)

// rfcommChannel is used when no channel is given.
const rfcommChannel = 1

var errInputClosed = errors.New("input closed")

// bdaddr converts "08:F9:E0:ED:20:4A" to the little-endian byte order the
// kernel expects in an RFCOMM socket address.
func bdaddr(addr string) ([6]byte, error) {
	var out [6]byte
	hw, err := net.ParseMAC(addr)
	if err != nil || len(hw) != 6 {
		return out, fmt.Errorf("invalid bluetooth address %q", addr)
	}
	for i := range out {
		out[i] = hw[5-i]
	}
	return out, nil
}

// replyError decodes the one-byte reply to a command of sent bytes. A clear
// high bit means success and yields "".
func replyError(b byte, sent int) string {
	if b&0x80 == 0 {
		return ""
	}
	switch code := 128 - int(b&0x7f); code {
	case 1:
		return "Invalid command"
	case 2:
		return "Expected another argument"
	default:
		return fmt.Sprintf("Error! Returned %d, expected %d", code, sent)
	}
}

// termSession sends one line per command to conn and prints the decoded
// reply. It returns errInputClosed when in runs dry and the link error
// otherwise.
func termSession(conn io.ReadWriter, in *bufio.Reader, out io.Writer) error {
	reply := make([]byte, 1)
	for {
		fmt.Fprint(out, "$ ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return errInputClosed
		}
		if line[len(line)-1] != '\n' {
			line += "\n"
		}

		n, err := conn.Write([]byte(line))
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return err
		}
		if _, err := io.ReadFull(conn, reply); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return err
		}
		if msg := replyError(reply[0], n); msg != "" {
			fmt.Fprintln(out, msg)
		}
	}
}

// runTerm is an interactive command console to an RFCOMM device. A dropped
// link is redialled; a failed dial or closed stdin ends the session.
func runTerm(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: padlamp term <address> [channel]")
	}
	addr := args[0]
	channel := rfcommChannel
	if len(args) > 1 {
		c, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return fmt.Errorf("channel %q: %w", args[1], err)
		}
		channel = int(c)
	}
	mac, err := bdaddr(addr)
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("Connecting to %s...\r", addr)
		conn, err := dialRFCOMM(mac, uint8(channel))
		if err != nil {
			return fmt.Errorf("connect %s: %w", addr, err)
		}
		fmt.Printf("Connected to %s... Console ready\n", addr)

		err = termSession(conn, in, os.Stdout)
		conn.Close()
		if errors.Is(err, errInputClosed) {
			fmt.Println()
			return nil
		}
		fmt.Println("Trying to reconnect...")
	}
}
