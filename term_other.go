//go:build !linux && !tinygo

package main

import (
	"errors"
	"io"
)

func dialRFCOMM([6]byte, uint8) (io.ReadWriteCloser, error) {
	return nil, errors.New("rfcomm sockets need linux")
}
