//go:build !tinygo

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	linkBluez = "bluez"
	linkBLE   = "ble"
	pinRPIO   = "rpio"
	pinNone   = "none"
)

// Config selects the host backends. The controller address, pin number
// and timings are not configurable.
type Config struct {
	Link       string `json:"link,omitempty"`        // "bluez" | "ble"
	Pin        string `json:"pin,omitempty"`         // "rpio" | "none"
	SerialPort string `json:"serial_port,omitempty"` // empty means stdout
}

func defaultConfig() Config {
	return Config{Link: linkBluez, Pin: pinRPIO}
}

func configPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "padlamp", "config.json")
}

// loadConfig reads the config file. A missing file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Link == "" {
		cfg.Link = linkBluez
	}
	if cfg.Pin == "" {
		cfg.Pin = pinRPIO
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Link {
	case linkBluez, linkBLE:
	default:
		return fmt.Errorf("unknown link backend %q", c.Link)
	}
	switch c.Pin {
	case pinRPIO, pinNone:
	default:
		return fmt.Errorf("unknown pin backend %q", c.Pin)
	}
	return nil
}
