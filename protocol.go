package main

// ConnState is the controller status as last mirrored onto the LED.
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
	StateBooting      ConnState = "booting" // no poll has completed yet
)

// IPCRequest is sent from the CLI client to the daemon.
type IPCRequest struct {
	Command string `json:"command"` // "status"
}

// IPCResponse is sent from the daemon back to the CLI client.
type IPCResponse struct {
	State    string `json:"state,omitempty"`     // "connected", "disconnected", "booting"
	Device   string `json:"device,omitempty"`    // MAC address of the bound controller
	Polls    uint64 `json:"polls,omitempty"`     // completed polls since boot
	LastPoll string `json:"last_poll,omitempty"` // RFC 3339
	Error    string `json:"error,omitempty"`
}
