// Package ipc provides the unix-socket control protocol for a running
// listener daemon: newline-delimited JSON, one request per connection.
package ipc

// Daemon control commands.
const (
	CommandStatus   = "status"
	CommandStart    = "start"
	CommandStop     = "stop"
	CommandShutdown = "shutdown"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
