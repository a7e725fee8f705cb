package ws

const (
	// client - server
	MsgInput   = "input"
	MsgStart   = "start"
	MsgRestart = "restart"
	MsgPing    = "ping"

	// server - client
	MsgReady    = "ready"
	MsgSnapshot = "snapshot"
	MsgPong     = "pong"
	MsgError    = "error"
)
