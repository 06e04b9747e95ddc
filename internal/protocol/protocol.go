package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeOpen    = "OPEN"
	TypeClick   = "CLICK"
	TypeClose   = "CLOSE"
	TypeGrid    = "GRID"
	TypeActions = "ACTIONS"
	TypeNotice  = "NOTICE"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
