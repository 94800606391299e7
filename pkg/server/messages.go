package server

// Message types.
const (
	MsgHello           = "hello"
	MsgRender          = "render"
	MsgAlert           = "alert"
	MsgClipboard       = "clipboard"
	MsgClipboardResult = "clipboard-result"
)

// inbound is a message from the client.
type inbound struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// outbound is a message to the client.
type outbound struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	HTML    string `json:"html,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Text    string `json:"text,omitempty"`
}
