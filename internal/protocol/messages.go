package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	UserID          string   `json:"user_id"`
	UserName        string   `json:"user_name"`
	Locale          string   `json:"locale,omitempty"`
	Op              bool     `json:"op,omitempty"`
	Perms           []string `json:"perms,omitempty"`
	MaxQueue        int      `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	Panels          []string `json:"panels"`
	PanelsDigest    string   `json:"panels_digest"`
	IconsDigest     string   `json:"icons_digest,omitempty"`
}

// OPEN (client -> server): open a panel by name.
type OpenMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Panel           string `json:"panel"`
}

// CLICK (client -> server): a click into the currently open grid.
type ClickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cell            int    `json:"cell"`
	Secondary       bool   `json:"secondary,omitempty"`
	Modifier        bool   `json:"modifier,omitempty"`
}

// CLOSE (client -> server): the user closed the grid host-side.
type CloseMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// GRID (server -> client): the assembled panel.
type GridMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Panel           string      `json:"panel"`
	Title           string      `json:"title"`
	Rows            int         `json:"rows"`
	Cols            int         `json:"cols"`
	Cells           []*GridCell `json:"cells"`
}

type GridCell struct {
	Icon  string   `json:"icon"`
	Name  string   `json:"name"`
	Lore  []string `json:"lore,omitempty"`
	Count int      `json:"count"`
}

// ACTIONS (server -> client): what a click resolved to. Execution is the
// host's responsibility.
type ActionsMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Panel           string   `json:"panel"`
	Cell            int      `json:"cell"`
	Actions         []string `json:"actions"`
	WarpID          string   `json:"warp_id,omitempty"`
}

// NOTICE (server -> client): short localized user-facing message.
type NoticeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message"`
}
