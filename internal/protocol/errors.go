package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Panel layer.
	ErrPanelNotFound    = "E_PANEL_NOT_FOUND"
	ErrPanelEmpty       = "E_PANEL_EMPTY"
	ErrPanelUnavailable = "E_PANEL_UNAVAILABLE"

	// Session/click layer.
	ErrNoSession = "E_NO_SESSION"
	ErrBadCell   = "E_BAD_CELL"

	// Data layer.
	ErrStoreFail = "E_STORE_FAIL"
	ErrInternal  = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrPanelNotFound:    {},
	ErrPanelEmpty:       {},
	ErrPanelUnavailable: {},
	ErrNoSession:        {},
	ErrBadCell:          {},
	ErrStoreFail:        {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
