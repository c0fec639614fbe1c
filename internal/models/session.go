package models

// Session is the device-local login state.
type Session struct {
	CurrentUsername string `json:"current_username,omitempty"`
	LoggedIn        bool   `json:"logged_in"`
}

// Valid reports whether the session names a user and is flagged as logged in.
func (s Session) Valid() bool {
	return s.LoggedIn && s.CurrentUsername != ""
}
