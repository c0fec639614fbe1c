package models

// Result is the outcome of a credential store operation.
// Error holds a short message safe to show to the user; Kind carries the
// sentinel error for errors.Is matching. A successful result may still carry
// a Kind and Error as a warning, e.g. a login whose session was not persisted.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Kind    error  `json:"-"`
}

// Ok returns a successful result.
func Ok() Result {
	return Result{Success: true}
}

// Fail returns a failed result with a user-facing message.
func Fail(kind error, message string) Result {
	return Result{Success: false, Error: message, Kind: kind}
}
