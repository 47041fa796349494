package api

import "errors"

// Op names the user action an error came from.
type Op int

const (
	OpFetch Op = iota
	OpSave
	OpDelete
	OpLike
)

// UserMessage maps an error to the alert text shown to the user.
// It returns "" for a nil error.
func UserMessage(op Op, err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotFound) {
		return "Song not found"
	}

	var apiErr *APIError
	switch op {
	case OpFetch:
		return "Failed to fetch songs"
	case OpSave:
		if errors.As(err, &apiErr) {
			return "Failed to save song: " + apiErr.Message
		}
		return "Network error occurred during saving"
	case OpDelete:
		return "Failed to delete song"
	case OpLike:
		return "Failed to update song"
	default:
		return err.Error()
	}
}
