package journey

import "github.com/google/uuid"

// ParseID validates an externally supplied journey id. Journey ids are
// UUIDs; the canonical lowercase rendering is returned. A malformed id is an
// IdentityError and is rejected before any store call.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", &IdentityError{ID: id, Err: err}
	}
	return u.String(), nil
}
