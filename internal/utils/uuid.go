package utils

import "github.com/google/uuid"

// IsUUID reports whether s parses as a UUID. Path params are checked
// before hitting the store so garbage ids fail fast as 400s.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
