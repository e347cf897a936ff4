package docstore

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Collections written by the intake wizard.
const (
	CollectionUsers    = "users"
	CollectionPayments = "payments"
)

var collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

// Record is a single document appended to a collection.
type Record struct {
	ID         uuid.UUID      `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ValidateCollection returns ErrInvalidCollection unless name is a lowercase
// identifier of at most 63 characters.
func ValidateCollection(name string) error {
	if !collectionPattern.MatchString(name) {
		return ErrInvalidCollection
	}
	return nil
}
