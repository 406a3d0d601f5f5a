// internal/domain/models/user.go
package models

// UserReference identifies a user (typically an attorney) and carries just
// enough to display the person and match them during reconciliation. It is a
// value object; it is never persisted on its own.
type UserReference struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}
