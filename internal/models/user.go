package models

import "time"

// Status codes stored under roles.<type> on a user document and in the
// status field of feedback and team documents.
const (
	StatusRejected = -1
	StatusPending  = 0
	StatusAccepted = 1
)

// User represents a portal account. Role membership is a map from resource
// type ("participants", "judges", ...) to a status code; a missing key means
// the user never applied for that role or was removed from it.
type User struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	Sub       string         `bson:"sub" json:"sub"` // OIDC subject
	Email     string         `bson:"email" json:"email"`
	Name      string         `bson:"name" json:"name"`
	Discord   string         `bson:"discord,omitempty" json:"discord,omitempty"`
	Roles     map[string]int `bson:"roles" json:"roles"`
	Team      string         `bson:"team,omitempty" json:"team,omitempty"` // back-reference to the owning team document
	Resume    string         `bson:"resume,omitempty" json:"resume,omitempty"`
	Timestamp time.Time      `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}
