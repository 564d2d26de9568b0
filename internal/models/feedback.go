package models

import "time"

// Feedback is a standalone document; unlike role applications it is not
// attached to the submitter's user record.
type Feedback struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Discord   string    `bson:"discord,omitempty" json:"discord,omitempty"`
	Rating    int       `bson:"rating" json:"rating"`
	Comments  string    `bson:"comments,omitempty" json:"comments,omitempty"`
	Status    int       `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
