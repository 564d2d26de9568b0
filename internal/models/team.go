package models

import "time"

// TeamLinks holds the project links a team can publish.
type TeamLinks struct {
	GitHub  string `bson:"github" json:"github"`
	Devpost string `bson:"devpost" json:"devpost"`
	Figma   string `bson:"figma" json:"figma"`
}

// TeamMember is one roster entry. The team document owns the membership
// list; the member's user document only carries a team back-reference.
type TeamMember struct {
	Discord string `bson:"discord" json:"discord"`
	Name    string `bson:"name" json:"name"`
	UID     string `bson:"uid" json:"uid"`
}

// Team is a hackathon team document.
type Team struct {
	ID        string       `bson:"_id,omitempty" json:"id"`
	Links     TeamLinks    `bson:"links" json:"links"`
	Members   []TeamMember `bson:"members" json:"members"`
	Status    int          `bson:"status" json:"status"`
	Timestamp time.Time    `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}
