package model

import "time"

// Role is the combat role derived from what a participant did in a session.
type Role string

// Participant roles.
const (
	RoleDamageDealer Role = "damage_dealer"
	RoleHealer       Role = "healer"
	RoleTank         Role = "tank"
	RoleHybrid       Role = "hybrid"
	RoleUnknown      Role = "unknown"
)

// Participant is an entity seen in a session together with its derived role.
type Participant struct {
	Entity      Entity `json:"entity" yaml:"entity"`
	Role        Role   `json:"role" yaml:"role"`
	DamageDone  int64  `json:"damage_done" yaml:"damage_done"`
	HealingDone int64  `json:"healing_done" yaml:"healing_done"`
	DamageTaken int64  `json:"damage_taken" yaml:"damage_taken"`
}

// Session is one encounter: a maximal run of events with no internal gap
// above the inactivity threshold. Sessions are never modified after the
// detector closes them.
type Session struct {
	ID           string
	Start        time.Time
	End          time.Time
	Events       []Event
	Participants []Participant
}

// Duration returns End minus Start.
func (s Session) Duration() time.Duration { return s.End.Sub(s.Start) }

// Participant looks up a participant by name.
func (s Session) Participant(name string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.Entity.Name == name {
			return p, true
		}
	}
	return Participant{}, false
}
