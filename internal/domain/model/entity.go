// Package model contains the combat domain types passed between analysis stages.
package model

// Category classifies who an entity is relative to the log owner.
type Category string

// Entity categories.
const (
	CategorySelf   Category = "self"
	CategoryPlayer Category = "player"
	CategoryNPC    Category = "npc"
	CategoryPet    Category = "pet"
)

// Entity is a combat participant. Two entities are the same participant
// within a session when their names are equal.
type Entity struct {
	Name     string   `json:"name" yaml:"name" csv:"name"`
	Category Category `json:"category" yaml:"category" csv:"category"`
	Realm    string   `json:"realm,omitempty" yaml:"realm,omitempty" csv:"realm"`
}

// IsPlayer reports whether the entity is a player character (including the log owner).
func (e Entity) IsPlayer() bool {
	return e.Category == CategorySelf || e.Category == CategoryPlayer
}

// IsSelf reports whether the entity is the log owner.
func (e Entity) IsSelf() bool { return e.Category == CategorySelf }

// Friendly reports whether the entity fights on the log owner's side:
// players and their pets.
func (e Entity) Friendly() bool {
	return e.IsPlayer() || e.Category == CategoryPet
}

// IsZero reports whether the entity is absent.
func (e Entity) IsZero() bool { return e.Name == "" }
