package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ID namespaces. User-authored characters and AI-proposed characters live in
// distinguishable namespaces so outline import can detect collisions and keep
// the user's definition.
const (
	UserCharacterPrefix = "char-"
	AICharacterPrefix   = "ai-char-"
)

// PlaceholderAvatar is the avatar applied when the AI omits one.
const PlaceholderAvatar = "/placeholder-avatar.png"

// PlaceholderBackgroundURL is the background image applied when the AI omits one.
const PlaceholderBackgroundURL = "/placeholder-bg.png"

// Character is a named participant in the story. Identity is ID.
type Character struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Description   string `json:"description"`
	Personality   string `json:"personality,omitempty"`
	Background    string `json:"background,omitempty"`
	IsUserCreated bool   `json:"isUserCreated"`
}

// NewUserCharacterID mints an id in the user namespace.
func NewUserCharacterID() string {
	return UserCharacterPrefix + uuid.NewString()[:8]
}

// IsUserCharacterID reports whether id belongs to the user namespace.
func IsUserCharacterID(id string) bool {
	return strings.HasPrefix(id, UserCharacterPrefix)
}

// CharacterCard is the authoring-time shape of a user-defined character,
// collected by the create wizard before any avatar exists.
type CharacterCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Personality string `json:"personality"`
	Background  string `json:"background"`
}

// Background is a static scene asset reference. No behavior.
type Background struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
