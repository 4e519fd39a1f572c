package models

// Profile is a viewing identity under one account. ActiveProfile marks the
// profile that should be auto-selected on the next load; it is persisted by
// the backend and is independent of which profile is selected in the
// current session.
type Profile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	IsKids        bool   `json:"is_kids"`
	ActiveProfile bool   `json:"active_profile,omitempty"`
}

// AvatarCategory selects which portion of the avatar catalog to fetch.
type AvatarCategory string

const (
	AvatarCategoryDefault AvatarCategory = "default"
	AvatarCategoryKids    AvatarCategory = "kids"
)

// Avatar is a read-only entry from the predefined avatar catalog.
type Avatar struct {
	ID       string         `json:"id"`
	ImageURL string         `json:"image_url"`
	Name     string         `json:"name,omitempty"`
	Category AvatarCategory `json:"category"`
}
