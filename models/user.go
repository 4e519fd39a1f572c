package models

// User is the authenticated account as returned by the backend. The
// client never mutates it directly; every change round-trips through the
// backend and replaces the copy held by the state store.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	SubscriptionPlan string    `json:"subscription_plan,omitempty"`
	Profiles         []Profile `json:"profiles,omitempty"`
}

// Plan is a read-only subscription tier fetched from the backend.
type Plan struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}
