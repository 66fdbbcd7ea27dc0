package domain

// Identity is the signed-in user as issued by the mirror's identity endpoints.
// Anonymous identities are ephemeral accounts created without credentials.
type Identity struct {
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
	Token     string `json:"token"`
}
