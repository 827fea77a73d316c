package models

// User is the minimal record serialized into the session after a
// successful Google sign-in.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Photo       string `json:"photo,omitempty"`
	Email       string `json:"email,omitempty"`
}

// MeResponse is the reply to GET /me. User is null when anonymous.
type MeResponse struct {
	User *User `json:"user"`
}
