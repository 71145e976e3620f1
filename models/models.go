package models

// User is an account record. Users are immutable after signup.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// Session maps an opaque client-held token to a user. ExpiresAt is unix
// milliseconds; zero means the session never expires.
type Session struct {
	Token     string `json:"-"`
	UserID    int64  `json:"user_id"`
	ExpiresAt int64  `json:"-"`
}

// Note field names on the wire follow the original frontend contract.
type Note struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Created    int64  `json:"created"`
	IsActive   bool   `json:"isActive"`
	IsArchived bool   `json:"isArchived"`
	Highlights string `json:"highlights,omitempty"`
}
