package notification

import "time"

type Actor struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	From      Actor     `json:"from"`
	To        string    `json:"to"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
