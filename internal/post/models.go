package post

import "time"

// Author is the identity resolved for post and comment owners. It carries
// no credential fields.
type Author struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	ProfileImg string `json:"profile_img"`
}

type Comment struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text,omitempty"`
	Img       string    `json:"img,omitempty"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type CommentRequest struct {
	Text string `json:"text"`
}
