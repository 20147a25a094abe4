package post

import (
	"time"

	"devsync/internal/common"
)

type Post struct {
	ID            common.UUID   `json:"id"`
	AuthorID      common.UUID   `json:"author_id"`
	Content       string        `json:"content"`
	Tags          []string      `json:"tags"`
	Likes         []common.UUID `json:"likes"`
	CommentsCount int           `json:"comments_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// LikedBy reports whether the user already likes the post.
func (p Post) LikedBy(userID common.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
