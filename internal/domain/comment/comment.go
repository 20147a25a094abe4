package comment

import (
	"time"

	"devsync/internal/common"
)

type Comment struct {
	ID              common.UUID   `json:"id"`
	PostID          common.UUID   `json:"post_id"`
	AuthorID        common.UUID   `json:"author_id"`
	Content         string        `json:"content"`
	ParentCommentID *common.UUID  `json:"parent_comment_id,omitempty"`
	Likes           []common.UUID `json:"likes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
