package models

import (
	"time"
)

// Comment represents a reader comment on an article. Author fields are a
// denormalized copy of the commenting user at post time; later profile edits
// do not rewrite history. ParentID is accepted for reply threading but the
// public listing stays flat.
type Comment struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	ArticleID    string    `gorm:"size:36;not null;index" json:"article_id"`
	AuthorID     string    `gorm:"size:36;not null;index" json:"author_id"`
	AuthorName   string    `gorm:"size:120;not null" json:"author_name"`
	AuthorAvatar string    `gorm:"size:500" json:"author_avatar,omitempty"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	ParentID     *string   `gorm:"size:36;index" json:"parent_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
