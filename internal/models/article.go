package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a set of strings as a JSON-encoded text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Article represents a published piece of content. Articles are read-only
// through the public API; they are created by seeding or editorial tooling.
// Author fields are denormalized at publish time.
type Article struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Slug         string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title        string     `gorm:"size:300;not null" json:"title"`
	Excerpt      string     `gorm:"type:text" json:"excerpt"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Category     string     `gorm:"size:120;index" json:"category"`
	Tags         StringList `gorm:"type:text" json:"tags"`
	CoverImage   string     `gorm:"size:500" json:"cover_image"`
	AuthorID     string     `gorm:"size:36;index" json:"author_id"`
	AuthorName   string     `gorm:"size:120" json:"author_name"`
	AuthorAvatar string     `gorm:"size:500" json:"author_avatar,omitempty"`
	ReadTime     int        `json:"read_time"`
	Views        int64      `gorm:"not null;default:0" json:"views"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Category is a derived view over articles; it is never persisted.
type Category struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}
