package domain

import (
	"strings"
	"time"
)

// postPreviewLen is how many characters of the text a Post prints as.
const postPreviewLen = 15

type Post struct {
	ID        int64
	Text      string
	AuthorID  int64
	GroupID   *int64
	Image     string
	CreatedAt time.Time

	// Filled by read queries, never written.
	Author        string
	Group         *Group
	CommentsCount int
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postPreviewLen {
		r = r[:postPreviewLen]
	}
	return string(r)
}

func (p Post) HasImage() bool {
	return p.Image != ""
}

type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time

	Author string
}

type Follow struct {
	ID        int64
	UserID    int64
	AuthorID  int64
	CreatedAt time.Time
}

// ValidatePostText rejects empty or whitespace-only post bodies.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("text", "text is required")
	}
	return nil
}

func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("text", "comment text is required")
	}
	return nil
}
