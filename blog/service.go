// Package blog implements the write side: creating and editing posts and
// commenting on them.
package blog

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"blogyard/domain"
)

var (
	postsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogyard_posts_created_total",
		Help: "Posts created.",
	})
	commentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogyard_comments_created_total",
		Help: "Comments created.",
	})
)

type Store interface {
	GroupByID(ctx context.Context, id int64) (domain.Group, error)
	PostByID(ctx context.Context, id int64) (domain.Post, error)
	InsertPost(ctx context.Context, p domain.Post) (domain.Post, error)
	UpdatePost(ctx context.Context, p domain.Post) error
	InsertComment(ctx context.Context, c domain.Comment) (domain.Comment, error)
	CommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}

type NewPost struct {
	AuthorID int64
	Text     string
	GroupID  *int64
	Image    *Upload
}

// PostEdit replaces a post's text and group. A nil Image keeps the current
// one.
type PostEdit struct {
	Text    string
	GroupID *int64
	Image   *Upload
}

type Service struct {
	Logger *slog.Logger
	Store  Store
	Media  *Media
}

func NewService(s Store, media *Media, logger *slog.Logger) *Service {
	return &Service{
		Logger: logger.With("component", "blog.Service"),
		Store:  s,
		Media:  media,
	}
}

func (s *Service) CreatePost(ctx context.Context, in NewPost) (domain.Post, error) {
	if err := domain.ValidatePostText(in.Text); err != nil {
		return domain.Post{}, err
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return domain.Post{}, err
	}

	p := domain.Post{AuthorID: in.AuthorID, Text: in.Text, GroupID: in.GroupID}
	if in.Image != nil {
		image, err := s.Media.Save(*in.Image)
		if err != nil {
			return domain.Post{}, err
		}
		p.Image = image
	}

	created, err := s.Store.InsertPost(ctx, p)
	if err != nil {
		s.discardImage(p.Image)
		return domain.Post{}, err
	}
	postsCreated.Inc()
	s.Logger.Info("Post created", "post_id", created.ID, "author_id", created.AuthorID)
	return s.Store.PostByID(ctx, created.ID)
}

// EditPost applies edit when editorID wrote the post. For anybody else it
// returns the untouched post together with a PermissionError.
func (s *Service) EditPost(ctx context.Context, editorID, postID int64, edit PostEdit) (domain.Post, error) {
	p, err := s.Store.PostByID(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if p.AuthorID != editorID {
		return p, &domain.PermissionError{Action: "only the author can edit a post"}
	}
	if err := domain.ValidatePostText(edit.Text); err != nil {
		return p, err
	}
	if err := s.checkGroup(ctx, edit.GroupID); err != nil {
		return p, err
	}

	updated := p
	updated.Text = edit.Text
	updated.GroupID = edit.GroupID
	if edit.Image != nil {
		image, err := s.Media.Save(*edit.Image)
		if err != nil {
			return p, err
		}
		updated.Image = image
	}

	if err := s.Store.UpdatePost(ctx, updated); err != nil {
		if updated.Image != p.Image {
			s.discardImage(updated.Image)
		}
		return p, err
	}
	s.Logger.Info("Post edited", "post_id", p.ID)
	return s.Store.PostByID(ctx, p.ID)
}

func (s *Service) AddComment(ctx context.Context, authorID, postID int64, text string) (domain.Comment, error) {
	if err := domain.ValidateCommentText(text); err != nil {
		return domain.Comment{}, err
	}
	if _, err := s.Store.PostByID(ctx, postID); err != nil {
		return domain.Comment{}, err
	}

	c, err := s.Store.InsertComment(ctx, domain.Comment{PostID: postID, AuthorID: authorID, Text: text})
	if err != nil {
		return domain.Comment{}, err
	}
	commentsCreated.Inc()
	return c, nil
}

// PostDetail loads a post and its comments, oldest comment first.
func (s *Service) PostDetail(ctx context.Context, postID int64) (domain.Post, []domain.Comment, error) {
	p, err := s.Store.PostByID(ctx, postID)
	if err != nil {
		return domain.Post{}, nil, err
	}
	comments, err := s.Store.CommentsByPost(ctx, postID)
	if err != nil {
		return domain.Post{}, nil, err
	}
	return p, comments, nil
}

func (s *Service) checkGroup(ctx context.Context, groupID *int64) error {
	if groupID == nil {
		return nil
	}
	_, err := s.Store.GroupByID(ctx, *groupID)
	return err
}

// discardImage removes an image whose post never made it to the database.
func (s *Service) discardImage(image string) {
	if image == "" {
		return
	}
	if err := s.Media.Remove(image); err != nil {
		s.Logger.Warn("Failed to remove orphaned image", "image", image, "error", err)
	}
}
