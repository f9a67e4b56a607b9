package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"blogyard/blog"
	"blogyard/cache"
	"blogyard/domain"
	"blogyard/feed"
)

// maxImageSize caps uploads read into memory.
const maxImageSize = 5 << 20

type PostDTO struct {
	ID            int64
	Preview       string
	Text          string
	Content       template.HTML
	Author        string
	Group         *domain.Group
	Image         string
	CommentsCount int
	CreatedAt     string
}

type CommentDTO struct {
	Author    string
	Content   template.HTML
	CreatedAt string
}

// listPage feeds every template that shows a page of posts.
type listPage struct {
	Title     string
	User      *Claims
	Posts     []PostDTO
	Page      domain.Pagination
	BasePath  string
	Group     *domain.Group
	Author    *domain.User
	Following bool
	CanFollow bool
}

type postView struct {
	Title    string
	User     *Claims
	Post     PostDTO
	Comments []CommentDTO
	IsAuthor bool
	Error    string
}

type postForm struct {
	Title   string
	User    *Claims
	Groups  []domain.Group
	PostID  int64
	IsEdit  bool
	Text    string
	GroupID int64
	Image   string
	Errors  map[string]string
}

func toPostDTO(p domain.Post, _ int) PostDTO {
	return PostDTO{
		ID:            p.ID,
		Preview:       sanitizerStrict.Sanitize(p.String()),
		Text:          p.Text,
		Content:       safeMd(p.Text),
		Author:        p.Author,
		Group:         p.Group,
		Image:         p.Image,
		CommentsCount: p.CommentsCount,
		CreatedAt:     p.CreatedAt.Format(time.DateOnly),
	}
}

func toCommentDTO(c domain.Comment, _ int) CommentDTO {
	return CommentDTO{
		Author:    c.Author,
		Content:   safeMd(c.Text),
		CreatedAt: c.CreatedAt.Format(time.DateTime),
	}
}

func newListPage(title, basePath string, page feed.Page) listPage {
	return listPage{
		Title:    title,
		Posts:    lo.Map(page.Posts, toPostDTO),
		Page:     page.Pagination,
		BasePath: basePath,
	}
}

func (h *Handler) render(c echo.Context, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Echo().Renderer.Render(&buf, name, data, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetIndex serves the home timeline. The first page comes from the timeline
// cache and is rendered without any per-user data so it can be shared; later
// pages render live for the current user.
func (h *Handler) GetIndex(c echo.Context) error {
	number := feed.ParsePage(c.QueryParam("page"))
	renderIndex := func(user *Claims) cache.RenderFunc {
		return func(ctx context.Context) ([]byte, error) {
			page, err := h.Feed.Page(ctx, feed.All(), number)
			if err != nil {
				return nil, err
			}
			data := newListPage("Latest posts", "/", page)
			data.User = user
			return h.render(c, "index.html", data)
		}
	}

	var (
		body []byte
		err  error
	)
	if number == 1 {
		body, err = h.Timeline.Fetch(c.Request().Context(), renderIndex(nil))
	} else {
		var user *Claims
		if u, ok := currentUser(c); ok {
			user = u
		}
		body, err = renderIndex(user)(c.Request().Context())
	}
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, body)
}

func (h *Handler) GetGroup(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.Store.GroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}

	page, err := h.Feed.Page(ctx, feed.ByGroup(group.ID), feed.ParsePage(c.QueryParam("page")))
	if err != nil {
		return err
	}

	data := newListPage(group.Title, "/group/"+group.Slug, page)
	data.Group = &group
	data.User, _ = currentUser(c)
	return c.Render(http.StatusOK, "group.html", data)
}

func (h *Handler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}

	page, err := h.Feed.Page(ctx, feed.ByAuthor(author.ID), feed.ParsePage(c.QueryParam("page")))
	if err != nil {
		return err
	}

	data := newListPage("Posts by "+author.Username, "/profile/"+author.Username, page)
	data.Author = &author
	if user, ok := currentUser(c); ok {
		data.User = user
		data.CanFollow = user.UserID != author.ID
		data.Following, err = h.Follows.IsFollowing(ctx, user.UserID, author.ID)
		if err != nil {
			return err
		}
	}
	return c.Render(http.StatusOK, "profile.html", data)
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	p, comments, err := h.Blog.PostDetail(c.Request().Context(), id)
	if err != nil {
		return err
	}

	data := postView{
		Title:    p.String(),
		Post:     toPostDTO(p, 0),
		Comments: lo.Map(comments, toCommentDTO),
	}
	if user, ok := currentUser(c); ok {
		data.User = user
		data.IsAuthor = user.UserID == p.AuthorID
	}
	return c.Render(http.StatusOK, "post-view.html", data)
}

func (h *Handler) GetNewPostForm(c echo.Context) error {
	form, err := h.newPostForm(c, "New post")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "post-edit.html", form)
}

func (h *Handler) NewPost(c echo.Context) error {
	user, _ := currentUser(c)

	in := blog.NewPost{AuthorID: user.UserID, Text: c.FormValue("text")}
	groupID, err := formGroupID(c)
	if err != nil {
		return err
	}
	in.GroupID = groupID
	if in.Image, err = formImage(c); err != nil {
		return err
	}

	if _, err := h.Blog.CreatePost(c.Request().Context(), in); err != nil {
		return h.rerenderPostForm(c, "New post", 0, in.Text, groupID, err)
	}
	return c.Redirect(http.StatusFound, profilePath(user.Username))
}

func (h *Handler) GetEditPostForm(c echo.Context) error {
	user, _ := currentUser(c)
	id, err := postID(c)
	if err != nil {
		return err
	}

	p, err := h.Store.PostByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if p.AuthorID != user.UserID {
		return c.Redirect(http.StatusFound, postPath(id))
	}

	form, err := h.newPostForm(c, "Edit post")
	if err != nil {
		return err
	}
	form.IsEdit = true
	form.PostID = p.ID
	form.Text = p.Text
	form.Image = p.Image
	if p.GroupID != nil {
		form.GroupID = *p.GroupID
	}
	return c.Render(http.StatusOK, "post-edit.html", form)
}

func (h *Handler) EditPost(c echo.Context) error {
	user, _ := currentUser(c)
	id, err := postID(c)
	if err != nil {
		return err
	}

	edit := blog.PostEdit{Text: c.FormValue("text")}
	if edit.GroupID, err = formGroupID(c); err != nil {
		return err
	}
	if edit.Image, err = formImage(c); err != nil {
		return err
	}

	_, err = h.Blog.EditPost(c.Request().Context(), user.UserID, id, edit)
	switch {
	case errors.Is(err, domain.ErrPermission):
		return c.Redirect(http.StatusFound, postPath(id))
	case errors.Is(err, domain.ErrValidation):
		return h.rerenderPostForm(c, "Edit post", id, edit.Text, edit.GroupID, err)
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusFound, postPath(id))
}

func (h *Handler) AddComment(c echo.Context) error {
	user, _ := currentUser(c)
	id, err := postID(c)
	if err != nil {
		return err
	}

	_, err = h.Blog.AddComment(c.Request().Context(), user.UserID, id, c.FormValue("text"))
	// An empty comment is dropped silently.
	if err != nil && !errors.Is(err, domain.ErrValidation) {
		return err
	}
	return c.Redirect(http.StatusFound, postPath(id))
}

func (h *Handler) newPostForm(c echo.Context, title string) (postForm, error) {
	groups, err := h.Store.ListGroups(c.Request().Context())
	if err != nil {
		return postForm{}, err
	}
	user, _ := currentUser(c)
	return postForm{Title: title, User: user, Groups: groups, Errors: map[string]string{}}, nil
}

// rerenderPostForm shows the form again with the rejected input when err is
// a validation problem; any other error goes to the error handler.
func (h *Handler) rerenderPostForm(c echo.Context, title string, id int64, text string, groupID *int64, err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		if errors.Is(err, domain.ErrNotFound) {
			verr = domain.NewValidationError("group", "choose an existing group")
		} else {
			return err
		}
	}

	form, ferr := h.newPostForm(c, title)
	if ferr != nil {
		return ferr
	}
	form.IsEdit = id != 0
	form.PostID = id
	form.Text = text
	if groupID != nil {
		form.GroupID = *groupID
	}
	form.Errors[verr.Field] = verr.Message
	return c.Render(http.StatusBadRequest, "post-edit.html", form)
}

func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "invalid post id")
	}
	return id, nil
}

func postPath(id int64) string {
	return fmt.Sprintf("/posts/%d", id)
}

func formGroupID(c echo.Context) (*int64, error) {
	raw := strings.TrimSpace(c.FormValue("group"))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError("group", "invalid group")
	}
	return &id, nil
}

func formImage(c echo.Context) (*blog.Upload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewValidationError("image", "unreadable upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, domain.NewValidationError("image", "image is larger than 5 MiB")
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &blog.Upload{Filename: fh.Filename, Data: data}, nil
}
