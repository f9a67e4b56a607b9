// Package feed lists posts newest first, one page at a time, for the home
// timeline, group pages, profiles and the personalized follow feed.
package feed

import (
	"context"
	"strconv"
	"strings"

	"blogyard/domain"
	"blogyard/store"
)

const DefaultPostsPerPage = 10

type kind int

const (
	kindAll kind = iota
	kindGroup
	kindAuthor
	kindFollower
)

// Filter selects which posts a page is cut from. Build it with All, ByGroup,
// ByAuthor or ByFollower; the modes are mutually exclusive.
type Filter struct {
	kind kind
	id   int64
}

func All() Filter                    { return Filter{kind: kindAll} }
func ByGroup(groupID int64) Filter   { return Filter{kind: kindGroup, id: groupID} }
func ByAuthor(authorID int64) Filter { return Filter{kind: kindAuthor, id: authorID} }

// ByFollower selects posts by the authors userID follows.
func ByFollower(userID int64) Filter { return Filter{kind: kindFollower, id: userID} }

type Page struct {
	domain.Pagination
	Posts []domain.Post
}

type PostStore interface {
	CountPosts(ctx context.Context, q store.PostQuery) (int, error)
	ListPosts(ctx context.Context, q store.PostQuery, limit, offset int) ([]domain.Post, error)
}

type FollowGraph interface {
	FollowsAnyone(ctx context.Context, userID int64) (bool, error)
}

type Engine struct {
	Posts   PostStore
	Follows FollowGraph
	PerPage int
}

func NewEngine(posts PostStore, follows FollowGraph, perPage int) *Engine {
	if perPage < 1 {
		perPage = DefaultPostsPerPage
	}
	return &Engine{Posts: posts, Follows: follows, PerPage: perPage}
}

// Page returns page number of the posts matching f. A number past the last
// page yields an empty page, not an error.
func (e *Engine) Page(ctx context.Context, f Filter, number int) (Page, error) {
	q, empty, err := e.query(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if empty {
		return Page{Pagination: domain.Paginate(0, number, e.PerPage), Posts: []domain.Post{}}, nil
	}

	total, err := e.Posts.CountPosts(ctx, q)
	if err != nil {
		return Page{}, err
	}

	p := Page{Pagination: domain.Paginate(total, number, e.PerPage), Posts: []domain.Post{}}
	if !p.InRange() {
		return p, nil
	}

	p.Posts, err = e.Posts.ListPosts(ctx, q, p.PerPage, p.Offset())
	if err != nil {
		return Page{}, err
	}
	return p, nil
}

// query translates f into a store query. empty is set when the filter can
// match nothing, which spares the database a round trip.
func (e *Engine) query(ctx context.Context, f Filter) (q store.PostQuery, empty bool, err error) {
	switch f.kind {
	case kindGroup:
		id := f.id
		q.GroupID = &id
	case kindAuthor:
		q.AuthorIDs = []int64{f.id}
	case kindFollower:
		following, err := e.Follows.FollowsAnyone(ctx, f.id)
		if err != nil {
			return q, false, err
		}
		if !following {
			return q, true, nil
		}
		id := f.id
		q.FollowerID = &id
	}
	return q, false, nil
}

// ParsePage reads a page query parameter. Anything that is not a positive
// integer means the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
