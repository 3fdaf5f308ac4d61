package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
)

var ErrNotFound = errors.New("not found")
var ErrUnknownType = errors.New("unknown resource type")

// Repository looks up blog objects by their plural resource type, e.g. "authors"
type Repository interface {
	Find(ctx context.Context, resourceType, id string) (any, error)
	List(ctx context.Context, resourceType string) (any, error)
	Types() []string
}

type repository struct {
	mu       sync.RWMutex
	authors  []*Author
	posts    []*Post
	comments []*Comment
	blogs    []*Blog
	roles    []*Role
}

// NewRepository returns an in memory repository populated with data
func NewRepository(data *Data) Repository {
	return &repository{
		authors:  data.Authors,
		posts:    data.Posts,
		comments: data.Comments,
		blogs:    data.Blogs,
		roles:    data.Roles,
	}
}

func (r *repository) Types() []string {
	return []string{"authors", "blogs", "comments", "posts", "roles"}
}

func (r *repository) List(ctx context.Context, resourceType string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch resourceType {
	case "authors":
		return r.authors, nil
	case "posts":
		return r.posts, nil
	case "comments":
		return r.comments, nil
	case "blogs":
		return r.blogs, nil
	case "roles":
		return r.roles, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownType, resourceType)
}

func (r *repository) Find(ctx context.Context, resourceType, id string) (any, error) {
	key, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, resourceType, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result any
	var found bool

	switch resourceType {
	case "authors":
		result, found = lo.Find(r.authors, func(a *Author) bool { return a.ID == key })
	case "posts":
		result, found = lo.Find(r.posts, func(p *Post) bool { return p.ID == key })
	case "comments":
		result, found = lo.Find(r.comments, func(c *Comment) bool { return c.ID == key })
	case "blogs":
		result, found = lo.Find(r.blogs, func(b *Blog) bool { return b.ID == key })
	case "roles":
		result, found = lo.Find(r.roles, func(rl *Role) bool { return rl.ID == key })
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, resourceType)
	}

	if !found {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, resourceType, id)
	}

	return result, nil
}

type Data struct {
	Authors  []*Author
	Posts    []*Post
	Comments []*Comment
	Blogs    []*Blog
	Roles    []*Role
}

// SampleData returns a small, fully linked object graph
func SampleData() *Data {
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	blog := &Blog{ID: 1, Name: "AMS Blog"}

	admin := &Role{ID: 1, Name: "admin", Description: "Can moderate comments"}
	writer := &Role{ID: 2, Name: "writer", Description: "Can publish posts"}

	steve := &Author{ID: 1, Name: "Steve K.", Roles: []*Role{admin, writer}, UpdatedAt: updated}
	steve.Bio = &Bio{ID: 1, Content: "Writes about serializers.", Rating: 5}

	anne := &Author{ID: 2, Name: "Anne A.", Roles: []*Role{}, UpdatedAt: updated}

	post := &Post{
		ID:     42,
		Title:  "New Post",
		Body:   "Body of the new post. It has two sentences.",
		Tags:   []Tag{{Name: "#hashtagged"}},
		Author: steve,
		Blog:   blog,
	}

	first := &Comment{ID: 1, Body: "ZOMG A COMMENT", Post: post, Author: anne}
	second := &Comment{ID: 2, Body: "ZOMG ANOTHER COMMENT", Post: post, Author: steve}

	post.Comments = []*Comment{first, second}
	steve.Posts = []*Post{post}
	anne.Posts = []*Post{}

	return &Data{
		Authors:  []*Author{steve, anne},
		Posts:    []*Post{post},
		Comments: []*Comment{first, second},
		Blogs:    []*Blog{blog},
		Roles:    []*Role{admin, writer},
	}
}
