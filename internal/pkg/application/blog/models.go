package blog

import (
	"strings"
	"time"
)

type Author struct {
	ID        int
	Name      string
	Posts     []*Post
	Roles     []*Role
	Bio       *Bio
	UpdatedAt time.Time
}

func (a *Author) CacheVersion() string {
	return a.UpdatedAt.UTC().Format(time.RFC3339Nano)
}

func (a *Author) IsPublished() bool {
	return len(a.Posts) > 0
}

type Post struct {
	ID       int
	Title    string
	Body     string
	Comments []*Comment
	Tags     []Tag
	Author   *Author
	Blog     *Blog
}

// Excerpt returns the first sentence of the post body
func (p *Post) Excerpt() string {
	excerpt, _, _ := strings.Cut(p.Body, ".")
	return strings.TrimSpace(excerpt)
}

type Comment struct {
	ID     int
	Body   string
	Post   *Post
	Author *Author
}

type Blog struct {
	ID   int
	Name string
}

type Bio struct {
	ID      int
	Content string
	Rating  int
}

type Role struct {
	ID          int
	Name        string
	Description string
}

type Tag struct {
	Name string `json:"name"`
}
