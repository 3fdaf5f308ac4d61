package resources

import (
	"errors"
)

type author struct {
	ID    int
	Name  string
	Posts []*post
	Roles []*role
	Bio   *bio
}

type post struct {
	ID       int
	Title    string
	Body     string
	Comments []*comment
	Tags     []tag
	Author   *author
	Blog     *blog
}

type comment struct {
	ID     int    `json:"id"`
	Text   string `json:"body"`
	Post   *post
	Author *author
}

type blog struct {
	ID   int
	Name string
}

type role struct {
	ID   int
	Name string
}

type bio struct {
	ID      int
	Content string
}

type tag struct {
	Name string `json:"name"`
}

type model struct {
	values map[string]bool
}

func (m model) True() bool  { return true }
func (m model) False() bool { return false }

func (m model) ReadAttribute(name string) (any, error) {
	if name == "association" {
		return map[string]any{"id": 1}, nil
	}
	return nil, errors.New("no such attribute")
}

func (p *post) Summary() (string, error) {
	if p.Body == "" {
		return "", errors.New("empty body")
	}
	return p.Title + ": " + p.Body, nil
}

func (a *author) IsPublished() bool {
	return len(a.Posts) > 0
}

func newTestRegistry() (*Registry, map[string]*Descriptor) {
	commentDescriptor := Must(New("comment",
		Attributes("id", "body"),
		BelongsTo("post"),
		BelongsTo("author"),
	))

	blogDescriptor := Must(New("blog", Attributes("id", "name")))
	roleDescriptor := Must(New("role", Attributes("id", "name")))
	bioDescriptor := Must(New("bio", Attributes("id", "content")))

	postDescriptor := Must(New("post",
		Attributes("id", "title", "body"),
		HasMany("comments"),
		BelongsTo("blog"),
		BelongsTo("author"),
	))

	authorDescriptor := Must(New("author",
		Attributes("id", "name"),
		HasMany("posts"),
		HasMany("roles"),
		HasOne("bio"),
	))

	r := NewRegistry()
	r.Register(&comment{}, commentDescriptor)
	r.Register(&post{}, postDescriptor)
	r.Register(&author{}, authorDescriptor)
	r.Register(&blog{}, blogDescriptor)
	r.Register(&role{}, roleDescriptor)
	r.Register(&bio{}, bioDescriptor)

	return r, map[string]*Descriptor{
		"comment": commentDescriptor,
		"post":    postDescriptor,
		"author":  authorDescriptor,
		"blog":    blogDescriptor,
	}
}

func testData() (*author, *post, *comment) {
	a := &author{ID: 1, Name: "Steve K."}
	p := &post{ID: 42, Title: "New Post", Body: "Body", Tags: []tag{{Name: "#hashtagged"}}}
	c := &comment{ID: 1, Text: "ZOMG A COMMENT"}

	p.Comments = []*comment{c}
	p.Blog = &blog{ID: 1, Name: "AMS Blog"}
	p.Author = a
	c.Post = p
	a.Posts = []*post{p}
	a.Roles = []*role{}

	return a, p, c
}
