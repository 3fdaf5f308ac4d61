// Package include normalizes client supplied inclusion directives into a
// canonical tree of relationship names.
//
// A directive may be a single name, a comma separated list of dot paths
// ("posts.author, posts.comments.upvotes"), a slice mixing names and nested
// directives, or a map from name to nested directive. All of them
// parse to the same Tree form:
//
//	include.Parse("posts.author")                          // {posts: {author: {}}}
//	include.Parse([]any{map[string]any{"posts": "author"}}) // {posts: {author: {}}}
//	include.Parse(map[string]any{"posts": "author"})        // {posts: {author: {}}}
package include

import (
	"reflect"
	"slices"
	"strings"
)

const (
	PathSeparator    string = ","
	SegmentSeparator string = "."
)

// Tree maps a relationship name to the subtree of relationships to include
// below it. An empty tree places no restriction on the relationships at its
// level and requests no further nesting.
type Tree map[string]Tree

// Parse converts a directive into a Tree. Directives of an unrecognized type
// yield an empty tree.
func Parse(directive any) Tree {
	switch s := directive.(type) {
	case nil:
		return Tree{}
	case Tree:
		return s.Clone()
	case string:
		return ParseString(s)
	case []string:
		t := Tree{}
		for _, e := range s {
			t = t.Merge(ParseString(e))
		}
		return t
	case []any:
		t := Tree{}
		for _, e := range s {
			t = t.Merge(Parse(e))
		}
		return t
	case map[string]any:
		t := make(Tree, len(s))
		for k, v := range s {
			t = t.Merge(Tree{k: Parse(v)})
		}
		return t
	case map[string]Tree:
		return Tree(s).Clone()
	}

	return parseReflected(reflect.ValueOf(directive))
}

func parseReflected(v reflect.Value) Tree {
	switch v.Kind() {
	case reflect.String:
		return ParseString(v.String())
	case reflect.Slice, reflect.Array:
		t := Tree{}
		for i := 0; i < v.Len(); i++ {
			t = t.Merge(Parse(v.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return Tree{}
		}
		t := Tree{}
		iter := v.MapRange()
		for iter.Next() {
			t = t.Merge(Tree{iter.Key().String(): Parse(iter.Value().Interface())})
		}
		return t
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return Tree{}
		}
		return Parse(v.Elem().Interface())
	}

	return Tree{}
}

// ParseString translates a comma separated list of dot separated paths into
// a Tree. Paths sharing a prefix are merged.
func ParseString(included string) Tree {
	t := Tree{}

	included = strings.ReplaceAll(included, " ", "")

	for _, path := range strings.Split(included, PathSeparator) {
		segments := slices.DeleteFunc(strings.Split(path, SegmentSeparator), func(s string) bool {
			return s == ""
		})

		branch := Tree{}
		for i := len(segments) - 1; i >= 0; i-- {
			branch = Tree{segments[i]: branch}
		}

		t = t.Merge(branch)
	}

	return t
}

// Merge returns the union of t and other. Children of keys present in both
// trees are merged recursively rather than replaced.
func (t Tree) Merge(other Tree) Tree {
	result := t.Clone()

	for k, v := range other {
		if existing, ok := result[k]; ok {
			result[k] = existing.Merge(v)
		} else {
			result[k] = v.Clone()
		}
	}

	return result
}

// Clone returns a deep copy of t. Cloning a nil tree returns an empty tree.
func (t Tree) Clone() Tree {
	result := make(Tree, len(t))
	for k, v := range t {
		result[k] = v.Clone()
	}
	return result
}

func (t Tree) IsEmpty() bool {
	return len(t) == 0
}

func (t Tree) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Child returns the subtree below name, or an empty tree
func (t Tree) Child(name string) Tree {
	if c, ok := t[name]; ok && c != nil {
		return c
	}
	return Tree{}
}

// Depth is the length of the longest path in the tree
func (t Tree) Depth() int {
	depth := 0
	for _, c := range t {
		depth = max(depth, 1+c.Depth())
	}
	return depth
}

// Paths lists every leaf path in dotted form, sorted
func (t Tree) Paths() []string {
	paths := []string{}

	for k, c := range t {
		if c.IsEmpty() {
			paths = append(paths, k)
			continue
		}
		for _, p := range c.Paths() {
			paths = append(paths, k+SegmentSeparator+p)
		}
	}

	slices.Sort(paths)
	return paths
}

func (t Tree) String() string {
	return strings.Join(t.Paths(), PathSeparator)
}
