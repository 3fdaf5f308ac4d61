package include

import (
	"reflect"
	"testing"

	"github.com/matryer/is"
)

func TestParseSymbolLikeName(t *testing.T) {
	is := is.New(t)
	is.Equal(Parse("author"), Tree{"author": {}})
}

func TestParseSliceOfNames(t *testing.T) {
	is := is.New(t)
	is.Equal(Parse([]string{"author", "comments"}), Tree{"author": {}, "comments": {}})
}

func TestParseNestedSlice(t *testing.T) {
	is := is.New(t)

	actual := Parse([]any{"author", map[string]any{"comments": []any{"author"}}})

	is.Equal(actual, Tree{"author": {}, "comments": {"author": {}}})
}

func TestParseSliceOfMaps(t *testing.T) {
	is := is.New(t)

	actual := Parse([]any{
		"author",
		map[string]any{"blogs": []any{map[string]any{"posts": "contributors"}}},
		map[string]any{"comments": map[string]any{"author": map[string]any{"blogs": "posts"}}},
	})

	expected := Tree{
		"author":   {},
		"blogs":    {"posts": {"contributors": {}}},
		"comments": {"author": {"blogs": {"posts": {}}}},
	}

	is.Equal(actual, expected)
}

func TestEquivalentDirectivesParseToTheSameTree(t *testing.T) {
	is := is.New(t)
	expected := Tree{"posts": {"author": {}}}

	directives := []any{
		"posts.author",
		[]any{map[string]any{"posts": "author"}},
		map[string]any{"posts": "author"},
		map[string][]string{"posts": {"author"}},
		map[string]string{"posts": "author"},
	}

	for _, d := range directives {
		is.Equal(Parse(d), expected) // every form should yield the same tree
	}
}

func TestParseStringMergesSharedPrefixes(t *testing.T) {
	is := is.New(t)

	is.Equal(ParseString("a.b, a.c"), Tree{"a": {"b": {}, "c": {}}})

	actual := ParseString("posts.author, posts.comments.upvotes, posts.comments.author")
	expected := Tree{"posts": {"author": {}, "comments": {"author": {}, "upvotes": {}}}}
	is.Equal(actual, expected)
}

func TestParseStringIgnoresEmptySegments(t *testing.T) {
	is := is.New(t)

	is.Equal(ParseString(""), Tree{})
	is.Equal(ParseString(" , posts..author,"), Tree{"posts": {"author": {}}})
}

func TestParseUnrecognizedTypesYieldEmptyTree(t *testing.T) {
	is := is.New(t)

	is.Equal(Parse(nil), Tree{})
	is.Equal(Parse(42), Tree{})
	is.Equal(Parse(map[int]string{1: "a"}), Tree{})
	is.Equal(Parse(struct{}{}), Tree{})
}

func TestParseDoesNotAliasItsInput(t *testing.T) {
	is := is.New(t)

	input := Tree{"posts": {"author": {}}}
	parsed := Parse(input)
	parsed["posts"]["comments"] = Tree{}

	is.Equal(len(input["posts"]), 1) // input should not be modified
}

func TestMergeIsAUnion(t *testing.T) {
	is := is.New(t)

	left := Tree{"posts": {"author": {}}}
	right := Tree{"posts": {"comments": {}}, "bio": {}}

	merged := left.Merge(right)

	is.Equal(merged, Tree{"posts": {"author": {}, "comments": {}}, "bio": {}})
	is.Equal(left, Tree{"posts": {"author": {}}}) // merge should be pure
}

func TestChildOfMissingNameIsEmpty(t *testing.T) {
	is := is.New(t)

	var tree Tree
	is.True(tree.Child("posts").IsEmpty())
	is.True(!reflect.ValueOf(tree.Child("posts")).IsNil())
}

func TestPathsAndDepth(t *testing.T) {
	is := is.New(t)

	tree := ParseString("posts.comments.author,bio")

	is.Equal(tree.Paths(), []string{"bio", "posts.comments.author"})
	is.Equal(tree.String(), "bio,posts.comments.author")
	is.Equal(tree.Depth(), 3)
}
