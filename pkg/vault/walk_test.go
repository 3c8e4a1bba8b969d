package vault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTree struct {
	children map[string][]string
	fail     map[string]bool
}

func (f *fakeTree) List(path string) ([]string, error) {
	if f.fail[path] {
		return nil, errors.New("permission denied")
	}
	return f.children[path], nil
}

func collectLeaves(l Lister, root string) []string {
	var leaves []string
	Walk(l, root, func(leaf string) {
		leaves = append(leaves, leaf)
	})
	return leaves
}

func TestWalk(t *testing.T) {
	t.Run("empty tree visits nothing", func(t *testing.T) {
		tree := &fakeTree{children: map[string][]string{}}
		assert.Empty(t, collectLeaves(tree, "secret/"))
	})

	t.Run("single leaf", func(t *testing.T) {
		tree := &fakeTree{children: map[string][]string{
			"secret/": {"app"},
		}}
		assert.Equal(t, []string{"secret/app"}, collectLeaves(tree, "secret/"))
	})

	t.Run("nested tree visits leaves depth-first in listing order", func(t *testing.T) {
		tree := &fakeTree{children: map[string][]string{
			"secret/":     {"a/", "b", "c/"},
			"secret/a/":   {"x", "y/"},
			"secret/a/y/": {"deep"},
			"secret/c/":   {"z"},
		}}
		want := []string{"secret/a/x", "secret/a/y/deep", "secret/b", "secret/c/z"}
		assert.Equal(t, want, collectLeaves(tree, "secret/"))
	})

	t.Run("listing failure prunes only that subtree", func(t *testing.T) {
		tree := &fakeTree{
			children: map[string][]string{
				"secret/":   {"a/", "b", "c/"},
				"secret/a/": {"x"},
				"secret/c/": {"z"},
			},
			fail: map[string]bool{"secret/a/": true},
		}
		assert.Equal(t, []string{"secret/b", "secret/c/z"}, collectLeaves(tree, "secret/"))
	})

	t.Run("directory listed empty produces no leaves", func(t *testing.T) {
		tree := &fakeTree{children: map[string][]string{
			"secret/":       {"empty/", "leaf"},
			"secret/empty/": nil,
		}}
		assert.Equal(t, []string{"secret/leaf"}, collectLeaves(tree, "secret/"))
	})
}
