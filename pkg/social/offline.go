package social

import (
	"path/filepath"
)

const (
	postsSnapshot    = "posts.bin"
	commentsSnapshot = "comments.bin"
	repliesSnapshot  = "replies.bin"
)

// SaveSnapshots writes the three caches to dir so the next launch can
// render stale lists before its first refresh.
func (c *Client) SaveSnapshots(dir string) error {
	if err := c.Posts.SaveFile(filepath.Join(dir, postsSnapshot)); err != nil {
		return err
	}
	if err := c.Comments.SaveFile(filepath.Join(dir, commentsSnapshot)); err != nil {
		return err
	}
	return c.Replies.SaveFile(filepath.Join(dir, repliesSnapshot))
}

// LoadSnapshots restores whatever snapshots exist in dir. Missing files
// are fine; the caches just start empty.
func (c *Client) LoadSnapshots(dir string) error {
	if err := c.Posts.LoadFile(filepath.Join(dir, postsSnapshot)); err != nil {
		return err
	}
	if err := c.Comments.LoadFile(filepath.Join(dir, commentsSnapshot)); err != nil {
		return err
	}
	return c.Replies.LoadFile(filepath.Join(dir, repliesSnapshot))
}
