package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"
)

type (
	// Post is a single entry on the board. Writer is set once, at
	// creation, from the authenticated caller, and never changes.
	Post struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		Writer    int64  `json:"writer"`
		CreatedAt string `json:"created_at"`
	}
)

const (
	MinTitleLen   = 2
	MaxTitleLen   = 30
	MaxContentLen = 1000
)

func validatePost(title, content string) error {
	if n := utf8.RuneCountInString(title); n < MinTitleLen || n > MaxTitleLen {
		return InvalidPost{Field: "title", Reason: fmt.Sprintf("length must be between %v and %v", MinTitleLen, MaxTitleLen)}
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return InvalidPost{Field: "content", Reason: fmt.Sprintf("length must be at most %v", MaxContentLen)}
	}
	return nil
}

// CreatePost validates and stores a new post owned by writer.
func (s *Store) CreatePost(ctx context.Context, writer int64, title, content string) (int64, error) {
	if err := validatePost(title, content); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `insert into posts(title, content, writer) values (?, ?, ?)`,
		title, content, writer)
	if err != nil {
		return 0, fmt.Errorf("unable to store post, cause %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to fetch id of new post, cause %w", err)
	}
	return id, nil
}

// LookupPost loads a single post by its id.
func (s *Store) LookupPost(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := s.db.QueryRowContext(ctx, `select post_id, title, content, writer, created_at from posts where post_id = ?`, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Writer, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, PostNotFound{ID: id}
	} else if err != nil {
		return Post{}, fmt.Errorf("unable to lookup post %v, cause %w", id, err)
	}
	return p, nil
}

// ListPosts returns every post on the board, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `select post_id, title, content, writer, created_at from posts order by post_id desc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list posts, cause %w", err)
	}
	defer rows.Close()
	var out []Post
	for rows.Next() {
		var p Post
		err = rows.Scan(&p.ID, &p.Title, &p.Content, &p.Writer, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan post to output, cause %v", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdatePost rewrites title and content of the post identified by id.
// The write matches on the writer column as well, so a post that changed
// hands between the caller's authorization check and this call (it cannot,
// writers are immutable, but a concurrent delete can race it) is left
// untouched.
func (s *Store) UpdatePost(ctx context.Context, id int64, writer int64, title, content string) error {
	if err := validatePost(title, content); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `update posts set title = ?, content = ? where post_id = ? and writer = ?`,
		title, content, id, writer)
	if err != nil {
		return fmt.Errorf("unable to update post %v, cause %w", id, err)
	}
	return s.explainMiss(ctx, res, id, writer)
}

// DeletePost removes the post identified by id, provided writer owns it.
func (s *Store) DeletePost(ctx context.Context, id int64, writer int64) error {
	res, err := s.db.ExecContext(ctx, `delete from posts where post_id = ? and writer = ?`, id, writer)
	if err != nil {
		return fmt.Errorf("unable to delete post %v, cause %w", id, err)
	}
	return s.explainMiss(ctx, res, id, writer)
}

// explainMiss turns a zero-row conditional write into the error the caller
// can act on: the post is either gone or owned by someone else.
func (s *Store) explainMiss(ctx context.Context, res sql.Result, id, writer int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to inspect write on post %v, cause %w", id, err)
	}
	if n > 0 {
		return nil
	}
	p, err := s.LookupPost(ctx, id)
	if err != nil {
		return err
	}
	return NotOwner{Post: p.ID, Caller: writer}
}
