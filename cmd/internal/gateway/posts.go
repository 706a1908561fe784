package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// PostSummary is one row of a home page batch.
type PostSummary struct {
	ID           int64
	Title        string
	Content      string
	Author       string
	CreatedAt    time.Time
	CommentCount int64
}

// Post is a single post with its author.
type Post struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	Author    string
	CreatedAt time.Time
	Edited    bool
}

// Comment is a comment with its author's name.
type Comment struct {
	ID        int64
	Content   string
	Author    string
	CreatedAt time.Time
}

// ReadOnlyPosts may only read posts and comments.
type ReadOnlyPosts struct{ db Querier }

func NewReadOnlyPosts(db Querier) ReadOnlyPosts { return ReadOnlyPosts{db: db} }

// Page returns up to limit posts, newest first, starting at offset, plus the
// total number of posts. An offset past the end yields no rows and total 0.
func (h ReadOnlyPosts) Page(ctx context.Context, offset, limit int) ([]PostSummary, int64, error) {
	rows, err := h.db.Query(ctx, stmtPostsBatch, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		out   []PostSummary
		total int64
	)
	for rows.Next() {
		var p PostSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.Author, &p.CommentCount, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ByID returns the post or ErrNotFound.
func (h ReadOnlyPosts) ByID(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := h.db.QueryRow(ctx, stmtGetPost, id).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt, &p.Author, &p.Edited)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// Comments returns the post's comments, oldest first.
func (h ReadOnlyPosts) Comments(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := h.db.Query(ctx, stmtPostComments, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.CreatedAt, &c.Author); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertUpdatePosts may insert and update posts and comments, never delete.
type InsertUpdatePosts struct{ db Querier }

func NewInsertUpdatePosts(db Querier) InsertUpdatePosts { return InsertUpdatePosts{db: db} }

// Create inserts a post owned by userID and returns its id.
func (h InsertUpdatePosts) Create(ctx context.Context, userID int64, title, content string) (int64, error) {
	var id int64
	err := withTx(ctx, h.db, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, stmtCreatePost, title, content, userID).Scan(&id)
	})
	return id, err
}

// Update rewrites a post and marks it edited. Only a post owned by userID is
// touched; the number of affected rows is returned.
func (h InsertUpdatePosts) Update(ctx context.Context, id, userID int64, title, content string) (int64, error) {
	var n int64
	err := withTx(ctx, h.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, stmtEditPost, title, content, id, userID)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

// AddComment inserts a comment by userID on postID and returns its id.
func (h InsertUpdatePosts) AddComment(ctx context.Context, postID, userID int64, content string) (int64, error) {
	var id int64
	err := withTx(ctx, h.db, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, stmtAddComment, postID, userID, content).Scan(&id)
	})
	return id, err
}

// DeletePosts may only delete posts.
type DeletePosts struct{ db Querier }

func NewDeletePosts(db Querier) DeletePosts { return DeletePosts{db: db} }

// Delete removes a post owned by userID and returns the number of rows removed.
func (h DeletePosts) Delete(ctx context.Context, id, userID int64) (int64, error) {
	var n int64
	err := withTx(ctx, h.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, stmtDeletePost, id, userID)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}
