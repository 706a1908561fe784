package gateway

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Statement names. Handles pass these to pgx in place of SQL text; pgx runs
// the statement prepared under that name on the current connection.
const (
	stmtUserExists   = "user_exists_check"
	stmtSelectUser   = "select_user"
	stmtInsertUser   = "insert_new_user"
	stmtActiveSess   = "get_active_session"
	stmtInsertSess   = "new_session"
	stmtDeleteSess   = "delete_session"
	stmtPostsBatch   = "get_posts_batch"
	stmtGetPost      = "get_post"
	stmtPostComments = "get_post_comments"
	stmtCreatePost   = "create_new_post"
	stmtEditPost     = "edit_post"
	stmtAddComment   = "create_comment"
	stmtDeletePost   = "delete_post"
)

type statement struct {
	name string
	sql  string
}

// statements lists, per privilege class, the only SQL that class's pool may run.
var statements = map[Class][]statement{
	ClassReadOnlyUsers: {
		{stmtUserExists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`},
		{stmtSelectUser, `SELECT id, name, email, password FROM users WHERE email = $1 LIMIT 1`},
	},
	ClassInsertUsers: {
		{stmtInsertUser, `INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`},
	},
	ClassReadOnlySessions: {
		{stmtActiveSess, `
			SELECT user_id, session_id, created_at
			FROM sessions
			WHERE session_id = $1
			  AND created_at >= $2
			LIMIT 1`},
	},
	ClassInsertSessions: {
		{stmtInsertSess, `INSERT INTO sessions (user_id, session_id, created_at) VALUES ($1, $2, $3)`},
	},
	ClassDeleteSessions: {
		{stmtDeleteSess, `DELETE FROM sessions WHERE session_id = $1`},
	},
	ClassReadOnlyPosts: {
		{stmtPostsBatch, `
			SELECT p.id,
			       p.title,
			       p.content,
			       p.created_at,
			       u.name,
			       COUNT(c.id)                   AS comment_count,
			       (SELECT count(*) FROM posts)  AS total_count
			FROM posts p
			JOIN users u ON p.user_id = u.id
			LEFT JOIN comments c ON p.id = c.post_id
			GROUP BY p.id, u.name, p.created_at
			ORDER BY p.created_at DESC
			OFFSET $1 LIMIT $2`},
		{stmtGetPost, `
			SELECT p.id, p.user_id, p.title, p.content, p.created_at, u.name, p.edited
			FROM posts p
			JOIN users u ON u.id = p.user_id
			WHERE p.id = $1`},
		{stmtPostComments, `
			SELECT c.id, c.content, c.created_at, u.name
			FROM comments c
			JOIN users u ON u.id = c.user_id
			WHERE c.post_id = $1
			ORDER BY c.created_at, c.id`},
	},
	ClassInsertUpdatePosts: {
		{stmtCreatePost, `INSERT INTO posts (title, content, user_id) VALUES ($1, $2, $3) RETURNING id`},
		{stmtEditPost, `
			UPDATE posts
			SET title = $1,
			    content = $2,
			    edited = true
			WHERE id = $3
			  AND user_id = $4`},
		{stmtAddComment, `INSERT INTO comments (post_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`},
	},
	ClassDeletePosts: {
		{stmtDeletePost, `DELETE FROM posts WHERE id = $1 AND user_id = $2`},
	},
}

// prepareFor returns a pgxpool AfterConnect hook that prepares class's statements.
func prepareFor(c Class) func(context.Context, *pgx.Conn) error {
	return func(ctx context.Context, conn *pgx.Conn) error {
		for _, st := range statements[c] {
			if _, err := conn.Prepare(ctx, st.name, st.sql); err != nil {
				return fmt.Errorf("gateway: prepare %s for %s: %w", st.name, c, err)
			}
		}
		return nil
	}
}
