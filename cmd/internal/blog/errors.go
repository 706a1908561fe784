package blog

import "errors"

var (
	// ErrNotFound is returned when a post does not exist.
	ErrNotFound = errors.New("blog: post not found")
	// ErrPageOutOfRange is returned for an empty page past the first.
	ErrPageOutOfRange = errors.New("blog: page out of range")
)

const (
	MsgTitleEmpty      = "Title cannot be empty"
	MsgContentEmpty    = "Post body cannot be empty"
	MsgCommentEmpty    = "Comment cannot be empty"
	MsgPageOutOfRange  = "The page number is out of range"
	MsgInvalidPostID   = "Invalid post ID has been queried"
	msgPostNotFoundFmt = "Post %d does not exist"
)

// ValidationError is an editor or comment form fault.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "blog: " + e.Message }
