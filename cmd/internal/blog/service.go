package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"quill/cmd/internal/gateway"
)

const (
	// PageSize is the number of posts per home page.
	PageSize = 10
	// PreviewRunes is where home page content is cut.
	PreviewRunes = 400

	maxPage = math.MaxInt32 / PageSize
)

// EventKind names a change to the post set.
type EventKind string

const (
	EventPostCreated    EventKind = "post.created"
	EventPostUpdated    EventKind = "post.updated"
	EventPostDeleted    EventKind = "post.deleted"
	EventCommentCreated EventKind = "comment.created"
)

// Notifier is told about every successful write.
type Notifier interface {
	Notify(kind EventKind, postID int64, title string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind EventKind, postID int64, title string)

func (f NotifierFunc) Notify(kind EventKind, postID int64, title string) { f(kind, postID, title) }

type noopNotifier struct{}

func (noopNotifier) Notify(EventKind, int64, string) {}

// Home is one page of the listing.
type Home struct {
	Rows       []gateway.PostSummary
	Total      int64 // posts across all pages
	Page       int
	PagesCount int
}

// Next returns the following page number, or 0 on the last page.
func (h Home) Next() int {
	if h.Page < h.PagesCount {
		return h.Page + 1
	}
	return 0
}

// Previous returns the preceding page number, or 0 on the first page.
func (h Home) Previous() int {
	if h.Page-1 > 0 {
		return h.Page - 1
	}
	return 0
}

// Service implements post and comment operations with ownership rules.
type Service struct {
	store  Store
	notify Notifier
	log    *slog.Logger
}

// NewService builds a Service. A nil notifier drops events.
func NewService(log *slog.Logger, store Store, notify Notifier) *Service {
	if log == nil {
		log = slog.Default()
	}
	if notify == nil {
		notify = noopNotifier{}
	}
	return &Service{store: store, notify: notify, log: log}
}

// ParsePage reads the ?page= value: leading digits are used, anything
// unparsable or zero is page 1, and a negative page counts as positive.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw != "" && (raw[0] == '-' || raw[0] == '+') {
		raw = raw[1:]
	}
	n := 0
	for i := 0; i < len(raw) && raw[i] >= '0' && raw[i] <= '9'; i++ {
		n = n*10 + int(raw[i]-'0')
		if n > maxPage {
			n = maxPage
			break
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// Home returns page (1-based) of posts, newest first, with previews cut at
// PreviewRunes. An empty first page is a valid empty home; an empty later
// page is ErrPageOutOfRange.
func (s *Service) Home(ctx context.Context, page int) (Home, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	rows, total, err := s.store.Page(ctx, (page-1)*PageSize, PageSize)
	if err != nil {
		return Home{}, fmt.Errorf("blog: home page %d: %w", page, err)
	}
	if len(rows) == 0 {
		if page == 1 {
			return Home{Page: 1}, nil
		}
		return Home{}, ErrPageOutOfRange
	}

	for i := range rows {
		rows[i].Content = Preview(rows[i].Content, PreviewRunes)
	}
	return Home{
		Rows:       rows,
		Total:      total,
		Page:       page,
		PagesCount: int((total + PageSize - 1) / PageSize),
	}, nil
}

// Preview cuts s after limit runes and marks the cut with "...".
func Preview(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// Post returns a post and its comments.
func (s *Service) Post(ctx context.Context, id int64) (gateway.Post, []gateway.Comment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return gateway.Post{}, nil, err
	}
	comments, err := s.store.Comments(ctx, id)
	if err != nil {
		return gateway.Post{}, nil, fmt.Errorf("blog: comments of %d: %w", id, err)
	}
	return p, comments, nil
}

// Get returns a post without comments.
func (s *Service) Get(ctx context.Context, id int64) (gateway.Post, error) {
	if id <= 0 {
		return gateway.Post{}, ErrNotFound
	}
	p, err := s.store.Post(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return gateway.Post{}, err
		}
		return gateway.Post{}, fmt.Errorf("blog: post %d: %w", id, err)
	}
	return p, nil
}

// ValidatePost checks the editor fields.
func ValidatePost(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Message: MsgTitleEmpty}
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Message: MsgContentEmpty}
	}
	return nil
}

// Create stores a new post owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, title, content string) (int64, error) {
	if err := ValidatePost(title, content); err != nil {
		return 0, err
	}
	title = strings.TrimSpace(title)
	id, err := s.store.Create(ctx, userID, title, content)
	if err != nil {
		return 0, fmt.Errorf("blog: create post: %w", err)
	}
	s.notify.Notify(EventPostCreated, id, title)
	return id, nil
}

// Update rewrites a post. A post not owned by userID is left untouched and
// the attempt is only logged.
func (s *Service) Update(ctx context.Context, id, userID int64, title, content string) error {
	if err := ValidatePost(title, content); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	n, err := s.store.Update(ctx, id, userID, title, content)
	if err != nil {
		return fmt.Errorf("blog: update post %d: %w", id, err)
	}
	if n == 0 {
		s.log.Warn("blog.post.update.noop", "post_id", id, "user_id", userID)
		return nil
	}
	s.notify.Notify(EventPostUpdated, id, title)
	return nil
}

// Delete removes a post owned by userID; anything else is a logged no-op.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	n, err := s.store.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("blog: delete post %d: %w", id, err)
	}
	if n == 0 {
		s.log.Warn("blog.post.delete.noop", "post_id", id, "user_id", userID)
		return nil
	}
	s.notify.Notify(EventPostDeleted, id, "")
	return nil
}

// Comment adds a comment by userID to an existing post.
func (s *Service) Comment(ctx context.Context, postID, userID int64, content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, &ValidationError{Message: MsgCommentEmpty}
	}
	p, err := s.Get(ctx, postID)
	if err != nil {
		return 0, err
	}
	id, err := s.store.AddComment(ctx, postID, userID, content)
	if err != nil {
		return 0, fmt.Errorf("blog: comment on %d: %w", postID, err)
	}
	s.notify.Notify(EventCommentCreated, postID, p.Title)
	return id, nil
}
