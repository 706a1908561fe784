package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	"quill/cmd/internal/gateway"
)

// memStore is an in-memory Store with the same owner filtering as SQL.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	posts    map[int64]gateway.Post
	comments map[int64][]gateway.Comment
	names    map[int64]string
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		posts:    map[int64]gateway.Post{},
		comments: map[int64][]gateway.Comment{},
		names:    map[int64]string{1: "Ada", 2: "Grace"},
	}
}

func (m *memStore) seed(userID int64, n int) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		m.nextID++
		m.posts[m.nextID] = gateway.Post{
			ID: m.nextID, UserID: userID, Title: "post", Content: "body",
			Author: m.names[userID], CreatedAt: base.Add(time.Duration(m.nextID) * time.Minute),
		}
	}
}

func (m *memStore) Page(_ context.Context, offset, limit int) ([]gateway.PostSummary, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	all := make([]gateway.Post, 0, len(m.posts))
	for _, p := range m.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	var out []gateway.PostSummary
	for i := offset; i < len(all) && i < offset+limit; i++ {
		p := all[i]
		out = append(out, gateway.PostSummary{
			ID: p.ID, Title: p.Title, Content: p.Content, Author: p.Author,
			CreatedAt: p.CreatedAt, CommentCount: int64(len(m.comments[p.ID])),
		})
	}
	if len(out) == 0 {
		return nil, 0, nil
	}
	return out, int64(len(all)), nil
}

func (m *memStore) Post(_ context.Context, id int64) (gateway.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return gateway.Post{}, m.err
	}
	p, ok := m.posts[id]
	if !ok {
		return gateway.Post{}, ErrNotFound
	}
	return p, nil
}

func (m *memStore) Comments(_ context.Context, postID int64) ([]gateway.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gateway.Comment(nil), m.comments[postID]...), nil
}

func (m *memStore) Create(_ context.Context, userID int64, title, content string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	m.posts[m.nextID] = gateway.Post{
		ID: m.nextID, UserID: userID, Title: title, Content: content,
		Author: m.names[userID], CreatedAt: time.Now(),
	}
	return m.nextID, nil
}

func (m *memStore) Update(_ context.Context, id, userID int64, title, content string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	p.Title, p.Content, p.Edited = title, content, true
	m.posts[id] = p
	return 1, nil
}

func (m *memStore) AddComment(_ context.Context, postID, userID int64, content string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.comments[postID] = append(m.comments[postID], gateway.Comment{
		ID: m.nextID, Content: content, Author: m.names[userID], CreatedAt: time.Now(),
	})
	return m.nextID, nil
}

func (m *memStore) Delete(_ context.Context, id, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	delete(m.posts, id)
	delete(m.comments, id)
	return 1, nil
}

type recordedEvent struct {
	kind  EventKind
	id    int64
	title string
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Notify(kind EventKind, postID int64, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{kind, postID, title})
}
