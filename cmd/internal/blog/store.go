package blog

import (
	"context"
	"errors"

	"quill/cmd/internal/gateway"
)

// Store is the post persistence the service needs.
type Store interface {
	Page(ctx context.Context, offset, limit int) ([]gateway.PostSummary, int64, error)
	Post(ctx context.Context, id int64) (gateway.Post, error)
	Comments(ctx context.Context, postID int64) ([]gateway.Comment, error)
	Create(ctx context.Context, userID int64, title, content string) (int64, error)
	Update(ctx context.Context, id, userID int64, title, content string) (int64, error)
	AddComment(ctx context.Context, postID, userID int64, content string) (int64, error)
	Delete(ctx context.Context, id, userID int64) (int64, error)
}

// GatewayStore splits Store across the three posts privilege handles.
type GatewayStore struct {
	read  gateway.ReadOnlyPosts
	write gateway.InsertUpdatePosts
	del   gateway.DeletePosts
}

func NewGatewayStore(p *gateway.Pools) *GatewayStore {
	return &GatewayStore{read: p.ReadOnlyPosts(), write: p.InsertUpdatePosts(), del: p.DeletePosts()}
}

func (s *GatewayStore) Page(ctx context.Context, offset, limit int) ([]gateway.PostSummary, int64, error) {
	return s.read.Page(ctx, offset, limit)
}

func (s *GatewayStore) Post(ctx context.Context, id int64) (gateway.Post, error) {
	p, err := s.read.ByID(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) {
		return gateway.Post{}, ErrNotFound
	}
	return p, err
}

func (s *GatewayStore) Comments(ctx context.Context, postID int64) ([]gateway.Comment, error) {
	return s.read.Comments(ctx, postID)
}

func (s *GatewayStore) Create(ctx context.Context, userID int64, title, content string) (int64, error) {
	return s.write.Create(ctx, userID, title, content)
}

func (s *GatewayStore) Update(ctx context.Context, id, userID int64, title, content string) (int64, error) {
	return s.write.Update(ctx, id, userID, title, content)
}

func (s *GatewayStore) AddComment(ctx context.Context, postID, userID int64, content string) (int64, error) {
	return s.write.AddComment(ctx, postID, userID, content)
}

func (s *GatewayStore) Delete(ctx context.Context, id, userID int64) (int64, error) {
	return s.del.Delete(ctx, id, userID)
}
