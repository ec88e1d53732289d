package services

import (
	"context"
	"errors"

	"github.com/mingle-social/apiserver/internal/store"
	"github.com/mingle-social/apiserver/types"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Post, int, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// PostService encapsulates post use-cases. Mutations take the acting
// user's id and refuse to touch posts the actor does not own.
type PostService struct {
	repo PostRepository
}

func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

func (s *PostService) List(ctx context.Context, offset, limit int) ([]types.Post, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *PostService) ListByOwner(ctx context.Context, ownerID int) ([]types.Post, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Post{}, ErrPostNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, ownerID int, text, image string) (types.Post, error) {
	return s.repo.Create(ctx, types.Post{
		OwnerID: ownerID,
		Text:    text,
		Image:   image,
	})
}

// Update rewrites the post body and image. Only the owner may update;
// empty text keeps the current body.
func (s *PostService) Update(ctx context.Context, actorID, postID int, text, image *string) (types.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return types.Post{}, err
	}
	if post.OwnerID != actorID {
		return types.Post{}, ErrForbidden
	}

	if text != nil {
		post.Text = *text
	}
	if image != nil {
		post.Image = *image
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Post{}, ErrPostNotFound
		}
		return types.Post{}, err
	}
	return updated, nil
}

// Delete removes the post and, through the storage cascade, every
// reaction row referencing it. Only the owner may delete.
func (s *PostService) Delete(ctx context.Context, actorID, postID int) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}
