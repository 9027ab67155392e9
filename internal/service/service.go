// Package service holds the five guitar operations.
//
// It sits between the entry points (Lambda handlers, HTTP handlers) and
// the repository. There is no business logic to speak of: each operation
// is one repository call, and faults come back exactly as the store
// raised them.
package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/deppfellow/guitars-serverless/internal/repository"
)

// GuitarService implements List, GetByID, Create, Update and Delete.
type GuitarService struct {
	repo *repository.GuitarRepository
}

func NewGuitarService(repo *repository.GuitarRepository) *GuitarService {
	return &GuitarService{repo: repo}
}

// List returns every stored guitar in no particular order. A nil slice
// from the store is passed through as "no data".
func (s *GuitarService) List(ctx context.Context) ([]model.Guitar, error) {
	return s.repo.List(ctx)
}

// GetByID looks up one guitar. found is false, with a nil error, when no
// guitar has that id.
func (s *GuitarService) GetByID(ctx context.Context, id int) (guitar model.Guitar, found bool, err error) {
	return s.repo.GetByID(ctx, id)
}

// Create writes g whether or not its id is already taken and returns it
// as submitted.
func (s *GuitarService) Create(ctx context.Context, g model.Guitar) (model.Guitar, error) {
	if err := s.repo.Save(ctx, g); err != nil {
		return model.Guitar{}, err
	}
	return g, nil
}

// Update is the same unconditional write as Create. Fields missing from
// g are not merged from the stored record.
func (s *GuitarService) Update(ctx context.Context, g model.Guitar) (model.Guitar, error) {
	if err := s.repo.Save(ctx, g); err != nil {
		return model.Guitar{}, err
	}
	return g, nil
}

// Delete removes the guitar with id, if there is one, and returns a
// confirmation naming the id.
func (s *GuitarService) Delete(ctx context.Context, id int) (string, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", err
	}
	return DeletedMessage(id), nil
}

// DeletedMessage is the confirmation Delete returns.
func DeletedMessage(id int) string {
	return fmt.Sprintf("Guitar %d Deleted", id)
}
