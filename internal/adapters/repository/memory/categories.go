package memory

import (
	"context"
	"sort"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) Create(_ context.Context, category models.Category) (models.Category, error) {
	if err := r.s.lock(); err != nil {
		return models.Category{}, err
	}
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Slug == category.Slug {
			return models.Category{}, domain.ErrConflict
		}
	}
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.Subcategories = append([]string(nil), category.Subcategories...)
	r.s.categories = append(r.s.categories, category)
	return category, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]models.Category, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	out := make([]models.Category, len(r.s.categories))
	copy(out, r.s.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
