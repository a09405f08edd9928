package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// WellKnownCategories is the fixed list Seed installs on a fresh table.
var WellKnownCategories = []string{
	"Development",
	"Business",
	"Design",
	"Marketing",
	"IT & Software",
	"Personal Development",
	"Photography",
	"Music",
}

// CategoryRepository owns the CATEGORY#<id>/METADATA items and the GSI3
// name-ordered listing.
type CategoryRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewCategoryRepository creates a category repository.
func NewCategoryRepository(st store.Store, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{store: st, logger: logger}
}

// Create assigns an ID and writes the category with its GSI3 name key.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.CreatedAt = schema.FormatTime(time.Now())

	item, err := marshalEntity(category, schema.EntityCategory)
	if err != nil {
		return apperrors.NewDatabaseError("category.create", err)
	}
	item[schema.AttrPK] = s(schema.CategoryPK(category.ID))
	item[schema.AttrSK] = s(schema.CategorySK())
	item[schema.AttrGSI3PK] = s(schema.CategoryGSI3PK())
	item[schema.AttrGSI3SK] = s(schema.CategoryGSI3SK(category.Name))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("category already exists")
		}
		return apperrors.NewDatabaseError("category.create", err)
	}
	return nil
}

// FindByID is a point get, or NotFound.
func (r *CategoryRepository) FindByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	item, err := r.store.Get(ctx, schema.CategoryPK(categoryID), schema.CategorySK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("category.findById", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("category")
	}
	var category domain.Category
	if err := unmarshalEntity(item, &category); err != nil {
		return nil, apperrors.NewDatabaseError("category.findById", err)
	}
	return &category, nil
}

// FindAll lists every category ascending by name off GSI3.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	var startKey store.Item
	for {
		out, err := r.store.Query(ctx, store.QueryInput{
			PK:        schema.CategoryGSI3PK(),
			IndexName: schema.IndexGSI3,
			Forward:   true,
			StartKey:  startKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("category.findAll", err)
		}
		for _, item := range out.Items {
			var category domain.Category
			if err := unmarshalEntity(item, &category); err != nil {
				r.logger.Warn("skipping unparsable category item", zap.Error(err))
				continue
			}
			categories = append(categories, &category)
		}
		if out.LastKey == nil {
			return categories, nil
		}
		startKey = out.LastKey
	}
}

// Seed bulk-creates the well-known categories in one batched write. Category
// IDs are deterministic slugs so reseeding overwrites rather than duplicates.
func (r *CategoryRepository) Seed(ctx context.Context) error {
	now := schema.FormatTime(time.Now())
	ops := make([]store.WriteOp, 0, len(WellKnownCategories))
	for _, name := range WellKnownCategories {
		category := &domain.Category{ID: slug(name), Name: name, CreatedAt: now}
		item, err := marshalEntity(category, schema.EntityCategory)
		if err != nil {
			return apperrors.NewDatabaseError("category.seed", err)
		}
		item[schema.AttrPK] = s(schema.CategoryPK(category.ID))
		item[schema.AttrSK] = s(schema.CategorySK())
		item[schema.AttrGSI3PK] = s(schema.CategoryGSI3PK())
		item[schema.AttrGSI3SK] = s(schema.CategoryGSI3SK(category.Name))
		ops = append(ops, store.WriteOp{Put: item})
	}

	if err := r.store.BatchWrite(ctx, ops); err != nil {
		return apperrors.NewDatabaseError("category.seed", err)
	}
	r.logger.Info("seeded categories", zap.Int("count", len(ops)))
	return nil
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
