package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

const (
	// cheapest course fee; NULL when the college has no courses
	minFeeSQL          = "(SELECT MIN((c->>'fees')::numeric) FROM jsonb_array_elements(COALESCE(courses, '[]'::jsonb)) AS c)"
	courseFeeExistsSQL = "EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(courses, '[]'::jsonb)) AS c WHERE (c->>'fees')::numeric %s ?)"
	canonicalOrderSQL  = "created_at ASC, id ASC"
)

type gormColleges struct {
	db *gorm.DB
}

// applyFilter translates catalog predicates into WHERE clauses
func applyFilter(tx *gorm.DB, filter catalog.Filter) (*gorm.DB, error) {
	for _, p := range filter {
		switch p := p.(type) {
		case catalog.StatusIs:
			tx = tx.Where("status = ?", p.Status)
		case catalog.Search:
			like := "%" + escapeLike(p.Term) + "%"
			tx = tx.Where("(name ILIKE ? OR city ILIKE ? OR state ILIKE ?)", like, like, like)
		case catalog.CityIn:
			lowered := make([]string, len(p.Cities))
			for i, city := range p.Cities {
				lowered[i] = strings.ToLower(city)
			}
			tx = tx.Where("LOWER(city) = ANY(?)", pq.Array(lowered))
		case catalog.TypeIn:
			tx = tx.Where("type IN ?", p.Types)
		case catalog.FeeAtLeast:
			tx = tx.Where(fmt.Sprintf(courseFeeExistsSQL, ">="), p.Fee)
		case catalog.FeeAtMost:
			tx = tx.Where(fmt.Sprintf(courseFeeExistsSQL, "<="), p.Fee)
		case catalog.SlugIs:
			tx = tx.Where("slug = ?", p.Slug)
		default:
			return nil, fmt.Errorf("postgres: unsupported predicate %T", p)
		}
	}
	return tx, nil
}

// orderSQL renders a sort key as an ORDER BY clause
func orderSQL(key catalog.SortKey) string {
	switch key {
	case catalog.SortRating:
		return "rating DESC, " + canonicalOrderSQL
	case catalog.SortFeesLow:
		return minFeeSQL + " ASC NULLS LAST, " + canonicalOrderSQL
	case catalog.SortFeesHigh:
		return minFeeSQL + " DESC NULLS LAST, " + canonicalOrderSQL
	case catalog.SortPlacement:
		return "COALESCE((placement->>'percentage')::numeric, 0) DESC, " + canonicalOrderSQL
	case catalog.SortNewest:
		return "created_at DESC, id DESC"
	default:
		return "ranking ASC, " + canonicalOrderSQL
	}
}

// escapeLike makes a term match literally inside an ILIKE pattern
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func (g *gormColleges) Count(ctx context.Context, filter catalog.Filter) (int64, error) {
	tx, err := applyFilter(g.db.WithContext(ctx).Model(&model.College{}), filter)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (g *gormColleges) Find(ctx context.Context, filter catalog.Filter, key catalog.SortKey, window catalog.Window) ([]model.College, error) {
	tx, err := applyFilter(g.db.WithContext(ctx).Model(&model.College{}), filter)
	if err != nil {
		return nil, err
	}
	tx = tx.Order(orderSQL(key)).Offset(window.Offset)
	if window.Limit > 0 {
		tx = tx.Limit(window.Limit)
	}

	colleges := []model.College{}
	if err := tx.Find(&colleges).Error; err != nil {
		return nil, err
	}
	return colleges, nil
}

func (g *gormColleges) GetByID(ctx context.Context, id string) (*model.College, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var college model.College
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&college).Error; err != nil {
		return nil, translateGORMError(err, ErrDuplicateSlug)
	}
	return &college, nil
}

func (g *gormColleges) Create(ctx context.Context, college *model.College) error {
	return translateGORMError(g.db.WithContext(ctx).Create(college).Error, ErrDuplicateSlug)
}

func (g *gormColleges) Update(ctx context.Context, college *model.College) error {
	if !isUUID(college.ID) {
		return ErrNotFound
	}
	result := g.db.WithContext(ctx).Model(college).Select("*").Omit("id", "created_at").Updates(college)
	if result.Error != nil {
		return translateGORMError(result.Error, ErrDuplicateSlug)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *gormColleges) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	result := g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.College{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *gormColleges) Stats(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := g.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_colleges,
			COUNT(*) FILTER (WHERE status = ?) AS published,
			COUNT(*) FILTER (WHERE status <> ?) AS drafts,
			COALESCE(SUM(jsonb_array_length(COALESCE(courses, '[]'::jsonb))), 0) AS total_courses
		FROM colleges`,
		model.CollegeStatusPublished, model.CollegeStatusPublished,
	).Scan(&stats).Error
	return stats, err
}
