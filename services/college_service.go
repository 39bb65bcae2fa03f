package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
	"github.com/sahilchouksey/degreefyd-api/services/media"
	"github.com/sahilchouksey/degreefyd-api/utils/validation"
)

var (
	// ErrInvalidInput is returned for bodies that are not a college document
	ErrInvalidInput = errors.New("invalid request body")
	// ErrUnsupportedMedia is returned for uploads that are not images
	ErrUnsupportedMedia = errors.New("only image uploads are allowed")
)

// ValidationError carries field level validation failures
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return validation.Describe(e.Err).Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// MediaKind names the college field an upload replaces
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaLogo  MediaKind = "logo"
)

// CollegeService owns every read and write of colleges
type CollegeService struct {
	store     database.CollegeStore
	cache     ListingCache
	media     media.Store
	validator *validation.Validator
	now       func() time.Time
}

// NewCollegeService creates a college service. cache and mediaStore may be nil.
func NewCollegeService(store database.CollegeStore, cache ListingCache, mediaStore media.Store) *CollegeService {
	if mediaStore == nil {
		mediaStore = media.Disabled{}
	}
	return &CollegeService{
		store:     store,
		cache:     cache,
		media:     mediaStore,
		validator: validation.NewValidator(),
		now:       time.Now,
	}
}

// timestamp is millisecond precision so every store orders ties identically
func (s *CollegeService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// List returns one page of published colleges
func (s *CollegeService) List(ctx context.Context, params catalog.Params) (catalog.Page, error) {
	d := catalog.Normalize(params)
	key := d.Key()

	var version string
	if s.cache != nil {
		cached, v, ok := s.cache.Get(ctx, key)
		if ok {
			return cached, nil
		}
		version = v
	}

	page, err := catalog.Run(ctx, s.store, catalog.Public, d)
	if err != nil {
		return catalog.Page{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, version, page)
	}
	return page, nil
}

// GetBySlug returns a published college
func (s *CollegeService) GetBySlug(ctx context.Context, slug string) (*model.College, error) {
	college, ok, err := catalog.Lookup(ctx, s.store, catalog.Public, catalog.SlugIs{Slug: slug})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, database.ErrNotFound
	}
	return &college, nil
}

// GetByID returns a college in any status
func (s *CollegeService) GetByID(ctx context.Context, id string) (*model.College, error) {
	return s.store.GetByID(ctx, id)
}

// ListAll returns every college, newest first
func (s *CollegeService) ListAll(ctx context.Context) ([]model.College, error) {
	return catalog.All(ctx, s.store, catalog.Admin)
}

// Create stores a new college from a partial document
func (s *CollegeService) Create(ctx context.Context, input model.College) (*model.College, error) {
	college := input.Clone()
	college.ID = ""
	sanitize(&college)
	college.Normalize()
	if err := s.validator.ValidateStruct(college); err != nil {
		return nil, &ValidationError{Err: err}
	}

	now := s.timestamp()
	college.CreatedAt = now
	college.UpdatedAt = now
	college.EnsureID()

	if err := s.store.Create(ctx, &college); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Info().Str("college_id", college.ID).Str("slug", college.Slug).Msg("college created")
	return &college, nil
}

// Update applies a replace style update: top level fields present in body
// replace the stored value, absent ones are kept. id and createdAt never
// change.
func (s *CollegeService) Update(ctx context.Context, id string, body []byte) (*model.College, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	college, err := mergeCollege(*existing, body)
	if err != nil {
		return nil, err
	}
	college.ID = existing.ID
	college.CreatedAt = existing.CreatedAt
	sanitize(&college)
	college.Normalize()
	if err := s.validator.ValidateStruct(college); err != nil {
		return nil, &ValidationError{Err: err}
	}
	college.UpdatedAt = s.timestamp()

	if err := s.store.Update(ctx, &college); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &college, nil
}

// mergeCollege overlays the top level keys of body onto existing. Decoding
// into a fresh value keeps nested arrays from being merged element-wise.
func mergeCollege(existing model.College, body []byte) (model.College, error) {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(body, &patch); err != nil {
		return model.College{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	raw, err := json.Marshal(existing)
	if err != nil {
		return model.College{}, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &merged); err != nil {
		return model.College{}, err
	}
	for k, v := range patch {
		merged[k] = v
	}

	raw, err = json.Marshal(merged)
	if err != nil {
		return model.College{}, err
	}
	var out model.College
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.College{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return out, nil
}

// Delete removes a college and everything nested in it
func (s *CollegeService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	log.Info().Str("college_id", id).Msg("college deleted")
	return nil
}

// ToggleStatus flips a college between draft and published
func (s *CollegeService) ToggleStatus(ctx context.Context, id string) (*model.College, error) {
	college, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	college.Status = college.Status.Toggle()
	college.UpdatedAt = s.timestamp()

	if err := s.store.Update(ctx, college); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return college, nil
}

// Stats returns the dashboard counters
func (s *CollegeService) Stats(ctx context.Context) (model.DashboardStats, error) {
	return s.store.Stats(ctx)
}

// UploadMedia stores an image and points the college's image or logo at it
func (s *CollegeService) UploadMedia(ctx context.Context, id string, kind MediaKind, filename, contentType string, body io.ReadSeeker) (*model.College, error) {
	if kind != MediaImage && kind != MediaLogo {
		return nil, fmt.Errorf("%w: unknown media kind %q", ErrInvalidInput, kind)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedMedia
	}

	college, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, fmt.Sprintf("colleges/%s/%s", college.ID, kind), filename, body, contentType)
	if err != nil {
		return nil, err
	}

	if kind == MediaLogo {
		college.Logo = url
	} else {
		college.Image = url
	}
	college.UpdatedAt = s.timestamp()

	if err := s.store.Update(ctx, college); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return college, nil
}

// WarmCache precomputes the first page of every public sort order
func (s *CollegeService) WarmCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	keys := []catalog.SortKey{catalog.SortRanking, catalog.SortRating, catalog.SortFeesLow, catalog.SortFeesHigh, catalog.SortPlacement}
	for _, key := range keys {
		if _, err := s.List(ctx, catalog.Params{Sort: string(key)}); err != nil {
			return 0, fmt.Errorf("warm %s: %w", key, err)
		}
	}
	return len(keys), nil
}

func (s *CollegeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func sanitize(c *model.College) {
	for _, f := range []*string{
		&c.Name, &c.Slug, &c.Description, &c.ShortDescription, &c.Image, &c.Logo,
		&c.Location, &c.City, &c.State, &c.Accreditation,
	} {
		*f = validation.SanitizeString(*f)
	}
}
