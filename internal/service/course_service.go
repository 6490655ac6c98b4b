package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/krs-admin-api/internal/models"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

const courseOptionsCacheKey = "krs:options:courses"

type courseRepository interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// CourseService serves the course option list consumed by the UI.
type CourseService struct {
	repo     courseRepository
	cache    optionCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCourseService constructs the course service. cache and metrics may be nil.
func NewCourseService(repo courseRepository, cache optionCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &CourseService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// List returns all courses, served from cache when possible.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	if s.cache != nil {
		var cached []models.Course
		err := s.cache.Get(ctx, courseOptionsCacheKey, &cached)
		s.metrics.RecordCacheLookup(err == nil)
		if err == nil {
			return cached, nil
		}
		if err != appErrors.ErrCacheMiss {
			s.logger.Warn("course options cache read failed", zap.Error(err))
		}
	}

	courses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, courseOptionsCacheKey, courses, s.cacheTTL); err != nil {
			s.logger.Warn("course options cache write failed", zap.Error(err))
		}
	}
	return courses, nil
}
