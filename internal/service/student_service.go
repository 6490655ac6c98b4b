package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/krs-admin-api/internal/models"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
)

const studentOptionsCacheKey = "krs:options:students"

type studentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type optionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StudentService serves the student option list consumed by the UI.
type StudentService struct {
	repo     studentRepository
	cache    optionCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewStudentService constructs the student service. cache and metrics may be nil.
func NewStudentService(repo studentRepository, cache optionCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &StudentService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// List returns all students, served from cache when possible.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	if s.cache != nil {
		var cached []models.Student
		err := s.cache.Get(ctx, studentOptionsCacheKey, &cached)
		s.metrics.RecordCacheLookup(err == nil)
		if err == nil {
			return cached, nil
		}
		if err != appErrors.ErrCacheMiss {
			s.logger.Warn("student options cache read failed", zap.Error(err))
		}
	}

	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, studentOptionsCacheKey, students, s.cacheTTL); err != nil {
			s.logger.Warn("student options cache write failed", zap.Error(err))
		}
	}
	return students, nil
}
