package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rosterly/rosterly-backend/internal/config"
	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rs/zerolog"
)

// DashboardStats consolidates all aggregate views for the dashboard.
// Distributions are computed over active records only, so their counts sum
// to ActiveStudents.
type DashboardStats struct {
	TotalStudents          int                           `json:"total_students"`
	ActiveStudents         int                           `json:"active_students"`
	ArchivedStudents       int                           `json:"archived_students"`
	AverageAge             float64                       `json:"average_age"`
	AveragePerformance     float64                       `json:"average_performance"`
	GradeDistribution      map[model.Grade]int           `json:"grade_distribution"`
	BandDistribution       map[model.PerformanceBand]int `json:"band_distribution"`
	CourseDistribution     map[string]int                `json:"course_distribution"`
	DepartmentDistribution map[string]int                `json:"department_distribution"`
	PerformanceTrend       string                        `json:"performance_trend,omitempty"`
	TopPerformer           *model.Student                `json:"top_performer,omitempty"`
	RecentAdditions        int                           `json:"recent_additions"`
}

// PerformanceAnalysis is the drill-down block of the dashboard.
type PerformanceAnalysis struct {
	MaxPerformance    float64 `json:"max_performance"`
	MinPerformance    float64 `json:"min_performance"`
	MedianPerformance float64 `json:"median_performance"`
	PassRate          float64 `json:"pass_rate"`
}

// PublicStats is the reduced aggregate exposed without authentication.
type PublicStats struct {
	TotalStudents  int `json:"total_students"`
	ActiveStudents int `json:"active_students"`
}

const passThreshold = 60

// recentWindow is the lookback used for the trend and recent-additions count.
const recentWindow = 30 * 24 * time.Hour

// AnalyticsService derives aggregate views from the current collection.
// Results are pure functions of collection state; Redis only caches them
// (nil client disables caching).
type AnalyticsService struct {
	repo *repository.StudentRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo *repository.StudentRepository, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo: repo,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "analytics_service").Logger(),
	}
}

// Dashboard returns the full dashboard statistics, from cache when fresh.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	if ok := s.fromCache(ctx, config.CacheKey.DashboardStatsKey(), &cached); ok {
		return &cached, nil
	}

	stats := s.computeDashboard()
	s.toCache(ctx, config.CacheKey.DashboardStatsKey(), stats)
	return stats, nil
}

// Performance returns the performance analysis block, from cache when fresh.
func (s *AnalyticsService) Performance(ctx context.Context) (*PerformanceAnalysis, error) {
	var cached PerformanceAnalysis
	if ok := s.fromCache(ctx, config.CacheKey.PerformanceAnalysisKey(), &cached); ok {
		return &cached, nil
	}

	analysis := s.computePerformance()
	s.toCache(ctx, config.CacheKey.PerformanceAnalysisKey(), analysis)
	return analysis, nil
}

// Public returns the unauthenticated summary counts. Never cached in Redis;
// the HTTP layer sets a short Cache-Control instead.
func (s *AnalyticsService) Public(ctx context.Context) *PublicStats {
	total, active := s.repo.Count()
	return &PublicStats{TotalStudents: total, ActiveStudents: active}
}

// Invalidate drops the cached aggregates. Called after every mutation.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	keys := []string{
		config.CacheKey.DashboardStatsKey(),
		config.CacheKey.PerformanceAnalysisKey(),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Stats cache invalidation failed")
	}
}

func (s *AnalyticsService) computeDashboard() *DashboardStats {
	total, _ := s.repo.Count()
	active := s.repo.List(model.StudentFilter{})

	stats := &DashboardStats{
		TotalStudents:          total,
		ActiveStudents:         len(active),
		ArchivedStudents:       total - len(active),
		GradeDistribution:      make(map[model.Grade]int, len(model.Grades)),
		BandDistribution:       make(map[model.PerformanceBand]int, len(model.PerformanceBands)),
		CourseDistribution:     make(map[string]int),
		DepartmentDistribution: make(map[string]int),
	}
	for _, g := range model.Grades {
		stats.GradeDistribution[g] = 0
	}
	for _, b := range model.PerformanceBands {
		stats.BandDistribution[b] = 0
	}

	if len(active) == 0 {
		return stats
	}

	var ageSum, perfSum float64
	var top *model.Student
	cutoff := time.Now().Add(-recentWindow)
	var recentSum float64
	recentCount := 0

	for i := range active {
		st := &active[i]
		ageSum += float64(st.Age)
		perfSum += st.Performance

		stats.GradeDistribution[st.Grade]++
		stats.BandDistribution[st.Band()]++

		course := st.Course
		if course == "" {
			course = "Undeclared"
		}
		department := st.Department
		if department == "" {
			department = "Undeclared"
		}
		stats.CourseDistribution[course]++
		stats.DepartmentDistribution[department]++

		if top == nil || st.Performance > top.Performance {
			top = st
		}
		if st.CreatedAt.After(cutoff) {
			recentSum += st.Performance
			recentCount++
		}
	}

	n := float64(len(active))
	stats.AverageAge = round1(ageSum / n)
	stats.AveragePerformance = round1(perfSum / n)
	stats.TopPerformer = top
	stats.RecentAdditions = recentCount

	if recentCount > 0 {
		recentAvg := recentSum / float64(recentCount)
		overallAvg := perfSum / n
		switch {
		case recentAvg > overallAvg:
			stats.PerformanceTrend = "improving"
		case recentAvg < overallAvg:
			stats.PerformanceTrend = "declining"
		default:
			stats.PerformanceTrend = "stable"
		}
	}

	return stats
}

func (s *AnalyticsService) computePerformance() *PerformanceAnalysis {
	active := s.repo.List(model.StudentFilter{})
	if len(active) == 0 {
		return &PerformanceAnalysis{}
	}

	scores := make([]float64, 0, len(active))
	passed := 0
	for i := range active {
		scores = append(scores, active[i].Performance)
		if active[i].Performance >= passThreshold {
			passed++
		}
	}
	sort.Float64s(scores)

	return &PerformanceAnalysis{
		MaxPerformance:    scores[len(scores)-1],
		MinPerformance:    scores[0],
		MedianPerformance: scores[len(scores)/2],
		PassRate:          round1(float64(passed) / float64(len(active)) * 100),
	}
}

func (s *AnalyticsService) fromCache(ctx context.Context, key string, dst interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Stats cache read failed")
		}
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

func (s *AnalyticsService) toCache(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Stats cache write failed")
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
