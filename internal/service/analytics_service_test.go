package service

import (
	"context"
	"testing"

	"github.com/rosterly/rosterly-backend/internal/model"
)

func TestDashboardDistributionsSumToActive(t *testing.T) {
	_, analytics, students := newFixture(t)
	ctx := context.Background()

	seed := []struct {
		grade model.Grade
		perf  float64
	}{
		{model.GradeA, 95}, // Excellent
		{model.GradeA, 92}, // Excellent
		{model.GradeB, 80}, // Good
		{model.GradeC, 65}, // Average
		{model.GradeF, 40}, // Needs Improvement
	}
	for _, s := range seed {
		if _, err := students.Create(ctx, createReq("Test Student", s.grade, s.perf)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := students.Archive(ctx, "STU005"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	stats, err := analytics.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if stats.TotalStudents != 5 || stats.ActiveStudents != 4 || stats.ArchivedStudents != 1 {
		t.Errorf("counts = %d/%d/%d, want 5/4/1",
			stats.TotalStudents, stats.ActiveStudents, stats.ArchivedStudents)
	}

	// Distributions cover active records only and must sum to ActiveStudents.
	gradeSum := 0
	for _, n := range stats.GradeDistribution {
		gradeSum += n
	}
	if gradeSum != stats.ActiveStudents {
		t.Errorf("grade distribution sums to %d, want %d", gradeSum, stats.ActiveStudents)
	}
	bandSum := 0
	for _, n := range stats.BandDistribution {
		bandSum += n
	}
	if bandSum != stats.ActiveStudents {
		t.Errorf("band distribution sums to %d, want %d", bandSum, stats.ActiveStudents)
	}

	// Every grade and band key is present even at zero count.
	for _, g := range model.Grades {
		if _, ok := stats.GradeDistribution[g]; !ok {
			t.Errorf("grade %q missing from distribution", g)
		}
	}
	for _, b := range model.PerformanceBands {
		if _, ok := stats.BandDistribution[b]; !ok {
			t.Errorf("band %q missing from distribution", b)
		}
	}

	if stats.GradeDistribution[model.GradeA] != 2 {
		t.Errorf("grade A count = %d, want 2", stats.GradeDistribution[model.GradeA])
	}
	if stats.BandDistribution[model.BandExcellent] != 2 {
		t.Errorf("Excellent count = %d, want 2", stats.BandDistribution[model.BandExcellent])
	}

	// (95+92+80+65)/4 = 83.0
	if stats.AveragePerformance != 83.0 {
		t.Errorf("AveragePerformance = %v, want 83.0", stats.AveragePerformance)
	}
	if stats.TopPerformer == nil || stats.TopPerformer.Performance != 95 {
		t.Errorf("TopPerformer = %+v", stats.TopPerformer)
	}
	if stats.RecentAdditions != 4 {
		t.Errorf("RecentAdditions = %d, want 4", stats.RecentAdditions)
	}
}

func TestDashboardEmptyCollection(t *testing.T) {
	_, analytics, _ := newFixture(t)

	stats, err := analytics.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if stats.TotalStudents != 0 || stats.ActiveStudents != 0 {
		t.Errorf("counts = %d/%d, want 0/0", stats.TotalStudents, stats.ActiveStudents)
	}
	if stats.AverageAge != 0 || stats.AveragePerformance != 0 {
		t.Errorf("averages on empty collection: %v/%v", stats.AverageAge, stats.AveragePerformance)
	}
	if stats.TopPerformer != nil {
		t.Errorf("TopPerformer = %+v, want nil", stats.TopPerformer)
	}
	if len(stats.GradeDistribution) != len(model.Grades) {
		t.Errorf("grade keys = %d, want %d", len(stats.GradeDistribution), len(model.Grades))
	}
}

func TestPerformanceAnalysis(t *testing.T) {
	_, analytics, students := newFixture(t)
	ctx := context.Background()

	for _, perf := range []float64{50, 70, 90} {
		if _, err := students.Create(ctx, createReq("Test Student", model.GradeB, perf)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	analysis, err := analytics.Performance(ctx)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}

	if analysis.MaxPerformance != 90 || analysis.MinPerformance != 50 {
		t.Errorf("max/min = %v/%v, want 90/50", analysis.MaxPerformance, analysis.MinPerformance)
	}
	if analysis.MedianPerformance != 70 {
		t.Errorf("median = %v, want 70", analysis.MedianPerformance)
	}
	// 2 of 3 scores are at or above the pass threshold.
	if analysis.PassRate != 66.7 {
		t.Errorf("pass rate = %v, want 66.7", analysis.PassRate)
	}
}

func TestPerformanceAnalysisEmpty(t *testing.T) {
	_, analytics, _ := newFixture(t)

	analysis, err := analytics.Performance(context.Background())
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if *analysis != (PerformanceAnalysis{}) {
		t.Errorf("analysis on empty collection = %+v, want zero value", analysis)
	}
}

func TestPublicStats(t *testing.T) {
	_, analytics, students := newFixture(t)
	ctx := context.Background()

	if _, err := students.Create(ctx, createReq("Test Student", model.GradeB, 70)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := students.Create(ctx, createReq("Test Student", model.GradeC, 60)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := students.Archive(ctx, "STU002"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	public := analytics.Public(ctx)
	if public.TotalStudents != 2 || public.ActiveStudents != 1 {
		t.Errorf("public stats = %+v, want 2 total / 1 active", public)
	}
}
