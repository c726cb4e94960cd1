package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rosterly/rosterly-backend/internal/config"
	"github.com/rosterly/rosterly-backend/internal/logger"
	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rosterly/rosterly-backend/internal/service"
)

var names = []string{
	"Alice Johnson", "Brian Carter", "Chloe Nguyen", "Daniel Reed", "Emma Brooks",
	"Felix Turner", "Grace Holloway", "Henry Walsh", "Isla Murray", "Jack Donovan",
	"Kira Patel", "Liam Fraser", "Mia Sandoval", "Noah Bennett", "Olivia Hayes",
	"Peter Lindgren", "Quinn Marsh", "Ruby Castellanos", "Samuel Ortiz", "Tara Whitfield",
	"Umar Farouk", "Vera Kovacs", "Wendell Price", "Xenia Alexandrou", "Yusuf Demir",
	"Zoe Campbell", "Aaron Mitchell", "Bella Thornton", "Caleb Osei", "Daria Sokolova",
	"Ethan Blackwood", "Fiona Gallagher", "Gabriel Moreau", "Hannah Kim", "Ivan Petrov",
	"Julia Romano", "Kenji Watanabe", "Lena Vogel", "Marcus Webb", "Nadia Rahman",
	"Oscar Delgado", "Priya Sharma", "Rosa Jimenez", "Stefan Bauer", "Talia Rosenberg",
	"Ugo Bianchi", "Valerie Dumont", "Wesley Grant", "Yara Haddad", "Zachary Stone",
}

var courses = []string{
	"Computer Science", "Mechanical Engineering", "Business Administration",
	"Biology", "Psychology", "Economics",
}

var departments = []string{
	"Engineering", "Science", "Business", "Humanities",
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	repo, err := repository.NewStudentRepository(cfg.DataFile, cfg.BackupDir, cfg.BackupKeep, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}

	// No Redis and no dashboard hub when seeding.
	analytics := service.NewAnalyticsService(repo, nil, cfg.StatsCacheTTL, log)
	students := service.NewStudentService(repo, analytics, nil, log)

	fmt.Printf("=== Seeding %d Students into %s ===\n", len(names), cfg.DataFile)

	grades := []model.Grade{model.GradeA, model.GradeB, model.GradeC, model.GradeD, model.GradeF}
	seeded := 0

	for i, name := range names {
		req := model.CreateStudentRequest{
			Name:        name,
			Age:         17 + rand.Intn(12),
			Grade:       grades[rand.Intn(len(grades))],
			Email:       fmt.Sprintf("student%02d@example.edu", i+1),
			Performance: float64(40 + rand.Intn(61)),
			Course:      courses[rand.Intn(len(courses))],
			Department:  departments[rand.Intn(len(departments))],
		}

		if _, err := students.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicateID) {
				continue
			}
			log.Fatal().Err(err).Str("name", name).Msg("Failed to seed student")
		}
		seeded++
	}

	total, active := repo.Count()
	fmt.Printf("Seeded %d students (%d total, %d active)\n", seeded, total, active)
}
