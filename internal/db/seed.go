package db

import (
	"context"

	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/internal/services"
	"github.com/sirupsen/logrus"
)

var demoStudents = []models.Student{
	{Name: "Ana Pérez", Age: 9, EducationLevel: models.LevelPrimary},
	{Name: "Bruno Díaz", Age: 13, EducationLevel: models.LevelBasic},
	{Name: "Carla Gómez", Age: 16, EducationLevel: models.LevelHighSchool},
}

// Seed inserts the demo students that are not present yet (matched by name).
func Seed(ctx context.Context, repo repository.Repository, log logrus.FieldLogger) error {
	existing, err := repo.ListStudents(ctx, repository.StudentFilter{})
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, s := range existing {
		names[s.Name] = true
	}
	created := 0
	for _, demo := range demoStudents {
		if names[demo.Name] {
			continue
		}
		s := demo
		s.Charge = services.ComputeCharge(s.EducationLevel)
		if err := repo.CreateStudent(ctx, &s); err != nil {
			return err
		}
		created++
	}
	log.WithField("created", created).Info("seed completed")
	return nil
}
