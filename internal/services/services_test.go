package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *repository.GormRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Payment{}))
	repo := repository.NewGorm(db)
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	return repo
}

type fixture struct {
	repo     *repository.GormRepository
	students *StudentService
	payments *PaymentService
	reports  *ReportService
	logs     *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newTestRepo(t)
	log, hook := test.NewNullLogger()
	return &fixture{
		repo:     repo,
		students: NewStudentService(repo, log),
		payments: NewPaymentService(repo, log),
		reports:  NewReportService(repo),
		logs:     hook,
	}
}

func (f *fixture) create(t *testing.T, name string, level models.EducationLevel) *models.Student {
	t.Helper()
	st, err := f.students.Create(context.Background(), StudentInput{Name: name, Age: "10", EducationLevel: string(level)})
	require.NoError(t, err)
	return st
}
