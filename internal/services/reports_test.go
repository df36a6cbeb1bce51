package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/colegio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		raw  string
		want Period
	}{
		{"", PeriodWeek},
		{"dia", PeriodDay},
		{"DAY", PeriodDay},
		{"semana", PeriodWeek},
		{"month", PeriodMonth},
		{"anio", PeriodYear},
		{"year", PeriodYear},
		{"todo", PeriodAll},
		{" all ", PeriodAll},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePeriod(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePeriod("quincena")
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_period", v["periodo"])
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, -1), PeriodDay.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -7), PeriodWeek.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -30), PeriodMonth.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -365), PeriodYear.Since(now))
	assert.True(t, PeriodAll.Since(now).IsZero())
}

func TestReportService_RecentPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.create(t, "Ana", models.LevelBasic)
	beto := f.create(t, "Beto", models.LevelPrimary)

	now := time.Now().UTC()
	old := &models.Payment{StudentID: ana.ID, AmountPaid: 100, Balance: 1900, Charge: 2000, Date: now.AddDate(0, 0, -20)}
	require.NoError(t, f.repo.ApplyPayment(ctx, old, 2000))
	_, err := f.payments.Record(ctx, PaymentInput{StudentID: ana.ID, Amount: "400"})
	require.NoError(t, err)
	_, err = f.payments.Record(ctx, PaymentInput{StudentID: beto.ID, Amount: "250"})
	require.NoError(t, err)

	week, err := f.reports.RecentPayments(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, week.Period)
	require.Len(t, week.Rows, 2)
	assert.Equal(t, 650.0, week.TotalPaid)
	names := []string{week.Rows[0].StudentName, week.Rows[1].StudentName}
	assert.ElementsMatch(t, []string{"Ana", "Beto"}, names)

	month, err := f.reports.RecentPayments(ctx, "mes")
	require.NoError(t, err)
	assert.Len(t, month.Rows, 3)
	assert.Equal(t, old.ID, month.Rows[0].ID)

	_, err = f.reports.RecentPayments(ctx, "nope")
	_, ok := AsValidation(err)
	assert.True(t, ok)
}

func TestReportService_RecentPaymentsEmpty(t *testing.T) {
	f := newFixture(t)
	report, err := f.reports.RecentPayments(context.Background(), "todo")
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 0.0, report.TotalPaid)
}

func TestReportService_StudentsByLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Ana", models.LevelBasic)
	f.create(t, "Beto", models.LevelPrimary)
	f.create(t, "Carla", models.LevelBasic)

	all, err := f.reports.StudentsByLevel(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Students, 3)
	assert.Equal(t, 2, all.Counts[models.LevelBasic])
	assert.Equal(t, 1, all.Counts[models.LevelPrimary])

	basic, err := f.reports.StudentsByLevel(ctx, "Basico")
	require.NoError(t, err)
	require.Len(t, basic.Students, 2)
	for _, s := range basic.Students {
		assert.Equal(t, models.LevelBasic, s.EducationLevel)
		assert.Equal(t, 10, s.Age)
	}

	high, err := f.reports.StudentsByLevel(ctx, "Bachillerato")
	require.NoError(t, err)
	assert.Empty(t, high.Students)

	_, err = f.reports.StudentsByLevel(ctx, "Bachiller")
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_education_level", v["nivelEducativo"])
}

func TestReportService_Pending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.create(t, "Ana", models.LevelBasic)
	beto := f.create(t, "Beto", models.LevelPrimary)
	f.create(t, "Carla", models.LevelHighSchool)
	require.NoError(t, f.students.MarkPaid(ctx, beto.ID))
	_, err := f.payments.Record(ctx, PaymentInput{StudentID: ana.ID, Amount: "500"})
	require.NoError(t, err)

	report, err := f.reports.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Students, 2)
	assert.Equal(t, 1500.0+3500.0, report.TotalOutstanding)
}
