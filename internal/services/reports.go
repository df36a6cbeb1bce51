package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/repository"
)

// Period is a reporting window.
type Period string

const (
	PeriodDay   Period = "dia"
	PeriodWeek  Period = "semana"
	PeriodMonth Period = "mes"
	PeriodYear  Period = "anio"
	PeriodAll   Period = "todo"
)

// Periods lists the accepted periods in display order.
func Periods() []Period {
	return []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll}
}

var periodAliases = map[string]Period{
	"dia": PeriodDay, "day": PeriodDay,
	"semana": PeriodWeek, "week": PeriodWeek,
	"mes": PeriodMonth, "month": PeriodMonth,
	"anio": PeriodYear, "año": PeriodYear, "year": PeriodYear,
	"todo": PeriodAll, "all": PeriodAll,
}

// ParsePeriod maps a query value to a Period. Empty means the last week.
func ParsePeriod(raw string) (Period, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PeriodWeek, nil
	}
	p, ok := periodAliases[raw]
	if !ok {
		return "", invalid("periodo", "invalid_period")
	}
	return p, nil
}

// Since returns the lower bound of the window ending at now; zero for PeriodAll.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	case PeriodYear:
		return now.AddDate(0, 0, -365)
	default:
		return time.Time{}
	}
}

const unknownStudentName = "N/A"

type PaymentsReport struct {
	Period    Period                    `json:"period"`
	Rows      []models.PaymentReportRow `json:"payments"`
	TotalPaid float64                   `json:"total_paid"`
}

type LevelReport struct {
	Level    models.EducationLevel         `json:"education_level,omitempty"`
	Students []models.StudentSummary       `json:"students"`
	Counts   map[models.EducationLevel]int `json:"counts"`
}

type PendingReport struct {
	Students         []models.Student `json:"students"`
	TotalOutstanding float64          `json:"total_outstanding"`
}

type ReportService struct {
	repo repository.Repository
	now  func() time.Time
}

func NewReportService(repo repository.Repository) *ReportService {
	return &ReportService{repo: repo, now: time.Now}
}

// RecentPayments lists payments inside the period with the student's name
// resolved, or N/A when the student no longer exists.
func (s *ReportService) RecentPayments(ctx context.Context, rawPeriod string) (*PaymentsReport, error) {
	period, err := ParsePeriod(rawPeriod)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, repository.PaymentFilter{Since: period.Since(s.now())})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	ids := []string{}
	for _, p := range payments {
		if !seen[p.StudentID] {
			seen[p.StudentID] = true
			ids = append(ids, p.StudentID)
		}
	}
	students, err := s.repo.ListStudents(ctx, repository.StudentFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.ID] = st.Name
	}

	report := &PaymentsReport{Period: period, Rows: make([]models.PaymentReportRow, 0, len(payments))}
	paid := make([]float64, 0, len(payments))
	for _, p := range payments {
		name, ok := names[p.StudentID]
		if !ok {
			name = unknownStudentName
		}
		report.Rows = append(report.Rows, models.PaymentReportRow{Payment: p, StudentName: name})
		paid = append(paid, p.AmountPaid)
	}
	report.TotalPaid = sumMoney(paid)
	return report, nil
}

// StudentsByLevel lists students of one level, or all of them when rawLevel is empty.
func (s *ReportService) StudentsByLevel(ctx context.Context, rawLevel string) (*LevelReport, error) {
	level := models.EducationLevel(strings.TrimSpace(rawLevel))
	if level != "" && !level.Valid() {
		return nil, invalid("nivelEducativo", "invalid_education_level")
	}
	students, err := s.repo.ListStudents(ctx, repository.StudentFilter{Level: level})
	if err != nil {
		return nil, err
	}
	report := &LevelReport{
		Level:    level,
		Students: make([]models.StudentSummary, 0, len(students)),
		Counts:   map[models.EducationLevel]int{},
	}
	for _, st := range students {
		report.Students = append(report.Students, st.Summary())
		report.Counts[st.EducationLevel]++
	}
	return report, nil
}

// Pending lists students whose payment is not marked as completed.
func (s *ReportService) Pending(ctx context.Context) (*PendingReport, error) {
	students, err := s.repo.ListStudents(ctx, repository.StudentFilter{PendingOnly: true})
	if err != nil {
		return nil, err
	}
	report := &PendingReport{Students: students}
	if report.Students == nil {
		report.Students = []models.Student{}
	}
	charges := make([]float64, 0, len(students))
	for _, st := range students {
		charges = append(charges, st.Charge)
	}
	report.TotalOutstanding = sumMoney(charges)
	return report, nil
}
