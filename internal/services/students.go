package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/validation"
	"github.com/sirupsen/logrus"
)

// StudentInput is the raw form input for creating or editing a student.
// PaymentCompleted is nil when the form did not carry the field.
type StudentInput struct {
	Name             string
	Age              string
	EducationLevel   string
	PaymentCompleted *bool
}

const maxAge = 130

type studentForm struct {
	Name           string `form:"nombre" validate:"required,max=255"`
	Age            int    `form:"edad"`
	EducationLevel string `form:"nivelEducativo" validate:"required,education_level"`
}

func (in StudentInput) parse() (studentForm, error) {
	f := studentForm{
		Name:           strings.TrimSpace(in.Name),
		EducationLevel: strings.TrimSpace(in.EducationLevel),
	}
	v := validation.Violations{}
	if age := strings.TrimSpace(in.Age); age != "" {
		n, err := strconv.Atoi(age)
		if err != nil {
			v.Add("edad", "invalid_number")
		} else {
			f.Age = n
			validation.RangeFloat("edad", float64(n), 0, maxAge, v)
		}
	}
	validation.Struct(f, v)
	if !v.Empty() {
		return f, &ValidationError{Violations: v}
	}
	return f, nil
}

// StudentDetail is a student with its payment history.
type StudentDetail struct {
	Student   *models.Student
	Payments  []models.Payment
	TotalPaid float64
}

type StudentService struct {
	repo repository.Repository
	log  logrus.FieldLogger
}

func NewStudentService(repo repository.Repository, log logrus.FieldLogger) *StudentService {
	return &StudentService{repo: repo, log: log}
}

// List returns every student in creation order.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.repo.ListStudents(ctx, repository.StudentFilter{})
}

// Create validates the input and stores a new student with the base fee of its level.
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*models.Student, error) {
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	level := models.EducationLevel(f.EducationLevel)
	st := &models.Student{
		Name:           f.Name,
		Age:            f.Age,
		EducationLevel: level,
		Charge:         ComputeCharge(level),
	}
	if err := s.repo.CreateStudent(ctx, st); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"student_id": st.ID, "level": level, "charge": st.Charge}).Info("student created")
	return st, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	return s.repo.GetStudent(ctx, id)
}

// Update replaces the editable fields. The charge is reset to the base fee of
// the (possibly new) level, discarding payments made so far.
func (s *StudentService) Update(ctx context.Context, id string, in StudentInput) (*models.Student, error) {
	f, err := in.parse()
	if err != nil {
		if _, gerr := s.repo.GetStudent(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, err
	}
	level := models.EducationLevel(f.EducationLevel)
	st, err := s.repo.UpdateStudent(ctx, id, repository.StudentUpdate{
		Name:             f.Name,
		Age:              f.Age,
		EducationLevel:   level,
		Charge:           ComputeCharge(level),
		PaymentCompleted: in.PaymentCompleted,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"student_id": id, "level": level, "charge": st.Charge}).Info("student updated")
	return st, nil
}

// MarkPaid flags the student as paid without touching the charge.
func (s *StudentService) MarkPaid(ctx context.Context, id string) error {
	if err := s.repo.MarkStudentPaid(ctx, id); err != nil {
		return err
	}
	s.log.WithField("student_id", id).Info("student marked as paid")
	return nil
}

// Delete removes the student; its payments are kept.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.log.WithField("student_id", id).Info("student deleted")
	return nil
}

// Detail returns the student with its payments in date order.
func (s *StudentService) Detail(ctx context.Context, id string) (*StudentDetail, error) {
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, repository.PaymentFilter{StudentID: id})
	if err != nil {
		return nil, err
	}
	d := &StudentDetail{Student: st, Payments: payments}
	paid := make([]float64, 0, len(payments))
	for _, p := range payments {
		paid = append(paid, p.AmountPaid)
	}
	d.TotalPaid = sumMoney(paid)
	return d, nil
}
