// Package repository persists students and payments behind a single interface
// with a SQL (gorm) and a MongoDB implementation.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/colegio/internal/models"
)

var (
	// ErrNotFound is returned when a student id matches no record.
	ErrNotFound = errors.New("not_found")
	// ErrConflict is returned when a compare-and-set on a student's charge loses a race.
	ErrConflict = errors.New("conflict")
)

// StoreError wraps an unexpected storage failure with the operation name.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// StudentFilter narrows ListStudents. Zero values mean no restriction.
type StudentFilter struct {
	Level       models.EducationLevel
	PendingOnly bool
	IDs         []string
}

// PaymentFilter narrows ListPayments. Zero values mean no restriction.
type PaymentFilter struct {
	StudentID string
	Since     time.Time
}

// StudentUpdate holds the editable fields of a student.
// PaymentCompleted is only written when non-nil.
type StudentUpdate struct {
	Name             string
	Age              int
	EducationLevel   models.EducationLevel
	Charge           float64
	PaymentCompleted *bool
}

// Repository is the persistence boundary used by the services.
type Repository interface {
	ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	CreateStudent(ctx context.Context, s *models.Student) error
	UpdateStudent(ctx context.Context, id string, u StudentUpdate) (*models.Student, error)
	MarkStudentPaid(ctx context.Context, id string) error
	DeleteStudent(ctx context.Context, id string) error

	// ApplyPayment inserts p and sets the student's charge to p.Balance, but only
	// if the stored charge still equals expectedCharge. Otherwise ErrConflict.
	ApplyPayment(ctx context.Context, p *models.Payment, expectedCharge float64) error
	ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
