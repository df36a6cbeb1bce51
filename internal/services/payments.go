package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/diewo77/colegio/internal/models"
	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxPaymentAttempts = 3

// PaymentInput is the raw payment form; Amount (`abono`) is applied.
type PaymentInput struct {
	StudentID     string
	PaymentMethod string
	Amount        string
	Months        string
}

// PaymentForm is what the payment page needs to render.
type PaymentForm struct {
	Student     *models.Student
	Months      int
	Installment float64
	BaseCharge  float64
}

type PaymentService struct {
	repo repository.Repository
	log  logrus.FieldLogger
}

func NewPaymentService(repo repository.Repository, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{repo: repo, log: log}
}

// Form loads the student and suggests an installment for the given months
// (raw query value, 1 when empty or not a number).
func (s *PaymentService) Form(ctx context.Context, studentID, months string) (*PaymentForm, error) {
	st, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(months))
	if err != nil || n < 1 {
		n = 1
	}
	return &PaymentForm{
		Student:     st,
		Months:      n,
		Installment: ComputeInstallment(st.EducationLevel, n),
		BaseCharge:  ComputeCharge(st.EducationLevel),
	}, nil
}

// parseAmount reads a non-negative amount rounded to cents.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	v := validation.Violations{}
	if err != nil {
		v.Add("abono", "invalid_amount")
	} else {
		validation.Amount("abono", amount.InexactFloat64(), v)
	}
	if !v.Empty() {
		return decimal.Zero, &ValidationError{Violations: v}
	}
	return amount.Round(centPlaces), nil
}

// Record applies a payment to a student's outstanding charge and stores it.
// The charge update and the payment insert succeed or fail together; a
// concurrent change to the charge is retried against the fresh balance.
func (s *PaymentService) Record(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		if _, gerr := s.repo.GetStudent(ctx, in.StudentID); gerr != nil {
			return nil, gerr
		}
		return nil, err
	}

	for attempt := 1; attempt <= maxPaymentAttempts; attempt++ {
		st, err := s.repo.GetStudent(ctx, in.StudentID)
		if err != nil {
			return nil, err
		}
		charge := money(st.Charge)
		if amount.GreaterThan(charge) {
			return nil, invalid("abono", "amount_exceeds_balance")
		}

		p := &models.Payment{
			StudentID:     st.ID,
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			AmountPaid:    amount.InexactFloat64(),
			Balance:       charge.Sub(amount).InexactFloat64(),
			Charge:        ComputeCharge(st.EducationLevel),
			Months:        strings.TrimSpace(in.Months),
		}
		err = s.repo.ApplyPayment(ctx, p, st.Charge)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"student_id": st.ID,
				"amount":     p.AmountPaid,
				"balance":    p.Balance,
			}).Info("payment recorded")
			return p, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"student_id": st.ID, "attempt": attempt}).Warn("payment conflict, retrying")
	}
	return nil, ErrConflict
}
