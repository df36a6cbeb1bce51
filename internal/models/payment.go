package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is an immutable record of money received against a student's charge.
// Balance is the student's remaining charge right after this payment.
type Payment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`

	Date time.Time `gorm:"not null;index" json:"date" bson:"fecha"`

	// StudentID is a weak reference: the student may have been deleted since.
	StudentID string `gorm:"size:36;not null;index" json:"student_id" bson:"alumnoId"`

	PaymentMethod   string  `gorm:"size:100" json:"payment_method" bson:"metodoPago"`
	AmountPaid      float64 `gorm:"not null;default:0" json:"amount_paid" bson:"abono"`
	Balance         float64 `gorm:"not null;default:0" json:"balance" bson:"saldo"`
	AdvanceDiscount float64 `gorm:"not null;default:0" json:"advance_discount" bson:"descuentoAdelantado"`
	Charge          float64 `gorm:"not null;default:0" json:"charge" bson:"cargo"`
	Months          string  `gorm:"size:255" json:"months" bson:"meses"`
}

// Prepare fills the id and date defaults.
func (p *Payment) Prepare(now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = now.UTC()
	}
}

// BeforeCreate is a gorm hook.
func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	p.Prepare(time.Now())
	return nil
}

// PaymentReportRow is a payment with the owning student's name resolved.
type PaymentReportRow struct {
	Payment
	StudentName string `json:"student_name"`
}
