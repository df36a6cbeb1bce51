package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student is a person enrolled at one education level.
// Charge is the outstanding balance, not a cumulative ledger.
type Student struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`

	Name             string         `gorm:"size:255;not null" json:"name" bson:"nombre"`
	Age              int            `gorm:"not null;default:0" json:"age" bson:"edad"`
	PaymentCompleted bool           `gorm:"not null;default:false;index" json:"payment_completed" bson:"pagoRealizado"`
	EducationLevel   EducationLevel `gorm:"size:20;not null;index" json:"education_level" bson:"nivelEducativo"`
	Charge           float64        `gorm:"not null;default:0" json:"charge" bson:"cargo"`

	// Payments is filled on demand; the relation lives in Payment.StudentID.
	Payments []Payment `gorm:"-" json:"payments,omitempty" bson:"-"`
}

// EnsureID assigns a fresh UUID when the student has none yet.
func (s *Student) EnsureID() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
}

// BeforeCreate is a gorm hook.
func (s *Student) BeforeCreate(_ *gorm.DB) error {
	s.EnsureID()
	return nil
}

// HasBalance reports whether the student still owes money.
func (s *Student) HasBalance() bool {
	return s.Charge > 0
}

// StudentSummary is the projection used by the level report.
type StudentSummary struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Age            int            `json:"age"`
	EducationLevel EducationLevel `json:"education_level"`
}

// Summary projects the student to name, age and level.
func (s *Student) Summary() StudentSummary {
	return StudentSummary{ID: s.ID, Name: s.Name, Age: s.Age, EducationLevel: s.EducationLevel}
}
