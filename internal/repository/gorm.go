package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/colegio/internal/models"
	"gorm.io/gorm"
)

// GormRepository stores data in a SQL database (PostgreSQL or SQLite).
type GormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGorm returns a repository backed by db.
func NewGorm(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db, now: time.Now}
}

// DB exposes the underlying handle for migrations and health checks.
func (r *GormRepository) DB() *gorm.DB { return r.db }

func (r *GormRepository) ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, error) {
	q := r.db.WithContext(ctx).Model(&models.Student{})
	if f.Level != "" {
		q = q.Where("education_level = ?", f.Level)
	}
	if f.PendingOnly {
		q = q.Where("payment_completed = ?", false)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []models.Student{}, nil
		}
		q = q.Where("id IN ?", f.IDs)
	}
	var out []models.Student
	if err := q.Order("created_at asc").Find(&out).Error; err != nil {
		return nil, storeErr("list_students", err)
	}
	return out, nil
}

func (r *GormRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get_student", err)
	}
	return &s, nil
}

func (r *GormRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	return storeErr("create_student", r.db.WithContext(ctx).Create(s).Error)
}

func (r *GormRepository) UpdateStudent(ctx context.Context, id string, u StudentUpdate) (*models.Student, error) {
	fields := map[string]any{
		"name":            u.Name,
		"age":             u.Age,
		"education_level": u.EducationLevel,
		"charge":          u.Charge,
		"updated_at":      r.now(),
	}
	if u.PaymentCompleted != nil {
		fields["payment_completed"] = *u.PaymentCompleted
	}
	res := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, storeErr("update_student", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetStudent(ctx, id)
}

func (r *GormRepository) MarkStudentPaid(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).
		Updates(map[string]any{"payment_completed": true, "updated_at": r.now()})
	if res.Error != nil {
		return storeErr("mark_paid", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteStudent(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Student{})
	if res.Error != nil {
		return storeErr("delete_student", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) ApplyPayment(ctx context.Context, p *models.Payment, expectedCharge float64) error {
	p.Prepare(r.now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Student{}).
			Where("id = ? AND charge = ?", p.StudentID, expectedCharge).
			Updates(map[string]any{"charge": p.Balance, "updated_at": r.now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Student{}).Where("id = ?", p.StudentID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}
		return tx.Create(p).Error
	})
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return storeErr("apply_payment", err)
}

func (r *GormRepository) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{})
	if f.StudentID != "" {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if !f.Since.IsZero() {
		q = q.Where("date >= ?", f.Since.UTC())
	}
	var out []models.Payment
	if err := q.Order("date asc").Order("created_at asc").Find(&out).Error; err != nil {
		return nil, storeErr("list_payments", err)
	}
	return out, nil
}

func (r *GormRepository) Ping(ctx context.Context) error {
	return storeErr("ping", r.db.WithContext(ctx).Exec("SELECT 1").Error)
}

func (r *GormRepository) Close(_ context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return storeErr("close", err)
	}
	return storeErr("close", sqlDB.Close())
}
