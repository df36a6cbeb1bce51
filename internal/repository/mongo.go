package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/colegio/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	studentsCollection = "alumnos"
	paymentsCollection = "pagos"

	mongoQueryTimeout = 10 * time.Second
)

// MongoRepository stores data in the alumnos and pagos collections.
type MongoRepository struct {
	client   *mongo.Client
	students *mongo.Collection
	payments *mongo.Collection
	now      func() time.Time
}

// NewMongo returns a repository backed by the given database.
func NewMongo(client *mongo.Client, db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		client:   client,
		students: db.Collection(studentsCollection),
		payments: db.Collection(paymentsCollection),
		now:      time.Now,
	}
}

// EnsureIndexes creates the secondary indexes used by the report queries.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	if _, err := r.students.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "nivelEducativo", Value: 1}}},
		{Keys: bson.D{{Key: "pagoRealizado", Value: 1}}},
	}); err != nil {
		return storeErr("ensure_indexes", err)
	}
	if _, err := r.payments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "alumnoId", Value: 1}}},
		{Keys: bson.D{{Key: "fecha", Value: 1}}},
	}); err != nil {
		return storeErr("ensure_indexes", err)
	}
	return nil
}

func (r *MongoRepository) ListStudents(ctx context.Context, f StudentFilter) ([]models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Level != "" {
		filter["nivelEducativo"] = f.Level
	}
	if f.PendingOnly {
		filter["pagoRealizado"] = false
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []models.Student{}, nil
		}
		filter["_id"] = bson.M{"$in": f.IDs}
	}

	cur, err := r.students.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, storeErr("list_students", err)
	}
	out := []models.Student{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("list_students", err)
	}
	return out, nil
}

func (r *MongoRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	var s models.Student
	err := r.students.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get_student", err)
	}
	return &s, nil
}

func (r *MongoRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	s.EnsureID()
	now := r.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.students.InsertOne(ctx, s)
	return storeErr("create_student", err)
}

func (r *MongoRepository) UpdateStudent(ctx context.Context, id string, u StudentUpdate) (*models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	set := bson.M{
		"nombre":         u.Name,
		"edad":           u.Age,
		"nivelEducativo": u.EducationLevel,
		"cargo":          u.Charge,
		"updatedAt":      r.now().UTC(),
	}
	if u.PaymentCompleted != nil {
		set["pagoRealizado"] = *u.PaymentCompleted
	}
	var s models.Student
	err := r.students.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("update_student", err)
	}
	return &s, nil
}

func (r *MongoRepository) MarkStudentPaid(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	res, err := r.students.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"pagoRealizado": true, "updatedAt": r.now().UTC()}})
	if err != nil {
		return storeErr("mark_paid", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteStudent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	res, err := r.students.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("delete_student", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPayment updates the charge with a filter on its previous value, then
// inserts the payment. If the insert fails the charge is put back.
func (r *MongoRepository) ApplyPayment(ctx context.Context, p *models.Payment, expectedCharge float64) error {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	now := r.now()
	p.Prepare(now)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}

	res, err := r.students.UpdateOne(ctx,
		bson.M{"_id": p.StudentID, "cargo": expectedCharge},
		bson.M{"$set": bson.M{"cargo": p.Balance, "updatedAt": now.UTC()}})
	if err != nil {
		return storeErr("apply_payment", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.students.CountDocuments(ctx, bson.M{"_id": p.StudentID})
		if err != nil {
			return storeErr("apply_payment", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	if _, err := r.payments.InsertOne(ctx, p); err != nil {
		_, revertErr := r.students.UpdateOne(ctx,
			bson.M{"_id": p.StudentID, "cargo": p.Balance},
			bson.M{"$set": bson.M{"cargo": expectedCharge}})
		return storeErr("apply_payment", errors.Join(err, revertErr))
	}
	return nil
}

func (r *MongoRepository) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()

	filter := bson.M{}
	if f.StudentID != "" {
		filter["alumnoId"] = f.StudentID
	}
	if !f.Since.IsZero() {
		filter["fecha"] = bson.M{"$gte": f.Since.UTC()}
	}
	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: 1}, {Key: "createdAt", Value: 1}})
	cur, err := r.payments.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("list_payments", err)
	}
	out := []models.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("list_payments", err)
	}
	return out, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mongoQueryTimeout)
	defer cancel()
	return storeErr("ping", r.client.Ping(ctx, nil))
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return storeErr("close", r.client.Disconnect(ctx))
}
