package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/classtrack/classtrack-api/internal/models"
)

// TeacherRepository persists teacher accounts in the teachers collection.
type TeacherRepository struct {
	col *mongo.Collection
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *mongo.Database) *TeacherRepository {
	return &TeacherRepository{col: db.Collection(TeachersCollection)}
}

// Create inserts a new teacher document and fills in the generated id.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, teacher)
	return err
}

// FindByID loads a teacher by document id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&teacher)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &teacher, nil
}

// FindByEmail loads the unique teacher whose email matches exactly.
func (r *TeacherRepository) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	var teacher models.Teacher
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&teacher)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &teacher, nil
}

// ExistsByEmail reports whether any teacher already uses the email.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every teacher account, most recent first.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var teachers []models.Teacher
	if err := cursor.All(ctx, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// UpdateName overwrites the display name. Last write wins.
func (r *TeacherRepository) UpdateName(ctx context.Context, id, name string) error {
	return r.updateFields(ctx, id, bson.M{"name": name})
}

// UpdateRole overwrites the role field.
func (r *TeacherRepository) UpdateRole(ctx context.Context, id string, role models.TeacherRole) error {
	return r.updateFields(ctx, id, bson.M{"role": role})
}

func (r *TeacherRepository) updateFields(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
