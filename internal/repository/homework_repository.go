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

// HomeworkRepository persists homework documents. Deletions cascade the
// removed ids out of every owned student's assigned and completed sets
// within the same transaction, so no student ever references a homework
// document that no longer exists.
type HomeworkRepository struct {
	db       *mongo.Database
	col      *mongo.Collection
	students *mongo.Collection
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *mongo.Database) *HomeworkRepository {
	return &HomeworkRepository{
		db:       db,
		col:      db.Collection(HomeworkCollection),
		students: db.Collection(StudentsCollection),
	}
}

// Create inserts a homework document and fills in the generated id.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	hw.CreatedAt = now
	hw.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, hw)
	return err
}

// FindByID loads a homework item by document id.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	var hw models.Homework
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&hw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &hw, nil
}

// ListByOwner returns every homework item owned by the teacher.
func (r *HomeworkRepository) ListByOwner(ctx context.Context, ownerTeacherID string) ([]models.Homework, error) {
	return r.list(ctx, bson.M{"ownerTeacherId": ownerTeacherID})
}

// ListByOwnerAndClass returns the teacher's homework for one class.
func (r *HomeworkRepository) ListByOwnerAndClass(ctx context.Context, ownerTeacherID, class string) ([]models.Homework, error) {
	return r.list(ctx, bson.M{"ownerTeacherId": ownerTeacherID, "class": class})
}

func (r *HomeworkRepository) list(ctx context.Context, filter bson.M) ([]models.Homework, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.Homework{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites name, due date and class. Last write wins.
func (r *HomeworkRepository) Update(ctx context.Context, id, name, dueDate, class string) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":      name,
		"dueDate":   dueDate,
		"class":     class,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one homework item and pulls its id from every owned
// student's relation sets, atomically.
func (r *HomeworkRepository) Delete(ctx context.Context, ownerTeacherID, id string) error {
	return r.deleteWithCascade(ctx, ownerTeacherID, []string{id}, true)
}

// DeleteBatch removes the given homework documents and cascades all their
// ids out of student relation sets in a single transaction. Either every
// listed document is deleted or none are.
func (r *HomeworkRepository) DeleteBatch(ctx context.Context, ownerTeacherID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.deleteWithCascade(ctx, ownerTeacherID, ids, false)
}

func (r *HomeworkRepository) deleteWithCascade(ctx context.Context, ownerTeacherID string, ids []string, single bool) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := r.col.DeleteMany(sc, bson.M{
			"_id":            bson.M{"$in": ids},
			"ownerTeacherId": ownerTeacherID,
		})
		if err != nil {
			return nil, err
		}
		if single && result.DeletedCount == 0 {
			return nil, ErrNotFound
		}

		_, err = r.students.UpdateMany(sc,
			bson.M{"ownerTeacherId": ownerTeacherID},
			bson.M{"$pull": bson.M{
				"assigned":  bson.M{"$in": ids},
				"completed": bson.M{"$in": ids},
			}})
		return nil, err
	})
	return err
}
