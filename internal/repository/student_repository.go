package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
)

// StudentRepository persists student documents. All relation mutations use
// atomic set operators ($addToSet/$pull); the assigned and completed arrays
// are never overwritten wholesale.
type StudentRepository struct {
	db     *mongo.Database
	col    *mongo.Collection
	logger *zap.Logger

	watchBuffer int
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *mongo.Database, logger *zap.Logger, watchBuffer int) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if watchBuffer <= 0 {
		watchBuffer = 1
	}
	return &StudentRepository{
		db:          db,
		col:         db.Collection(StudentsCollection),
		logger:      logger,
		watchBuffer: watchBuffer,
	}
}

// Create inserts a student document and fills in the generated id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Assigned == nil {
		student.Assigned = []string{}
	}
	if student.Completed == nil {
		student.Completed = []string{}
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, student)
	return err
}

// FindByID loads a student by document id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

// ListByOwner returns every student owned by the teacher, in store order.
func (r *StudentRepository) ListByOwner(ctx context.Context, ownerTeacherID string) ([]models.Student, error) {
	return r.list(ctx, bson.M{"ownerTeacherId": ownerTeacherID})
}

// ListByOwnerAndClass returns the students in one of the teacher's classes.
func (r *StudentRepository) ListByOwnerAndClass(ctx context.Context, ownerTeacherID, class string) ([]models.Student, error) {
	return r.list(ctx, bson.M{"ownerTeacherId": ownerTeacherID, "class": class})
}

func (r *StudentRepository) list(ctx context.Context, filter bson.M) ([]models.Student, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	students := []models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Update overwrites name and class. Last write wins; the relation arrays are
// untouched.
func (r *StudentRepository) Update(ctx context.Context, id, name, class string) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":      name,
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

// AddAssigned unions homework ids into the student's assigned set. Adding an
// id already present is a no-op, so the operation is idempotent.
func (r *StudentRepository) AddAssigned(ctx context.Context, studentID string, homeworkIDs ...string) error {
	if len(homeworkIDs) == 0 {
		return nil
	}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": studentID}, bson.M{
		"$addToSet": bson.M{"assigned": bson.M{"$each": homeworkIDs}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCompleted unions a homework id into the student's completed set.
func (r *StudentRepository) AddCompleted(ctx context.Context, studentID, homeworkID string) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": studentID}, bson.M{
		"$addToSet": bson.M{"completed": homeworkID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCompleted removes a homework id from the student's completed set.
func (r *StudentRepository) RemoveCompleted(ctx context.Context, studentID, homeworkID string) error {
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": studentID}, bson.M{
		"$pull": bson.M{"completed": homeworkID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single student document.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes the given student documents in a single transaction.
// Either every listed document is deleted or none are.
func (r *StudentRepository) DeleteBatch(ctx context.Context, ownerTeacherID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		_, err := r.col.DeleteMany(sc, bson.M{
			"_id":            bson.M{"$in": ids},
			"ownerTeacherId": ownerTeacherID,
		})
		return nil, err
	})
	return err
}

// Watch opens a standing subscription on the teacher's class roster. The
// returned channel delivers the full matching snapshot on open and again
// after every change to the students collection; it closes when ctx is
// cancelled. Rosters are small, so each delivery recomputes from scratch
// rather than diffing.
func (r *StudentRepository) Watch(ctx context.Context, ownerTeacherID, class string) (<-chan []models.Student, error) {
	stream, err := r.col.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	initial, err := r.ListByOwnerAndClass(ctx, ownerTeacherID, class)
	if err != nil {
		_ = stream.Close(ctx)
		return nil, err
	}

	ch := make(chan []models.Student, r.watchBuffer)
	ch <- initial

	go func() {
		defer close(ch)
		defer func() {
			_ = stream.Close(context.Background())
		}()

		for stream.Next(ctx) {
			roster, err := r.ListByOwnerAndClass(ctx, ownerTeacherID, class)
			if err != nil {
				r.logger.Warn("roster snapshot failed, closing watch",
					zap.String("owner", ownerTeacherID),
					zap.String("class", class),
					zap.Error(err))
				return
			}
			select {
			case ch <- roster:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
