package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentable/internal/app/schedule"
)

// TaskStore persists deferred tasks so schedules spanning months survive
// restarts. Add upserts on the task ID, keeping re-scheduling idempotent.
type TaskStore struct {
	col *mongo.Collection
}

func NewTaskStore(db *mongo.Database) *TaskStore {
	return &TaskStore{col: db.Collection("scheduled_tasks")}
}

func (s *TaskStore) Add(ctx context.Context, task schedule.Task) error {
	doc := taskDocument{
		ID:        task.ID,
		Kind:      task.Kind,
		SubjectID: task.SubjectID,
		RunAt:     task.RunAt.UnixMilli(),
		CreatedAt: task.CreatedAt.UnixMilli(),
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (s *TaskStore) Due(ctx context.Context, now time.Time, limit int) ([]schedule.Task, error) {
	filter := bson.M{"run_at": bson.M{"$lte": now.UTC().UnixMilli()}}
	opts := options.Find().SetSort(bson.D{{Key: "run_at", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []schedule.Task
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, schedule.Task{
			ID:        doc.ID,
			Kind:      doc.Kind,
			SubjectID: doc.SubjectID,
			RunAt:     timestampToTime(doc.RunAt),
			CreatedAt: timestampToTime(doc.CreatedAt),
		})
	}
	return out, cursor.Err()
}

func (s *TaskStore) MarkDone(ctx context.Context, id string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type taskDocument struct {
	ID        string `bson:"_id"`
	Kind      string `bson:"kind"`
	SubjectID string `bson:"subject_id"`
	RunAt     int64  `bson:"run_at"`
	CreatedAt int64  `bson:"created_at"`
}
