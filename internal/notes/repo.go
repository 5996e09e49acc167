package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNoteNotFound = errors.New("note not found")
)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("notes")}
}

// EnsureIndexes creates necessary indexes for the notes collection
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "subjectName", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "date", Value: -1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
			},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert creates a new note
func (r *Repo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// FindByID retrieves a note by its ID
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id, err)
	}
	return &note, nil
}

// List retrieves a page of notes with an optional subject filter, newest
// first by user date then upload time. Returns the page plus the total
// matching count for the pagination envelope.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Note, int64, error) {
	filter := bson.M{}
	if q.Subject != "" {
		filter["subjectName"] = q.Subject
	}
	return r.findPage(ctx, filter, q.Page, q.Limit)
}

// Search performs full-text search over titles and descriptions.
func (r *Repo) Search(ctx context.Context, q SearchQuery) ([]*Note, int64, error) {
	filter := bson.M{}
	if q.Query != "" {
		filter["$text"] = bson.M{"$search": q.Query}
	}
	if q.Subject != "" {
		filter["subjectName"] = q.Subject
	}
	return r.findPage(ctx, filter, q.Page, q.Limit)
}

func (r *Repo) findPage(ctx context.Context, filter bson.M, page, limit int) ([]*Note, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(bson.D{
			{Key: "date", Value: -1},
			{Key: "createdAt", Value: -1},
		})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []*Note
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, 0, fmt.Errorf("decode notes: %w", err)
	}
	return notes, total, nil
}

// Subjects returns the distinct subject names present across all notes.
func (r *Repo) Subjects(ctx context.Context) ([]*Subject, error) {
	values, err := r.coll.Distinct(ctx, "subjectName", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct subjects: %w", err)
	}

	subjects := make([]*Subject, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && name != "" {
			subjects = append(subjects, &Subject{Name: name})
		}
	}
	return subjects, nil
}

// Update applies a metadata-only patch. The files list is never touched.
func (r *Repo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Note, error) {
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note Note
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note %s: %w", id, err)
	}
	return &note, nil
}

// Delete removes a note by ID
func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNoteNotFound
	}
	return nil
}
