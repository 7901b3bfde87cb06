package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// auditRecord is one history row. Seq is allocated per document from the
// counters collection so History can sort in append order even when
// RecordedAt ties.
type auditRecord struct {
	DocumentID string            `bson:"document_id"`
	Seq        int64             `bson:"seq"`
	Entry      domain.AuditEntry `bson:",inline"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(database *mongo.Database) *AuditRepository {
	return &AuditRepository{db: database}
}

var _ domain.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) Append(ctx context.Context, documentID string, entry domain.AuditEntry) error {
	seq, err := r.nextSeq(ctx, documentID)
	if err != nil {
		return fmt.Errorf("allocate audit seq for %s: %w", documentID, err)
	}

	record := auditRecord{
		DocumentID: documentID,
		Seq:        seq,
		Entry:      entry,
		RecordedAt: time.Now().UTC(),
	}

	collection := r.db.Collection(db.DocumentAuditLogsCollection)
	if _, err := collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert audit entry for %s: %w", documentID, err)
	}
	return nil
}

func (r *AuditRepository) History(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	collection := r.db.Collection(db.DocumentAuditLogsCollection)

	filter := bson.M{"document_id": documentID}
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []auditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	entries := make([]domain.AuditEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, rec.Entry)
	}
	return entries, nil
}

func (r *AuditRepository) nextSeq(ctx context.Context, documentID string) (int64, error) {
	collection := r.db.Collection(db.CountersCollection)

	filter := bson.M{"_id": "audit:" + documentID}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return 0, err
	}
	return c.Seq, nil
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.DocumentAuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "document_id", Value: 1},
				{Key: "seq", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "recorded_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
