package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runs against a live server only when DOCTRACK_TEST_MONGO_URI is set.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("DOCTRACK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DOCTRACK_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	database := client.Database("doctrack_test_" + time.Now().Format("150405.000000"))
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return database
}

func TestAuditRepository_AppendAndHistory(t *testing.T) {
	database := testDatabase(t)
	repo := NewAuditRepository(database)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	first := domain.AuditEntry{Action: domain.ActionSubmit, Place: "admin", Date: "2026-01-01", InTime: "09:00:00"}
	second := domain.AuditEntry{Action: domain.ActionForward, Place: "forensic", PreviousPlace: "admin"}
	other := domain.AuditEntry{Action: domain.ActionSubmit, Place: "account"}

	require.NoError(t, repo.Append(ctx, "DOC-1", first))
	require.NoError(t, repo.Append(ctx, "DOC-2", other))
	require.NoError(t, repo.Append(ctx, "DOC-1", second))

	got, err := repo.History(ctx, "DOC-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.AuditEntry{first, second}, got)

	empty, err := repo.History(ctx, "DOC-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAuditRecord_InlinesEntryFields(t *testing.T) {
	raw, err := bson.Marshal(auditRecord{
		DocumentID: "DOC-1",
		Seq:        3,
		Entry:      domain.AuditEntry{Action: domain.ActionReceive, PreviousPlace: "admin"},
	})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "DOC-1", m["document_id"])
	assert.Equal(t, int64(3), m["seq"])
	assert.Equal(t, "Receive", m["action"])
	assert.Equal(t, "admin", m["previous_place"])
}
