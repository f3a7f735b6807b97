package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(aggregateID string) *OutboxEvent {
	return &OutboxEvent{
		AggregateType: AggregateProduct,
		AggregateID:   aggregateID,
		EventType:     EventProductScraped,
		Payload:       json.RawMessage(`{"sku":"` + aggregateID + `"}`),
	}
}

func insertEvent(t *testing.T, db *DB, repo *OutboxRepository, event *OutboxEvent) {
	t.Helper()
	err := db.Transaction(context.Background(), func(tx pgx.Tx) error {
		return repo.InsertWithTx(context.Background(), tx, event)
	})
	require.NoError(t, err)
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		retries int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{8, 256 * time.Second},
		{9, 5 * time.Minute},
		{40, 5 * time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, retryDelay(tt.retries), "retries=%d", tt.retries)
	}
}

func TestNewProductEvent(t *testing.T) {
	event, err := NewProductEvent(EventProductScraped, 42, map[string]any{"sku": "15247848"})
	require.NoError(t, err)

	assert.Equal(t, AggregateProduct, event.AggregateType)
	assert.Equal(t, "42", event.AggregateID)
	assert.Equal(t, EventProductScraped, event.EventType)
	assert.JSONEq(t, `{"sku":"15247848"}`, string(event.Payload))

	_, err = NewProductEvent(EventProductScraped, 1, make(chan int))
	assert.Error(t, err)
}

func TestOutboxEvent_Prepare(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	event := &OutboxEvent{AggregateType: AggregateProduct, AggregateID: "7", EventType: EventProductEnriched, Payload: json.RawMessage(`null`)}
	require.NoError(t, event.prepare(now))

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, OutboxStatusPending, event.Status)
	assert.Equal(t, DefaultStream, event.TargetStream)
	assert.JSONEq(t, `{}`, string(event.Payload))
	assert.Equal(t, now, event.CreatedAt)
	require.NotNil(t, event.NextRetryAt)
	assert.Equal(t, now, *event.NextRetryAt)

	assert.ErrorIs(t, (&OutboxEvent{AggregateID: "7", EventType: EventProductScraped}).prepare(now), ErrIncompleteEvent)
}

func TestOutboxRepository_InsertWithTx(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewOutboxRepository(db)

	t.Run("defaults are applied", func(t *testing.T) {
		event := testEvent("outbox-1")
		event.Payload = nil
		insertEvent(t, db, repo, event)

		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, OutboxStatusPending, event.Status)
		assert.Equal(t, DefaultStream, event.TargetStream)
		assert.JSONEq(t, `{}`, string(event.Payload))
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("rollback discards the event", func(t *testing.T) {
		event := testEvent("outbox-rollback")
		err := db.Transaction(ctx, func(tx pgx.Tx) error {
			if err := repo.InsertWithTx(ctx, tx, event); err != nil {
				return err
			}
			return pgx.ErrTxClosed
		})
		assert.Error(t, err)

		pending, err := repo.GetPending(ctx, 100)
		require.NoError(t, err)
		for _, e := range pending {
			assert.NotEqual(t, "outbox-rollback", e.AggregateID)
		}
	})

	t.Run("incomplete events are rejected", func(t *testing.T) {
		cases := map[string]*OutboxEvent{
			"missing aggregate type": {AggregateID: "x", EventType: EventProductScraped},
			"missing aggregate id":   {AggregateType: AggregateProduct, EventType: EventProductScraped},
			"missing event type":     {AggregateType: AggregateProduct, AggregateID: "x"},
		}
		for name, event := range cases {
			t.Run(name, func(t *testing.T) {
				err := db.Transaction(ctx, func(tx pgx.Tx) error {
					return repo.InsertWithTx(ctx, tx, event)
				})
				assert.ErrorIs(t, err, ErrIncompleteEvent)
			})
		}
	})
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewOutboxRepository(db)

	t.Run("processed events leave the pending set", func(t *testing.T) {
		event := testEvent("outbox-processed")
		insertEvent(t, db, repo, event)

		require.NoError(t, repo.MarkProcessed(ctx, event.ID))

		var status string
		var processedAt *time.Time
		err := db.QueryRow(ctx,
			"SELECT status, processed_at FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &processedAt)
		require.NoError(t, err)
		assert.Equal(t, OutboxStatusProcessed, status)
		require.NotNil(t, processedAt)

		pending, err := repo.GetPending(ctx, 100)
		require.NoError(t, err)
		for _, e := range pending {
			assert.NotEqual(t, event.ID, e.ID)
		}
	})

	t.Run("unknown event cannot be processed", func(t *testing.T) {
		assert.ErrorIs(t, repo.MarkProcessed(ctx, uuid.New()), ErrNotFound)
		assert.ErrorIs(t, repo.MarkFailed(ctx, uuid.New(), assert.AnError), ErrNotFound)
	})

	t.Run("failure schedules a retry", func(t *testing.T) {
		event := testEvent("outbox-failed")
		insertEvent(t, db, repo, event)

		require.NoError(t, repo.MarkFailed(ctx, event.ID, assert.AnError))

		var status string
		var retryCount int
		var errorMsg *string
		var nextRetry *time.Time
		err := db.QueryRow(ctx,
			"SELECT status, retry_count, error_message, next_retry_at FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &retryCount, &errorMsg, &nextRetry)
		require.NoError(t, err)

		assert.Equal(t, OutboxStatusFailed, status)
		assert.Equal(t, 1, retryCount)
		require.NotNil(t, errorMsg)
		assert.Contains(t, *errorMsg, "assert.AnError")
		require.NotNil(t, nextRetry)
		assert.True(t, nextRetry.After(time.Now()))
	})

	t.Run("dead letter after max retries", func(t *testing.T) {
		event := testEvent("outbox-dead")
		event.RetryCount = MaxRetryCount - 1
		insertEvent(t, db, repo, event)

		require.NoError(t, repo.MarkFailed(ctx, event.ID, assert.AnError))

		var status string
		var retryCount int
		err := db.QueryRow(ctx,
			"SELECT status, retry_count FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &retryCount)
		require.NoError(t, err)

		assert.Equal(t, OutboxStatusDeadLetter, status)
		assert.Equal(t, MaxRetryCount, retryCount)

		requeued, err := repo.RequeueDeadLetters(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, requeued, int64(1))

		err = db.QueryRow(ctx,
			"SELECT status, retry_count FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &retryCount)
		require.NoError(t, err)
		assert.Equal(t, OutboxStatusPending, status)
		assert.Zero(t, retryCount)
	})

	t.Run("purge removes old processed events", func(t *testing.T) {
		event := testEvent("outbox-purge")
		insertEvent(t, db, repo, event)
		require.NoError(t, repo.MarkProcessed(ctx, event.ID))

		_, err := db.Exec(ctx,
			"UPDATE outbox_event SET processed_at = NOW() - INTERVAL '10 days' WHERE id = $1", event.ID)
		require.NoError(t, err)

		purged, err := repo.PurgeProcessed(ctx, 7*24*time.Hour)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, purged, int64(1))

		var count int
		require.NoError(t, db.QueryRow(ctx, "SELECT COUNT(*) FROM outbox_event WHERE id = $1", event.ID).Scan(&count))
		assert.Zero(t, count)
	})
}
