//go:build integration

package notify

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

func TestRedisQueue(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "test:notifications", 8, nil)
	runCtx, stop := context.WithCancel(ctx)
	t.Cleanup(stop)
	go func() { _ = q.Run(runCtx) }()
	first := Message{ID: "1", ComplaintID: "c-1", Domain: domain.DomainICC, Status: domain.StatusResolved, To: "a@x.com"}
	second := Message{ID: "2", ComplaintID: "c-2", Domain: domain.DomainLab, Status: domain.StatusInProgress, To: "b@x.com"}
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID, "first in, first out")
	assert.Equal(t, domain.DomainICC, got.Domain)

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)

	empty, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
	defer cancel()
	_, err = q.Dequeue(empty)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
