package notify

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

func TestRenderStatusUpdate(t *testing.T) {
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	msg, err := RenderStatusUpdate(StatusUpdate{
		ComplaintID:   "c-1",
		Domain:        domain.DomainLab,
		SubmitterName: "<b>A</b>",
		To:            "a@x.com",
		Status:        domain.StatusInProgress,
	}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "Complaint Status Update - Lab", msg.Subject)
	assert.Contains(t, msg.Body, "Status: IN PROGRESS")
	assert.Contains(t, msg.Body, "c-1")
	assert.Contains(t, msg.Body, "&lt;b&gt;A&lt;/b&gt;", "submitter input is escaped")
	assert.Equal(t, now, msg.CreatedAt)
}

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Message{ID: "1"}))
	assert.ErrorIs(t, q.Enqueue(ctx, Message{ID: "2"}), ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	msg, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", msg.ID)

	cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = q.Dequeue(cancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// silentServer accepts connections and never answers.
func silentServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-done
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestRedisQueueEnqueueDoesNotWaitForRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: silentServer(t), ContextTimeoutEnabled: true})
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "test:notifications", 1, zap.NewNop())
	q.pushTimeout = 50 * time.Millisecond

	start := time.Now()
	require.NoError(t, q.Enqueue(context.Background(), Message{ID: "1"}))
	assert.ErrorIs(t, q.Enqueue(context.Background(), Message{ID: "2"}), ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 1, q.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	assert.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Message{ID: "3"}), "outbox drains even when pushes time out")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
}

func TestSender(t *testing.T) {
	assert.Equal(t, "Complaint Portal <noreply@x.com>", Sender{Email: "noreply@x.com", Name: "Complaint Portal"}.String())
	assert.Equal(t, "noreply@x.com", Sender{Email: "noreply@x.com"}.String())
	assert.True(t, Sender{Email: "  "}.Disabled())
}

func TestLogMailer(t *testing.T) {
	mailer := NewLogMailer(zap.NewNop(), Sender{Email: "noreply@x.com"})
	assert.NoError(t, mailer.Send(context.Background(), Message{ID: "1", To: "a@x.com"}))
}

func TestHTTPMailer(t *testing.T) {
	received := make(chan mailRequest, 1)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/ok", func(c *fiber.Ctx) error {
		var req mailRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return err
		}
		received <- req
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadGateway).SendString("smtp down")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	base := "http://" + ln.Addr().String()

	from := Sender{Email: "noreply@x.com", Name: "Portal"}
	msg := Message{ID: "m-1", To: "a@x.com", Subject: "s", Body: "b"}

	t.Run("2xx is success", func(t *testing.T) {
		mailer := NewHTTPMailer(base+"/ok", from, time.Second)
		require.NoError(t, mailer.Send(context.Background(), msg))
		got := <-received
		assert.Equal(t, "a@x.com", got.To)
		assert.Equal(t, "Portal <noreply@x.com>", got.From)
		assert.Equal(t, "m-1", got.MessageID)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		mailer := NewHTTPMailer(base+"/fail", from, time.Second)
		err := mailer.Send(context.Background(), msg)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "502"))
	})

	t.Run("expired context is not sent", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		mailer := NewHTTPMailer(base+"/ok", from, time.Second)
		assert.ErrorIs(t, mailer.Send(ctx, msg), context.DeadlineExceeded)
	})
}
