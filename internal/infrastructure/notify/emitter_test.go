package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/notify"
)

func sampleEvent() entity.SignalEvent {
	return entity.SignalEvent{
		ProductID:        "p1",
		Status:           entity.SignalStatusLow,
		PreviousStatus:   entity.SignalStatusOK,
		RequiredQuantity: 17,
		CurrentQuantity:  3,
		TriggeredAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Redis
// ──────────────────────────────────────────────────────────────────────────────

type fakePusher struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakePusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.key = key
	f.values = append(f.values, values...)
	cmd := redis.NewIntCmd(ctx, "lpush", key)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(int64(len(f.values)))
	}
	return cmd
}

func TestRedisEmitter_EncolaJSON(t *testing.T) {
	p := &fakePusher{}
	e := notify.NewRedisEmitter(p, "inventory:stock-signals")

	require.NoError(t, e.Emit(context.Background(), sampleEvent()))
	assert.Equal(t, "inventory:stock-signals", p.key)
	require.Len(t, p.values, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(p.values[0].([]byte), &got))
	assert.Equal(t, "p1", got["product_id"])
	assert.Equal(t, "low", got["status"])
	assert.Equal(t, "ok", got["previous_status"])
	assert.EqualValues(t, 17, got["required_quantity"])
	assert.EqualValues(t, 3, got["current_quantity"])
	assert.Equal(t, "2026-03-01T09:00:00Z", got["triggered_at"])
}

func TestRedisEmitter_Error(t *testing.T) {
	e := notify.NewRedisEmitter(&fakePusher{err: errors.New("connection refused")}, "k")
	assert.ErrorContains(t, e.Emit(context.Background(), sampleEvent()), "connection refused")
}

// ──────────────────────────────────────────────────────────────────────────────
// Webhook
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhookEmitter_Post(t *testing.T) {
	var body []byte
	var eventType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		eventType = r.Header.Get("X-Event-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := notify.NewWebhookEmitter(srv.URL, time.Second)
	require.NoError(t, e.Emit(context.Background(), sampleEvent()))
	assert.Equal(t, "stock.signal.low", eventType)
	assert.Contains(t, string(body), `"required_quantity":17`)
}

func TestWebhookEmitter_ReintentaYFalla(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "caído", http.StatusBadGateway)
	}))
	defer srv.Close()

	e := notify.NewWebhookEmitter(srv.URL, time.Second)
	err := e.Emit(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(3), calls.Load(), "1 intento + 2 reintentos")
}

func TestWebhookEmitter_4xxNoReintenta(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := notify.NewWebhookEmitter(srv.URL, time.Second).Emit(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// ──────────────────────────────────────────────────────────────────────────────
// Log y Multi
// ──────────────────────────────────────────────────────────────────────────────

type failingEmitter struct{ calls int }

func (f *failingEmitter) Emit(context.Context, entity.SignalEvent) error {
	f.calls++
	return errors.New("canal caído")
}

func TestMultiEmitter_EntregaATodos(t *testing.T) {
	var buf bytes.Buffer
	logEmitter := notify.NewLogEmitter(zerolog.New(&buf))
	failing := &failingEmitter{}
	pusher := &fakePusher{}

	m := notify.NewMultiEmitter(failing, nil, logEmitter, notify.NewRedisEmitter(pusher, "k"))
	assert.Equal(t, 3, m.Len())

	err := m.Emit(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canal caído")
	assert.Equal(t, 1, failing.calls)
	assert.Len(t, pusher.values, 1, "el fallo de un canal no impide los demás")
	assert.Contains(t, buf.String(), `"status":"low"`)
	assert.Contains(t, buf.String(), `"component":"notify"`)
}
