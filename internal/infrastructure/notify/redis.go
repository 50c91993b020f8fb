package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.SignalEmitter = (*RedisEmitter)(nil)

// ListPusher subconjunto de *redis.Client usado por el emisor.
type ListPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisEmitter encola los eventos como JSON en una lista de Redis (LPUSH); los consumidores hacen BRPOP.
type RedisEmitter struct {
	client ListPusher
	key    string
}

// NewRedisEmitter construye el emisor sobre una lista.
func NewRedisEmitter(client ListPusher, key string) *RedisEmitter {
	return &RedisEmitter{client: client, key: key}
}

// NewRedisClient crea el cliente go-redis para el canal de notificaciones.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func (e *RedisEmitter) Emit(ctx context.Context, ev entity.SignalEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal signal event: %w", err)
	}
	if err := e.client.LPush(ctx, e.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", e.key, err)
	}
	return nil
}
