package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.SignalEmitter = (*WebhookEmitter)(nil)

// WebhookEmitter publica cada evento con un POST JSON a una URL fija.
type WebhookEmitter struct {
	http *resty.Client
	url  string
}

// NewWebhookEmitter construye el emisor. Reintenta dos veces ante errores de red o 5xx.
func NewWebhookEmitter(url string, timeout time.Duration) *WebhookEmitter {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &WebhookEmitter{http: client, url: strings.TrimSpace(url)}
}

func (e *WebhookEmitter) Emit(ctx context.Context, ev entity.SignalEvent) error {
	resp, err := e.http.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", "stock.signal."+ev.Status).
		SetBody(ev).
		Post(e.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook respondió %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}
