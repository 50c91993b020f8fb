package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ErrOutboxFull la cola de señales llegó a MaxPending.
var ErrOutboxFull = errors.New("cola de señales llena")

// OutboxConfig opciones de la cola de señales.
type OutboxConfig struct {
	RetryInterval time.Duration // cadencia del reintento en segundo plano; 0 = 30s
	SendTimeout   time.Duration // por entrega; 0 = 10s
	MaxPending    int           // 0 = 10000
}

// SignalOutbox desacopla la entrega de señales del camino del movimiento: Emit solo encola
// y un worker entrega en orden al emisor real. Lo que falla queda en cola y se reintenta
// con el cron cada RetryInterval. Entrega at-least-once.
type SignalOutbox struct {
	inner SignalEmitter
	log   zerolog.Logger
	cfg   OutboxConfig

	mu      sync.Mutex
	pending []entity.SignalEvent

	flushMu sync.Mutex
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	cron    *cron.Cron
}

// NewSignalOutbox construye la cola sobre inner. Sin Start solo se entrega con Flush.
func NewSignalOutbox(inner SignalEmitter, log zerolog.Logger, cfg OutboxConfig) *SignalOutbox {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 10000
	}
	return &SignalOutbox{
		inner: inner,
		log:   log.With().Str("component", "signal_outbox").Logger(),
		cfg:   cfg,
		wake:  make(chan struct{}, 1),
	}
}

// Emit encola event y despierta al worker. No espera la entrega.
func (o *SignalOutbox) Emit(_ context.Context, event entity.SignalEvent) error {
	o.mu.Lock()
	if len(o.pending) >= o.cfg.MaxPending {
		o.mu.Unlock()
		return ErrOutboxFull
	}
	o.pending = append(o.pending, event)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush entrega las señales encoladas en orden. Se detiene en el primer fallo
// y deja esa señal y las siguientes en la cola.
func (o *SignalOutbox) Flush(ctx context.Context) error {
	o.flushMu.Lock()
	defer o.flushMu.Unlock()

	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.mu.Unlock()
			return nil
		}
		next := o.pending[0]
		o.mu.Unlock()

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.SendTimeout)
		err := o.inner.Emit(sctx, next)
		cancel()
		if err != nil {
			return err
		}

		o.mu.Lock()
		o.pending = o.pending[1:]
		o.mu.Unlock()
	}
}

// Start lanza el worker de entrega y programa el reintento cada RetryInterval.
func (o *SignalOutbox) Start() error {
	c := cron.New()
	_, err := c.AddFunc("@every "+o.cfg.RetryInterval.String(), func() {
		if o.Pending() == 0 {
			return
		}
		if err := o.Flush(context.Background()); err != nil {
			o.log.Debug().Err(err).Int("pending", o.Pending()).Msg("reintento de señales fallido")
		}
	})
	if err != nil {
		return err
	}
	o.cron = c
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	go o.run()
	c.Start()
	return nil
}

func (o *SignalOutbox) run() {
	defer close(o.done)
	for {
		select {
		case <-o.stop:
			return
		case <-o.wake:
			if err := o.Flush(context.Background()); err != nil {
				o.log.Warn().Err(err).Int("pending", o.Pending()).Msg("no se pudo entregar la señal; queda en cola")
			}
		}
	}
}

// Stop detiene el cron y el worker, y hace un último Flush.
func (o *SignalOutbox) Stop(ctx context.Context) error {
	if o.cron != nil {
		done := o.cron.Stop()
		select {
		case <-done.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		close(o.stop)
		select {
		case <-o.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		o.cron = nil
	}
	if o.Pending() == 0 {
		return nil
	}
	return o.Flush(ctx)
}

// Pending cantidad de señales sin entregar.
func (o *SignalOutbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
