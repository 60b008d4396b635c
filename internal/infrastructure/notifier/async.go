package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"campus-market.backend/pkg/logger"
)

type sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// Async dispatches every message on its own goroutine and reports success immediately.
// Deliveries run on a detached context bounded by timeout.
type Async struct {
	next    sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next sender, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{next: next, timeout: timeout}
}

func (a *Async) Send(ctx context.Context, to, subject, body string) bool {
	fields := []zap.Field{zap.String("to", to), zap.String("subject", subject)}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if !a.next.Send(sendCtx, to, subject, body) {
			logger.Warn(ctx, "Async notification not delivered", fields...)
		}
	}()
	return true
}

// Wait blocks until in-flight deliveries finish
func (a *Async) Wait() {
	a.wg.Wait()
}
