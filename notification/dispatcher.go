package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rohit1034/HrudaySparshi/common/logger"
	"github.com/Rohit1034/HrudaySparshi/models"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"
	"github.com/Rohit1034/HrudaySparshi/sender"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrStopped   = errors.New("notification dispatcher stopped")
)

type Config struct {
	Workers     int
	QueueSize   int
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// LogStore records the outcome of every job.
type LogStore interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
}

// DeadLetter receives jobs that failed on every attempt.
type DeadLetter interface {
	Publish(ctx context.Context, job Job, lastErr error) error
}

type Option func(*Dispatcher)

func WithDeadLetter(dl DeadLetter) Option {
	return func(d *Dispatcher) { d.deadLetter = dl }
}

func WithMetrics(m *aws_pkg.MetricsClient) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// Dispatcher delivers jobs on a fixed pool of workers fed by a bounded queue.
type Dispatcher struct {
	cfg        Config
	email      sender.EmailSender
	chat       sender.ChatSender
	logs       LogStore
	deadLetter DeadLetter
	metrics    *aws_pkg.MetricsClient
	logger     *zap.Logger

	queue   chan Job
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	once    sync.Once
}

func NewDispatcher(cfg Config, email sender.EmailSender, chat sender.ChatSender, logs LogStore, log *zap.Logger, opts ...Option) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	d := &Dispatcher{
		cfg:    cfg,
		email:  email,
		chat:   chat,
		logs:   logs,
		logger: log,
		queue:  make(chan Job, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. It is safe to call more than once.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
	})
}

// Enqueue hands jobs to the workers without blocking. Jobs that do not fit
// are dropped and ErrQueueFull is returned.
func (d *Dispatcher) Enqueue(jobs ...Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	var dropped int
	for _, job := range jobs {
		select {
		case d.queue <- job:
		default:
			dropped++
			d.logger.Warn("notification queue full, dropping job",
				zap.String("order_id", job.OrderID),
				zap.String("type", job.Type),
				zap.String("channel", job.Channel),
			)
		}
	}
	if dropped > 0 {
		go d.count(aws_pkg.MetricNotificationsDrop, "", dropped)
		return fmt.Errorf("%w: dropped %d of %d", ErrQueueFull, dropped, len(jobs))
	}
	return nil
}

// Stop refuses new jobs and waits for queued ones to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.queue {
		d.process(job)
	}
}

func (d *Dispatcher) process(job Job) {
	ctx := logger.WithRequestID(context.Background(), job.RequestID)
	log := logger.FromContext(ctx, d.logger).With(
		zap.String("order_id", job.OrderID),
		zap.String("type", job.Type),
		zap.String("channel", job.Channel),
	)

	if job.Recipient == "" {
		log.Warn("missing recipient, skipping notification")
		d.record(ctx, job, models.StatusSkipped, "", "missing recipient", 0)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		res, err := d.send(ctx, job)
		if err == nil {
			log.Info("notification sent",
				zap.String("message_id", res.MessageID),
				zap.Int("attempt", attempt),
			)
			d.record(ctx, job, models.StatusSent, res.MessageID, "", attempt)
			d.count(aws_pkg.MetricNotificationsSent, job.Channel, 1)
			return
		}
		if errors.Is(err, sender.ErrNotConfigured) {
			log.Warn("sender not configured, skipping notification")
			d.record(ctx, job, models.StatusSkipped, "", err.Error(), attempt)
			return
		}

		lastErr = err
		log.Warn("send attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < d.cfg.MaxAttempts {
			time.Sleep(d.cfg.Backoff << (attempt - 1))
		}
	}

	log.Error("notification failed", zap.Int("attempts", d.cfg.MaxAttempts), zap.Error(lastErr))
	d.record(ctx, job, models.StatusFailed, "", lastErr.Error(), d.cfg.MaxAttempts)
	d.count(aws_pkg.MetricNotificationsFailed, job.Channel, 1)

	if d.deadLetter != nil {
		dlCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := d.deadLetter.Publish(dlCtx, job, lastErr); err != nil {
			log.Error("dead-letter publish failed", zap.Error(err))
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, job Job) (sender.SendResult, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	switch job.Channel {
	case models.ChannelEmail:
		return d.email.SendEmail(ctx, job.Recipient, job.Subject, job.Body)
	case models.ChannelWhatsApp:
		return d.chat.SendMessage(ctx, job.Recipient, job.Body)
	default:
		return sender.SendResult{}, fmt.Errorf("unknown channel %q", job.Channel)
	}
}

func (d *Dispatcher) record(ctx context.Context, job Job, status, messageID, errMsg string, attempts int) {
	if d.logs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry := &models.NotificationLog{
		OrderID:   job.OrderID,
		UserID:    job.UserID,
		Recipient: job.Recipient,
		Type:      job.Type,
		Channel:   job.Channel,
		Status:    status,
		MessageID: messageID,
		Error:     errMsg,
		Attempts:  attempts,
	}
	if err := d.logs.SaveLog(ctx, entry); err != nil {
		d.logger.Error("failed to save notification log", zap.String("order_id", job.OrderID), zap.Error(err))
	}
}

func (d *Dispatcher) count(metric, channel string, n int) {
	if !d.metrics.IsEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dims := map[string]string{}
	if channel != "" {
		dims["Channel"] = channel
	}
	for i := 0; i < n; i++ {
		_ = d.metrics.RecordCount(ctx, metric, dims)
	}
}
