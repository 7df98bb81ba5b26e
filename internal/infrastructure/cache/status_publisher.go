package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chitosepg/cameracapture/internal/domain/capture"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/chitosepg/cameracapture/internal/infrastructure/event"
)

// Defaults for the status publisher
const (
	DefaultStatusChannel = "capture:events"
	DefaultStatusKey     = "capture:status"
	DefaultStatusTTL     = 24 * time.Hour
)

// redisWriter is the subset of the Redis client the publisher needs
type redisWriter interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// StatusSnapshot is the value stored under the status key
type StatusSnapshot struct {
	CaptureID uuid.UUID `json:"capture_id"`
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	ErrorCode string    `json:"error_code,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisStatusPublisher fans capture events out to other processes. Every
// event is published as an envelope on a channel and the latest status line
// is kept under a key so late subscribers can catch up.
type RedisStatusPublisher struct {
	client     redisWriter
	serializer *event.EventSerializer
	channel    string
	statusKey  string
	ttl        time.Duration
	logger     *zap.Logger
}

// StatusPublisherOption configures a RedisStatusPublisher
type StatusPublisherOption func(*RedisStatusPublisher)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) StatusPublisherOption {
	return func(p *RedisStatusPublisher) {
		if channel != "" {
			p.channel = channel
		}
	}
}

// WithStatusKey sets the key holding the latest status snapshot
func WithStatusKey(key string) StatusPublisherOption {
	return func(p *RedisStatusPublisher) {
		if key != "" {
			p.statusKey = key
		}
	}
}

// WithStatusTTL sets how long the snapshot survives without updates
func WithStatusTTL(ttl time.Duration) StatusPublisherOption {
	return func(p *RedisStatusPublisher) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StatusPublisherOption {
	return func(p *RedisStatusPublisher) {
		p.logger = logger
	}
}

// NewRedisStatusPublisher creates a publisher over an existing client.
// The caller keeps ownership of the client.
func NewRedisStatusPublisher(client *redis.Client, serializer *event.EventSerializer, opts ...StatusPublisherOption) *RedisStatusPublisher {
	return newStatusPublisher(client, serializer, opts...)
}

func newStatusPublisher(client redisWriter, serializer *event.EventSerializer, opts ...StatusPublisherOption) *RedisStatusPublisher {
	p := &RedisStatusPublisher{
		client:     client,
		serializer: serializer,
		channel:    DefaultStatusChannel,
		statusKey:  DefaultStatusKey,
		ttl:        DefaultStatusTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EventTypes implements shared.EventHandler
func (p *RedisStatusPublisher) EventTypes() []string {
	return []string{
		capture.EventTypeCaptureStageChanged,
		capture.EventTypeCaptureCompleted,
		capture.EventTypeCaptureFailed,
	}
}

// Handle implements shared.EventHandler
func (p *RedisStatusPublisher) Handle(ctx context.Context, evt shared.DomainEvent) error {
	data, err := p.serializer.Serialize(evt)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", evt.EventType(), err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Error("Failed to publish capture event",
			zap.String("channel", p.channel),
			zap.String("event_type", evt.EventType()),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	snapshot, ok := snapshotOf(evt)
	if !ok {
		return nil
	}
	value, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal status snapshot: %w", err)
	}
	if err := p.client.Set(ctx, p.statusKey, value, p.ttl).Err(); err != nil {
		p.logger.Error("Failed to store capture status",
			zap.String("key", p.statusKey),
			zap.Error(err))
		return fmt.Errorf("failed to store status: %w", err)
	}
	return nil
}

func snapshotOf(evt shared.DomainEvent) (StatusSnapshot, bool) {
	snapshot := StatusSnapshot{
		CaptureID: evt.AggregateID(),
		UpdatedAt: evt.OccurredAt(),
	}
	switch e := evt.(type) {
	case *capture.CaptureStageChangedEvent:
		snapshot.Stage = e.ToStage.String()
		snapshot.Status = e.Status
	case *capture.CaptureCompletedEvent:
		snapshot.Stage = capture.StageCompleted.String()
		snapshot.Status = e.Status
		snapshot.FileName = e.FileName
	case *capture.CaptureFailedEvent:
		snapshot.Stage = capture.StageFailed.String()
		snapshot.Status = e.Status
		snapshot.ErrorCode = e.ErrorCode
	default:
		return StatusSnapshot{}, false
	}
	return snapshot, true
}

var _ shared.EventHandler = (*RedisStatusPublisher)(nil)
