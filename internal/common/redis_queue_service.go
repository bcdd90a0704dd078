package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"greek-row/chapterhouse/internal/logging"
)

// RedisQueueService is a NotificationQueue on Redis Streams with a consumer group
type RedisQueueService struct {
	client     *redis.Client
	stream     string
	group      string
	deadStream string
	maxLen     int64
}

var _ NotificationQueue = (*RedisQueueService)(nil)

func NewRedisQueueService(client *redis.Client, stream, group, deadStream string) *RedisQueueService {
	return &RedisQueueService{
		client:     client,
		stream:     stream,
		group:      group,
		deadStream: deadStream,
		maxLen:     100000,
	}
}

// CreateConsumerGroup creates the group for the stream if it doesn't exist
func (s *RedisQueueService) CreateConsumerGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

func (s *RedisQueueService) Enqueue(ctx context.Context, job *NotificationJob) error {
	return s.add(ctx, s.stream, job)
}

func (s *RedisQueueService) add(ctx context.Context, stream string, job *NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

func (s *RedisQueueService) Dequeue(ctx context.Context, consumer string, block time.Duration) (*NotificationJob, string, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: consumer,
		Streams:  []string{s.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	job, err := decodeJob(msg)
	if err != nil {
		// Poison message: ack so it is not redelivered forever
		_ = s.Ack(ctx, msg.ID)
		return nil, "", err
	}
	return job, msg.ID, nil
}

func (s *RedisQueueService) Ack(ctx context.Context, messageID string) error {
	return s.client.XAck(ctx, s.stream, s.group, messageID).Err()
}

func (s *RedisQueueService) DeadLetter(ctx context.Context, job *NotificationJob) error {
	logging.Warn("Notification dead-lettered", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt, "error", job.LastError)
	return s.add(ctx, s.deadStream, job)
}

// ClaimStale takes over messages idle longer than minIdle, typically from dead workers
func (s *RedisQueueService) ClaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*NotificationJob, []string, error) {
	messages, _, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    100,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var (
		jobs []*NotificationJob
		ids  []string
	)
	for _, msg := range messages {
		job, err := decodeJob(msg)
		if err != nil {
			logging.Warn("Dropping undecodable claimed message", "id", msg.ID, "error", err)
			_ = s.Ack(ctx, msg.ID)
			continue
		}
		jobs = append(jobs, job)
		ids = append(ids, msg.ID)
	}
	return jobs, ids, nil
}

func (s *RedisQueueService) Stats(ctx context.Context) (QueueStats, error) {
	var stats QueueStats

	length, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get queue length: %w", err)
	}
	stats.Length = length

	pending, err := s.client.XPending(ctx, s.stream, s.group).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return stats, fmt.Errorf("failed to get pending count: %w", err)
	}
	if pending != nil {
		stats.Pending = pending.Count
	}

	dead, err := s.client.XLen(ctx, s.deadStream).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get dead-letter length: %w", err)
	}
	stats.DeadLetter = dead
	return stats, nil
}

// TrimStream keeps only the most recent maxLen entries of the main stream
func (s *RedisQueueService) TrimStream(ctx context.Context, maxLen int64) error {
	return s.client.XTrimMaxLenApprox(ctx, s.stream, maxLen, 0).Err()
}

func decodeJob(msg redis.XMessage) (*NotificationJob, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid message format: data field missing")
	}
	var job NotificationJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification job: %w", err)
	}
	return &job, nil
}
