package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"vidfetch-backend/internal/models"
)

const (
	redisHistorySeqKey     = "vidfetch:history:seq"
	redisHistoryRecordsKey = "vidfetch:history:records"
	redisHistoryIndexKey   = "vidfetch:history:index"
)

// RedisHistoryRepo keeps each record as JSON in a hash and indexes ids in a
// sorted set scored by timestamp. Ids come from INCR so they stay unique
// across server instances.
type RedisHistoryRepo struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisHistoryRepo(client *redis.Client) *RedisHistoryRepo {
	return &RedisHistoryRepo{client: client, now: time.Now}
}

func (r *RedisHistoryRepo) Append(ctx context.Context, rec *models.DownloadRecord) (int64, error) {
	id, err := r.client.Incr(ctx, redisHistorySeqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate history id: %w", err)
	}
	rec.ID = id
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode history record: %w", err)
	}

	member := strconv.FormatInt(id, 10)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisHistoryRecordsKey, member, data)
		pipe.ZAdd(ctx, redisHistoryIndexKey, redis.Z{
			Score:  float64(rec.Timestamp.UnixMilli()),
			Member: member,
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store history record: %w", err)
	}
	return id, nil
}

func (r *RedisHistoryRepo) ListAll(ctx context.Context) ([]models.DownloadRecord, error) {
	ids, err := r.client.ZRevRange(ctx, redisHistoryIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list history index: %w", err)
	}
	records := make([]models.DownloadRecord, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	values, err := r.client.HMGet(ctx, redisHistoryRecordsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load history records: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("history record %s missing", ids[i])
		}
		var rec models.DownloadRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode history record %s: %w", ids[i], err)
		}
		records = append(records, rec)
	}

	// The sorted set orders equal scores by member string, not numeric id.
	sortNewestFirst(records)
	return records, nil
}
