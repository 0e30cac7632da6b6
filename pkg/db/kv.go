package db

import (
	"context"
	"errors"
	"time"

	"github.com/barribox/barribox-backend/pkg/kv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the kv_entries table created by the goose
// migrations.
type KVEntry struct {
	Key       string     `gorm:"column:entry_key;primaryKey"`
	Value     string     `gorm:"column:value;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// KVStore persists state blobs in kv_entries.
type KVStore struct {
	client *Client
	now    func() time.Time
}

// StateStore adapts the client to kv.Store.
func (c *Client) StateStore() *KVStore {
	return &KVStore{client: c, now: time.Now}
}

var _ kv.Store = (*KVStore)(nil)

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.client.conn.WithContext(ctx).
		Where("entry_key = ?", key).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC()).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now().UTC()
	entry := KVEntry{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		expires := now.Add(ttl)
		entry.ExpiresAt = &expires
	}
	return s.client.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *KVStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.conn.WithContext(ctx).
		Where("entry_key IN ?", keys).
		Delete(&KVEntry{}).Error
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// PurgeExpired removes rows whose TTL elapsed and reports how many went.
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.client.conn.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&KVEntry{})
	return res.RowsAffected, res.Error
}
