package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	redisv9 "github.com/redis/go-redis/v9"

	"docqa/internal/model"
)

const defaultKeyPrefix = "docqa"

// RedisDocumentStore keeps each document as a JSON blob plus a set of live
// session ids, so several server processes can share sessions.
type RedisDocumentStore struct {
	client *redisv9.Client
	prefix string
}

func NewRedisDocumentStore(client *redisv9.Client, prefix string) *RedisDocumentStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisDocumentStore{client: client, prefix: prefix}
}

func (s *RedisDocumentStore) Get(ctx context.Context, sessionID string) (*model.Document, bool, error) {
	raw, err := s.client.Get(ctx, s.documentKey(sessionID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get document failed: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached document failed: %w", err)
	}
	return &doc, true, nil
}

func (s *RedisDocumentStore) Put(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document failed: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.documentKey(doc.SessionID), payload, 0)
	pipe.SAdd(ctx, s.indexKey(), doc.SessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put document failed: %w", err)
	}
	return nil
}

func (s *RedisDocumentStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.documentKey(sessionID))
	pipe.SRem(ctx, s.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete document failed: %w", err)
	}
	return nil
}

func (s *RedisDocumentStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list documents failed: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisDocumentStore) documentKey(sessionID string) string {
	return fmt.Sprintf("%s:document:%s", s.prefix, sessionID)
}

func (s *RedisDocumentStore) indexKey() string {
	return s.prefix + ":documents"
}
