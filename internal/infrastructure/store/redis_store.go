package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisMaxRetries = 3

// redisGetter is satisfied by both the client and a WATCH transaction.
type redisGetter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

// RedisStore keeps each document as a JSON string and maintains one set of
// ids per (collection, key, value) for Find.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisStore(rdb *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "fulfillment"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// ConnectRedis creates a client and pings it.
func ConnectRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) docKey(collection, id string) string {
	return fmt.Sprintf("%s:doc:%s:%s", s.prefix, collection, id)
}

func (s *RedisStore) indexKey(collection, key, value string) string {
	return fmt.Sprintf("%s:idx:%s:%s:%s", s.prefix, collection, key, value)
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	doc, err := s.load(ctx, s.rdb, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *RedisStore) Find(ctx context.Context, collection, key, value string) ([]Document, error) {
	ids, err := s.rdb.SMembers(ctx, s.indexKey(collection, key, value)).Result()
	if err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", collection, key, err)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.load(ctx, s.rdb, collection, id)
		if err != nil {
			return nil, fmt.Errorf("find %s by %s: %w", collection, key, err)
		}
		// The index can briefly outlive a deleted document.
		if doc == nil || doc.Keys[key] != value {
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *RedisStore) Put(ctx context.Context, doc Document, expectedVersion int) (int, error) {
	key := s.docKey(doc.Collection, doc.ID)
	next := expectedVersion + 1

	txf := func(tx *goredis.Tx) error {
		current, err := s.load(ctx, tx, doc.Collection, doc.ID)
		if err != nil {
			return err
		}
		switch {
		case current == nil && expectedVersion != 0,
			current != nil && current.Version != expectedVersion:
			return fmt.Errorf("%w: %s/%s expected version %d", ErrVersionConflict, doc.Collection, doc.ID, expectedVersion)
		}

		stored := doc
		stored.Version = next
		stored.UpdatedAt = time.Now().UTC()
		raw, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("marshal %s/%s: %w", doc.Collection, doc.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			if current != nil {
				for k, v := range current.Keys {
					if doc.Keys[k] != v {
						pipe.SRem(ctx, s.indexKey(doc.Collection, k, v), doc.ID)
					}
				}
			}
			for k, v := range doc.Keys {
				pipe.SAdd(ctx, s.indexKey(doc.Collection, k, v), doc.ID)
			}
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return 0, err
	}
	return 0, fmt.Errorf("%w: %s/%s changed during write", ErrVersionConflict, doc.Collection, doc.ID)
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	current, err := s.load(ctx, s.rdb, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if current == nil {
		return nil
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(collection, id))
		for k, v := range current.Keys {
			pipe.SRem(ctx, s.indexKey(collection, k, v), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, c redisGetter, collection, id string) (*Document, error) {
	raw, err := c.Get(ctx, s.docKey(collection, id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

