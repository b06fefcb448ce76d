package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrCacheMiss indica chave ausente no cache.
var ErrCacheMiss = errors.New("cache: chave ausente")

// Cache é o mínimo exigido do servidor de cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisCache adapta um cliente go-redis à interface Cache.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache cria o adaptador.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// CachedStore decora um Store com cache de leitura; escritas trocam a geração da coleção.
type CachedStore struct {
	next   Store
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore envolve next com cache de TTL fixo.
func NewCachedStore(next Store, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log.With().Str("component", "records_cache").Logger(),
	}
}

func (s *CachedStore) Create(ctx context.Context, collection string, data Record) (Record, error) {
	rec, err := s.next.Create(ctx, collection, data)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, collection)
	return rec, nil
}

func (s *CachedStore) Get(ctx context.Context, collection, id string) (Record, error) {
	key, ok := s.key(ctx, collection, "get:"+id)
	if ok {
		var rec Record
		if s.load(ctx, key, &rec) {
			return rec, nil
		}
	}

	rec, err := s.next.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if ok {
		s.store(ctx, key, rec)
	}
	return rec, nil
}

func (s *CachedStore) List(ctx context.Context, collection string) ([]Record, error) {
	key, ok := s.key(ctx, collection, "list")
	if ok {
		var list []Record
		if s.load(ctx, key, &list) {
			return list, nil
		}
	}

	list, err := s.next.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	if ok {
		s.store(ctx, key, list)
	}
	return list, nil
}

func (s *CachedStore) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	rec, err := s.next.Update(ctx, collection, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, collection)
	return rec, nil
}

func (s *CachedStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.next.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.invalidate(ctx, collection)
	return nil
}

func generationKey(collection string) string {
	return fmt.Sprintf("records:%s:gen", collection)
}

// key monta a chave versionada; falhas do cache desativam o cache para a chamada.
func (s *CachedStore) key(ctx context.Context, collection, suffix string) (string, bool) {
	raw, err := s.cache.Get(ctx, generationKey(collection))
	gen := "0"
	switch {
	case err == nil:
		gen = string(raw)
	case !errors.Is(err, ErrCacheMiss):
		s.logger.Warn().Err(err).Str("collection", collection).Msg("cache indisponível")
		return "", false
	}
	return fmt.Sprintf("records:%s:%s:%s", collection, gen, suffix), true
}

func (s *CachedStore) load(ctx context.Context, key string, v any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("falha ao ler cache")
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("entrada de cache inválida")
		return false
	}
	return true
}

func (s *CachedStore) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("falha ao gravar cache")
	}
}

func (s *CachedStore) invalidate(ctx context.Context, collection string) {
	if _, err := s.cache.Incr(ctx, generationKey(collection)); err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("falha ao invalidar cache")
	}
}
