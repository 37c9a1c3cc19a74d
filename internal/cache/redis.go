package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	invalidationChannel = "storefront:cache:invalidate"
	genPrefix           = "gen:"
	genSeqKey           = "gen-seq"
	genTTL              = time.Hour
)

// generationScript returns the key's generation, allocating a fresh one from
// the shared sequence when absent.
var generationScript = redis.NewScript(`
local g = redis.call('GET', KEYS[1])
if not g then
  g = tostring(redis.call('INCR', KEYS[2]))
  redis.call('SET', KEYS[1], g, 'PX', ARGV[1])
end
return g
`)

// setIfGenerationScript writes the value only while the generation matches.
var setIfGenerationScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// Redis is a Cache shared across API instances. Invalidations are broadcast on
// a pub/sub channel so subscribers on every instance observe them.
type Redis struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
}

// Dial parses a redis:// URL and checks the server answers.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, namespace string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, namespace: namespace, logger: logger}
}

func (r *Redis) key(k string) string { return r.namespace + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Generation(ctx context.Context, key string) (string, error) {
	return generationScript.Run(ctx, r.client,
		[]string{r.key(genPrefix + key), r.key(genSeqKey)},
		genTTL.Milliseconds(),
	).Text()
}

func (r *Redis) SetIfGeneration(ctx context.Context, key, gen string, value []byte, ttl time.Duration) (bool, error) {
	n, err := setIfGenerationScript.Run(ctx, r.client,
		[]string{r.key(genPrefix + key), r.key(key)},
		gen, value, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate deletes matching values and their generations, then broadcasts
// prefix. The generation sequence itself is never deleted.
func (r *Redis) Invalidate(ctx context.Context, prefix string) error {
	seq := r.key(genSeqKey)
	var keys []string
	for _, pattern := range []string{r.key(prefix) + "*", r.key(genPrefix+prefix) + "*"} {
		iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if k := iter.Val(); k != seq {
				keys = append(keys, k)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return r.client.Publish(ctx, r.key(invalidationChannel), prefix).Err()
}

func (r *Redis) Subscribe(ctx context.Context, prefix string) (<-chan string, func()) {
	ps := r.client.Subscribe(ctx, r.key(invalidationChannel))
	// wait for the subscription to be confirmed so no invalidation is missed
	if _, err := ps.Receive(ctx); err != nil {
		r.logger.Warn("confirm cache subscription", zap.Error(err))
	}
	out := make(chan string, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				key := msg.Payload
				if !strings.HasPrefix(key, prefix) && !strings.HasPrefix(prefix, key) {
					continue
				}
				select {
				case out <- key:
				default:
					r.logger.Debug("dropping cache notification", zap.String("key", key))
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				r.logger.Warn("close cache subscription", zap.Error(err))
			}
		})
	}
	return out, cancel
}
