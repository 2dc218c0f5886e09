package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 10 * time.Second
	retryInterval = 50 * time.Millisecond
	acquireWait   = 5 * time.Second
)

// Locker 变更操作的按键互斥锁。
// 配置了Redis时用SETNX做跨实例串行化（逐BOM/逐工艺路线加锁），
// 否则退化为进程内互斥（单实例部署与测试）。
type Locker struct {
	rdb   *redis.Client
	mu    sync.Mutex
	local map[string]*sync.Mutex
}

func New(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb, local: make(map[string]*sync.Mutex)}
}

// WithLock 持有key对应的锁执行fn
func (l *Locker) WithLock(ctx context.Context, key string, fn func() error) error {
	if l.rdb == nil {
		mu := l.localMutex(key)
		mu.Lock()
		defer mu.Unlock()
		return fn()
	}

	token := uuid.New().String()
	deadline := time.Now().Add(acquireWait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("acquire lock %s: timed out", key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	defer func() {
		// 仅释放自己持有的锁
		if val, err := l.rdb.Get(context.Background(), key).Result(); err == nil && val == token {
			l.rdb.Del(context.Background(), key)
		}
	}()

	return fn()
}

func (l *Locker) localMutex(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.local[key]
	if !ok {
		mu = &sync.Mutex{}
		l.local[key] = mu
	}
	return mu
}

// BOMKey 逐BOM锁键
func BOMKey(bomID string) string {
	return "lock:bom:" + bomID
}

// ProductBOMKey 逐产品BOM版本锁键（创建/激活新版本时使用）
func ProductBOMKey(productID string) string {
	return "lock:product-bom:" + productID
}

// RoutingKey 逐工艺路线锁键
func RoutingKey(routingID string) string {
	return "lock:routing:" + routingID
}
