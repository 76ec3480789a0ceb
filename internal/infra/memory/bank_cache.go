package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ark-trip-service/internal/app"
	"ark-trip-service/internal/domain"
)

// BankCache wraps a QuestionBank with a TTL cache so that a question trigger
// never hits the backing store twice in quick succession. Writes go through
// to the inner bank and invalidate the cache.
type BankCache struct {
	inner app.QuestionBank
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestion
	list  *cachedList
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

type cachedList struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewBankCache(inner app.QuestionBank, ttl time.Duration) *BankCache {
	return &BankCache{
		inner: inner,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedQuestion),
	}
}

func (c *BankCache) Get(ctx context.Context, id string) (domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.question, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.question, nil
		}
		c.mu.RUnlock()

		q, err := c.inner.Get(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		c.mu.Lock()
		c.cache[id] = cachedQuestion{
			question:  q,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (c *BankCache) List(ctx context.Context) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if c.list != nil && c.list.expiresAt.After(now) {
		out := c.list.questions
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	questions, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.list = &cachedList{questions: questions, expiresAt: now.Add(c.ttlWithJitter())}
	c.mu.Unlock()
	return questions, nil
}

func (c *BankCache) Save(ctx context.Context, q domain.Question) (domain.Question, error) {
	saved, err := c.inner.Save(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	c.mu.Lock()
	delete(c.cache, saved.ID)
	c.list = nil
	c.mu.Unlock()
	return saved, nil
}

func (c *BankCache) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.cache, id)
	c.list = nil
	c.mu.Unlock()
	return nil
}

func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
