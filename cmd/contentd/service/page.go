package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/cache"
	"github.com/pagehub/contentd/common/logger"
	"github.com/pagehub/contentd/common/queue"
)

// DefaultPageLimit is the page size used when the client does not ask
// for one
const DefaultPageLimit = 10

// PageStore is the source-of-record query surface for pages
type PageStore interface {
	List(ctx context.Context, limit, offset int) ([]*models.PageDetail, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int64) (*models.PageDetail, error)
}

// ContentStore loads media contents for a set of pages
type ContentStore interface {
	ListByPages(ctx context.Context, pageIDs []int64) (map[int64]models.ContentList, error)
}

// cacheEnvelope wraps cached payloads under a data field
type cacheEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// PageService serves page reads cache-aside: cache first, source of
// record on miss, with cache population and counter propagation fired
// as detached side effects after the response is determined.
type PageService struct {
	pages    PageStore
	contents ContentStore
	cache    cache.Cache
	queue    queue.Queue
	ttl      time.Duration
	log      *logger.Logger

	effects sync.WaitGroup
}

// NewPageService creates a new page service. When no cache backend is
// configured, reads fall back to an in-process cache.
func NewPageService(pages PageStore, contents ContentStore, c cache.Cache, q queue.Queue, ttl time.Duration, log *logger.Logger) *PageService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if c == nil {
		log.Warn("no cache backend configured, using in-process cache")
		c = cache.NewMemoryCache(log)
	}
	return &PageService{
		pages:    pages,
		contents: contents,
		cache:    c,
		queue:    q,
		ttl:      ttl,
		log:      log,
	}
}

// ListCacheKey derives the cache key for a list request. The full
// request path includes pagination parameters, which therefore key
// separate entries.
func ListCacheKey(fullPath string) string {
	return "page_data_" + fullPath
}

// RetrieveCacheKey derives the cache key for a single-page request
func RetrieveCacheKey(id int64, fullPath string) string {
	return fmt.Sprintf("page_data_%d_%s", id, fullPath)
}

// List serves the paginated page list
func (s *PageService) List(ctx context.Context, fullPath string, limit, offset int) (*models.PageList, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	key := ListCacheKey(fullPath)

	if raw, ok := s.cacheGet(ctx, key); ok {
		var list models.PageList
		if err := json.Unmarshal(raw, &list); err == nil {
			s.fireHitEffects(key, raw)
			return &list, nil
		}
		s.log.Warn("discarding undecodable cache entry", "key", key)
	}

	count, err := s.pages.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	pages, err := s.pages.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	if err := s.attachContents(ctx, pages); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	var next, previous *string
	if offset+limit < count {
		next = pageLink(fullPath, limit, offset+limit)
	}
	if offset > 0 {
		previous = pageLink(fullPath, limit, max(0, offset-limit))
	}

	list := &models.PageList{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  pages,
	}
	if list.Results == nil {
		list.Results = []*models.PageDetail{}
	}

	payload, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("serialize page list: %w", err)
	}

	s.fireMissEffects(key, payload)
	return list, nil
}

// Retrieve serves a single page by id
func (s *PageService) Retrieve(ctx context.Context, id int64, fullPath string) (*models.PageDetail, error) {
	key := RetrieveCacheKey(id, fullPath)

	if raw, ok := s.cacheGet(ctx, key); ok {
		var page models.PageDetail
		if err := json.Unmarshal(raw, &page); err == nil {
			s.fireHitEffects(key, raw)
			return &page, nil
		}
		s.log.Warn("discarding undecodable cache entry", "key", key)
	}

	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	if err := s.attachContents(ctx, []*models.PageDetail{page}); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	if err := page.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("serialize page %d: %w", id, err)
	}

	s.fireMissEffects(key, payload)
	return page, nil
}

// Drain waits for every in-flight side effect. Used on shutdown.
func (s *PageService) Drain() {
	s.effects.Wait()
}

// cacheGet unwraps the data envelope of a cached payload. A cache error
// is logged and treated as a miss.
func (s *PageService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("cache entry missing data envelope", "key", key, "error", err)
		return nil, false
	}
	return env.Data, true
}

func (s *PageService) attachContents(ctx context.Context, pages []*models.PageDetail) error {
	ids := make([]int64, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}

	byPage, err := s.contents.ListByPages(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range pages {
		p.Contents = byPage[p.ID]
		if p.Contents == nil {
			p.Contents = models.ContentList{}
		}
	}
	return nil
}

// fireHitEffects schedules the cache-hit side effects: the in-place
// counter echo on the cached copy and the counter propagation dispatch
func (s *PageService) fireHitEffects(key string, payload []byte) {
	s.spawn("counter_echo", func(ctx context.Context) error {
		return s.echoCounters(ctx, key)
	})
	s.spawn("counter_dispatch", func(ctx context.Context) error {
		return s.publishRefs(ctx, payload)
	})
}

// fireMissEffects schedules the cache-miss side effects: the cache
// populate and the counter propagation dispatch
func (s *PageService) fireMissEffects(key string, payload []byte) {
	s.spawn("cache_populate", func(ctx context.Context) error {
		env, err := json.Marshal(cacheEnvelope{Data: payload})
		if err != nil {
			return err
		}
		return s.cache.Set(ctx, key, env, s.ttl)
	})
	s.spawn("counter_dispatch", func(ctx context.Context) error {
		return s.publishRefs(ctx, payload)
	})
}

// spawn runs a side effect detached from the request. The response never
// waits on it; failures are logged and isolated from sibling effects.
func (s *PageService) spawn(name string, fn func(ctx context.Context) error) {
	s.effects.Add(1)
	go func() {
		defer s.effects.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.log.Error("side effect failed", "effect", name, "error", err)
		}
	}()
}

// echoCounters re-reads the cached entry, increments every embedded
// counter and persists it back under the same key, so repeat cache hits
// reflect accumulating views before the authoritative increments land.
func (s *PageService) echoCounters(ctx context.Context, key string) error {
	raw, ok := s.cacheGet(ctx, key)
	if !ok {
		return nil
	}

	var data []byte
	if gjson.GetBytes(raw, "results").Exists() {
		var list models.PageList
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("decode cached list for echo: %w", err)
		}
		for _, page := range list.Results {
			bumpContents(page.Contents)
		}
		var err error
		data, err = json.Marshal(&list)
		if err != nil {
			return err
		}
	} else {
		var page models.PageDetail
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("decode cached page for echo: %w", err)
		}
		bumpContents(page.Contents)
		var err error
		data, err = json.Marshal(&page)
		if err != nil {
			return err
		}
	}

	env, err := json.Marshal(cacheEnvelope{Data: data})
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, env, s.ttl)
}

func bumpContents(contents models.ContentList) {
	for _, item := range contents {
		item.Meta().Counter++
	}
}

// publishRefs extracts content references from a payload and hands them
// to the counter queue
func (s *PageService) publishRefs(ctx context.Context, payload []byte) error {
	refs := ExtractRefs(payload)
	if len(refs) == 0 {
		return nil
	}

	msg, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	return s.queue.Publish(ctx, queue.TopicCounterIncrement, msg)
}

// pageLink builds a pagination link for the list envelope
func pageLink(fullPath string, limit, offset int) *string {
	u, err := url.Parse(fullPath)
	if err != nil {
		return nil
	}

	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	link := u.String()
	return &link
}
