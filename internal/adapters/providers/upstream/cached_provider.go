package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/domain/providers"
)

// CachedProvider wraps a ScheduleProvider with a short-lived cache so users
// monitoring the same patient and department within one polling window share
// a single upstream request.
type CachedProvider struct {
	inner      providers.ScheduleProvider
	cache      providers.CacheProvider
	ttlSeconds int
}

// NewCachedProvider creates a caching schedule provider. A nil cache disables
// caching and every call goes straight to the inner provider.
func NewCachedProvider(inner providers.ScheduleProvider, cache providers.CacheProvider, ttlSeconds int) providers.ScheduleProvider {
	if cache == nil || ttlSeconds <= 0 {
		return inner
	}
	return &CachedProvider{
		inner:      inner,
		cache:      cache,
		ttlSeconds: ttlSeconds,
	}
}

// FetchDoctors returns a cached document when present, otherwise fetches and
// stores one
func (p *CachedProvider) FetchDoctors(ctx context.Context, creds entities.PatientCredentials, departmentID int) (*entities.ScheduleDocument, error) {
	key := p.cacheKey(creds, departmentID)

	if data, err := p.cache.Get(ctx, key); err == nil {
		doc := &entities.ScheduleDocument{}
		if err := json.Unmarshal(data, doc); err == nil {
			return doc, nil
		}
		// Stale or corrupt entry; drop it and refetch.
		_ = p.cache.Delete(ctx, key)
	}

	doc, err := p.inner.FetchDoctors(ctx, creds, departmentID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(doc); err == nil {
		if err := p.cache.Set(ctx, key, data, p.ttlSeconds); err != nil {
			log.Warn().Err(err).Int("department_id", departmentID).Msg("Failed to cache schedule document")
		}
	}

	return doc, nil
}

// cacheKey hashes the patient credentials so they never appear in Redis keys
func (p *CachedProvider) cacheKey(creds entities.PatientCredentials, departmentID int) string {
	sum := sha256.Sum256([]byte(creds.Number + "|" + creds.Birthday))
	return fmt.Sprintf("schedule:doc:%s:%d", hex.EncodeToString(sum[:8]), departmentID)
}
