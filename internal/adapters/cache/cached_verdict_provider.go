package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/providers"
	"github.com/medcoda/codepair/internal/infrastructure/observability"
)

// noExpiry stores verdict entries without a TTL. Entries are invalidated only
// by bumping the prompt version, which changes the key.
const noExpiry = 0

// CachedVerdictProvider wraps a VerdictProvider with a content-addressed
// cache. For a fixed prompt version, repeat judgements of the same pair return
// the stored verdict without an external call. Concurrent first judgements of
// the same pair may each call the inner provider; content for a given key is
// deterministic, so last-writer-wins on Set is harmless.
type CachedVerdictProvider struct {
	inner   providers.VerdictProvider
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedVerdictProvider creates a caching wrapper around a verdict provider.
func NewCachedVerdictProvider(inner providers.VerdictProvider, cache providers.CacheProvider, metrics *observability.Metrics) providers.VerdictProvider {
	return &CachedVerdictProvider{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

// VerdictCacheKey derives the cache key for a code pair under a prompt
// version. The prompt version participates so a policy change can never
// silently reuse stale verdicts.
func VerdictCacheKey(diagnosisCode, procedureCode, promptVersion string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%s",
		entities.NormalizeCode(diagnosisCode),
		entities.NormalizeCode(procedureCode),
		promptVersion,
	)))
	return "verdict:" + hex.EncodeToString(sum[:])
}

// PromptVersion reports the inner provider's prompt policy identifier.
func (p *CachedVerdictProvider) PromptVersion() string {
	return p.inner.PromptVersion()
}

// Judge returns the cached verdict when present, otherwise invokes the inner
// provider and stores its verdict. Cache write failures are swallowed: they
// cost a future external call, never correctness.
func (p *CachedVerdictProvider) Judge(ctx context.Context, req providers.VerdictRequest) (*entities.ModelVerdict, error) {
	key := VerdictCacheKey(req.Diagnosis.Code, req.Procedure.Code, p.inner.PromptVersion())

	if data, err := p.cache.Get(ctx, key); err == nil {
		var verdict entities.ModelVerdict
		if err := json.Unmarshal(data, &verdict); err == nil && verdict.Validate() == nil {
			observability.RecordVerdictCache(ctx, p.metrics, true)
			return &verdict, nil
		}
		// Undecodable entry: drop it and fall through to the provider.
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Str("cache_key", key).Msg("discarding undecodable verdict cache entry")
		_ = p.cache.Delete(ctx, key)
	}
	observability.RecordVerdictCache(ctx, p.metrics, false)

	verdict, err := p.inner.Judge(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(verdict); err == nil {
		if err := p.cache.Set(ctx, key, data, noExpiry); err != nil {
			logger := observability.LoggerFromContext(ctx)
			logger.Warn().Err(err).Str("cache_key", key).Msg("failed to store verdict in cache")
		}
	}

	return verdict, nil
}
