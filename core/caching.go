package core

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/huangsam/tsfeat/core/table"
	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/schema"
	"github.com/klauspost/compress/zstd"
)

// currentCacheVersion defines the version of the cached payload layout.
const currentCacheVersion = 2

// cacheTTL is how long a cached extraction stays valid.
const cacheTTL = 7 * 24 * time.Hour

// zstdEncoderPool pools encoders; EncodeAll is safe on a pooled encoder.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// zstdDecoderPool pools decoders; DecodeAll is safe on a pooled decoder.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// CachedExtract runs Extract through the result cache. A nil store computes directly.
// The boolean reports whether the result came from the cache.
func (e *Extractor) CachedExtract(ctx context.Context, store contract.CacheStore, tbl *table.Table, idColumn, sortColumn string) (*schema.OutputTable, bool, error) {
	if store == nil {
		out, err := e.Extract(ctx, tbl, idColumn, sortColumn)
		return out, false, err
	}

	start := time.Now()
	key := e.generateCacheKey(tbl, idColumn, sortColumn)

	// Check for cache hit
	if cached := checkCacheHit(store, key); cached != nil {
		e.report(cached.groupOutcomes(), time.Since(start))
		return cached.Table, true, nil
	}

	// Cache miss: compute and store
	out, err := e.computeAndStore(ctx, store, key, tbl, idColumn, sortColumn)
	return out, false, err
}

// cachedOutcome is the gob form of a groupOutcome.
type cachedOutcome struct {
	ID       string
	Features int
	Error    string // Empty when the group succeeded
}

// cachedExtraction is the cached payload: the output table plus every group
// outcome, so a hit reports the same totals as the run that produced it.
type cachedExtraction struct {
	Table    *schema.OutputTable
	Outcomes []cachedOutcome
}

func newCachedExtraction(out *schema.OutputTable, outcomes []groupOutcome) *cachedExtraction {
	cached := &cachedExtraction{Table: out, Outcomes: make([]cachedOutcome, len(outcomes))}
	for i, o := range outcomes {
		cached.Outcomes[i] = cachedOutcome{ID: o.ID, Features: o.Features}
		if o.Err != nil {
			cached.Outcomes[i].Error = o.Err.Error()
		}
	}
	return cached
}

// groupOutcomes restores the outcomes for replay. Failures keep their message only.
func (c *cachedExtraction) groupOutcomes() []groupOutcome {
	outcomes := make([]groupOutcome, len(c.Outcomes))
	for i, o := range c.Outcomes {
		outcomes[i] = groupOutcome{ID: o.ID, Features: o.Features}
		if o.Error != "" {
			outcomes[i].Err = errors.New(o.Error)
		}
	}
	return outcomes
}

// checkCacheHit attempts to retrieve and validate a cached result.
func checkCacheHit(store contract.CacheStore, key string) *cachedExtraction {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil // Stale or version mismatch
	}
	cached, err := decodeCachedExtraction(data)
	if err != nil || cached.Table == nil {
		return nil
	}
	return cached
}

// computeAndStore computes the result and stores it in the cache.
func (e *Extractor) computeAndStore(ctx context.Context, store contract.CacheStore, key string, tbl *table.Table, idColumn, sortColumn string) (*schema.OutputTable, error) {
	out, outcomes, err := e.extract(ctx, tbl, idColumn, sortColumn)
	if err != nil {
		return nil, err
	}
	data, err := encodeCachedExtraction(newCachedExtraction(out, outcomes))
	if err != nil {
		contract.LogWarn("Result cache encoding failed", err)
		return out, nil
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Result cache write failed", err)
	}
	return out, nil
}

// generateCacheKey creates a unique key from the extraction parameters and table content.
func (e *Extractor) generateCacheKey(tbl *table.Table, idColumn, sortColumn string) string {
	key := fmt.Sprintf("%d:%s:%x:%s:%s:%x",
		currentCacheVersion,
		e.catalog.Name(),
		math.Float64bits(e.fill),
		idColumn,
		sortColumn,
		tbl.Fingerprint(),
	)
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// encodeCachedExtraction serializes a payload as zstd-compressed gob.
func encodeCachedExtraction(cached *cachedExtraction) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cached); err != nil {
		return nil, fmt.Errorf("failed to encode cached extraction: %w", err)
	}
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)
	return encoder.EncodeAll(buf.Bytes(), nil), nil
}

// decodeCachedExtraction reverses encodeCachedExtraction.
func decodeCachedExtraction(data []byte) (*cachedExtraction, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	var cached cachedExtraction
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached extraction: %w", err)
	}
	return &cached, nil
}
