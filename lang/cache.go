package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed programs keyed by source and option hash.
var globalCache sync.Map

// cacheEntry tracks the one-time parse of a cached source.
type cacheEntry struct {
	once  sync.Once
	exprs []Expr
	err   error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	// Encode options that change the parse result. Different scopes fold
	// differently, so a folding scope is identified too.
	_ = enc.Encode(o.fold)

	if o.fold && o.scope != nil {
		_ = enc.Encode(o.scope.id)
	}

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads all of r and parses it. The result is cached like
// ParseCached.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) ([]Expr, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)
	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseCached(ctx, string(data), opts...)
}

// ParseCached parses src, reusing the result of an earlier parse of the same
// source with the same options. Parse errors are cached too.
//
// Cached programs are shared: callers must not modify them, which the
// immutable AST guarantees.
func ParseCached(ctx context.Context, src string, opts ...Option) ([]Expr, error) {
	o := makeOptions(opts...)

	// Combine source hash with options hash for cache key uniqueness
	sourceHash := xxh3.Hash([]byte(src))
	optsHash := hashOptions(o)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, cacheHit := globalCache.LoadOrStore(key, new(cacheEntry))

	entry, ok := value.(*cacheEntry)
	if !ok {
		return Parse(ctx, src, opts...)
	}

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.exprs, entry.err = Parse(ctx, src, opts...)
	})

	return entry.exprs, entry.err
}

// ClearCache removes all cached programs.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
