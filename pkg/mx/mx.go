// Package mx answers whether a mail domain publishes mail-exchange records.
//
// Lookups are modelled internally as a three-way Reachability so callers that
// need to tell "the domain has no MX records" apart from "the resolver failed"
// can do so; HasMailExchange collapses both failure modes to false.
package mx

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"verifier/pkg/logger"

	"github.com/jellydator/ttlcache/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Reachability is the outcome of a single MX lookup.
type Reachability int

const (
	// Indeterminate means the lookup failed for a reason unrelated to the
	// domain itself (timeout, network failure, resolver error).
	Indeterminate Reachability = iota
	// Reachable means the domain has at least one MX record.
	Reachable
	// Unreachable means the domain does not exist or has no MX records.
	Unreachable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "indeterminate"
	}
}

// Resolver performs MX lookups. *net.Resolver satisfies it.
//
//go:generate mockgen -package mockmx -source=mx.go -destination=mock/mockmx.go
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Options configure a Checker.
type Options struct {
	// Timeout bounds a single lookup. Zero disables the per-lookup timeout.
	Timeout time.Duration
	// CacheTTL is how long definitive answers are remembered. Zero disables caching.
	CacheTTL time.Duration
	// CacheCapacity bounds the number of cached domains. Zero means unbounded.
	CacheCapacity uint64
}

// Checker resolves domain reachability. It is safe for concurrent use.
type Checker struct {
	resolver Resolver
	options  Options
	cache    *ttlcache.Cache[string, Reachability]
	group    singleflight.Group

	lookups  metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Checker backed by the given resolver. A nil resolver uses
// net.DefaultResolver.
func New(resolver Resolver, options Options) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	c := &Checker{
		resolver: resolver,
		options:  options,
	}

	if options.CacheTTL > 0 {
		opts := []ttlcache.Option[string, Reachability]{
			ttlcache.WithTTL[string, Reachability](options.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, Reachability](),
		}
		if options.CacheCapacity > 0 {
			opts = append(opts, ttlcache.WithCapacity[string, Reachability](options.CacheCapacity))
		}
		c.cache = ttlcache.New(opts...)
	}

	meter := otel.Meter("verifier/mx")
	c.lookups, _ = meter.Int64Counter("verifier.mx.lookups",
		metric.WithDescription("MX lookups by outcome, cache hits excluded"))
	c.duration, _ = meter.Float64Histogram("verifier.mx.lookup.duration",
		metric.WithDescription("MX lookup latency"),
		metric.WithUnit("s"))

	return c
}

// HasMailExchange reports whether domain has at least one MX record. Every
// lookup failure, whatever its cause, is reported as false.
func (c *Checker) HasMailExchange(ctx context.Context, domain string) bool {
	return c.Lookup(ctx, domain) == Reachable
}

// Lookup resolves the MX records of domain. Concurrent lookups of the same
// domain share one resolver call, and definitive answers are cached.
func (c *Checker) Lookup(ctx context.Context, domain string) Reachability {
	key := strings.ToLower(strings.TrimSuffix(domain, "."))
	if key == "" {
		return Unreachable
	}

	if c.cache != nil {
		if item := c.cache.Get(key); item != nil {
			return item.Value()
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// detach from the first caller so its cancellation does not fail
		// every other row waiting on the same domain
		return c.resolve(context.WithoutCancel(ctx), key), nil
	})

	select {
	case <-ctx.Done():
		logger.Debug(ctx, "mx lookup abandoned", zap.String("domain", key), zap.Error(ctx.Err()))

		return Indeterminate
	case res := <-ch:
		return res.Val.(Reachability) //nolint: forcetypeassert
	}
}

func (c *Checker) resolve(ctx context.Context, domain string) Reachability {
	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}

	start := time.Now()
	records, err := c.resolver.LookupMX(ctx, domain)
	reach := classify(records, err)

	attrs := metric.WithAttributes(attribute.String("outcome", reach.String()))
	c.lookups.Add(ctx, 1, attrs)
	c.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		logger.Debug(ctx, "mx lookup failed",
			zap.String("domain", domain),
			zap.Stringer("reachability", reach),
			zap.Error(err))
	}

	if c.cache != nil && reach != Indeterminate {
		c.cache.Set(domain, reach, ttlcache.DefaultTTL)
	}

	return reach
}

// classify maps a resolver answer to a Reachability. A "not found" answer is
// definitive; anything else that failed is indeterminate.
func classify(records []*net.MX, err error) Reachability {
	// the resolver returns the well-formed records alongside an error when
	// only some of the answers were malformed
	if err == nil || len(records) > 0 {
		if len(records) == 0 {
			return Unreachable
		}

		return Reachable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return Unreachable
	}

	return Indeterminate
}
