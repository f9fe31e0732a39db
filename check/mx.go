package check

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/optimode/emailprobe/internal/dnscache"
)

// MXRecord is a resolved mail exchanger. Lower Pref is preferred.
type MXRecord struct {
	Host string `json:"host"`
	Pref uint16 `json:"pref"`
}

// MXResolver resolves mail exchangers through a shared DNS cache.
type MXResolver struct {
	cache  *dnscache.Cache
	tracer Tracer
}

// NewMXResolver creates a resolver on top of cache. tracer may be nil.
func NewMXResolver(cache *dnscache.Cache, tracer Tracer) *MXResolver {
	return &MXResolver{cache: cache, tracer: orNop(tracer)}
}

// Resolve returns the domain's MX records ordered by ascending preference,
// equal preferences keeping resolver order. A failed lookup yields no
// records; callers treat both the same way. Null MX entries (".") are dropped.
func (r *MXResolver) Resolve(ctx context.Context, domain string) []MXRecord {
	mxs, err := r.cache.LookupMX(ctx, domain)
	if err != nil {
		r.tracer.Trace(TraceEvent{Kind: TraceLookup, Host: domain, Err: err})
		return nil
	}

	records := make([]MXRecord, 0, len(mxs))
	for _, mx := range mxs {
		host := strings.TrimSuffix(mx.Host, ".")
		if host == "" {
			continue
		}
		records = append(records, MXRecord{Host: host, Pref: mx.Pref})
	}

	slices.SortStableFunc(records, func(a, b MXRecord) int {
		return cmp.Compare(a.Pref, b.Pref)
	})

	r.tracer.Trace(TraceEvent{Kind: TraceLookup, Host: domain, Line: strings.Join(hosts(records), ",")})
	return records
}

func hosts(records []MXRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Host
	}
	return out
}
