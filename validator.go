package emailprobe

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/optimode/emailprobe/check"
	"github.com/optimode/emailprobe/internal/dnscache"
	"github.com/optimode/emailprobe/internal/parse"
	"github.com/optimode/emailprobe/types"
)

// MXLookup is the DNS dependency of a Validator. *net.Resolver implements it.
type MXLookup interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Validator verifies email addresses. Instantiate with New, then
// optionally adjust it with the With* methods before the first Verify.
// A configured Validator is safe for concurrent use.
type Validator struct {
	opts      Options
	probeOpts ProbeOptions
	err       error // configuration error, returned on Verify()

	lookup   MXLookup
	resolver *check.MXResolver
	probe    *check.MailboxProbe
	dial     check.DialFunc
	tracer   check.Tracer
	user     string
	password string
}

// New creates a Validator. Without arguments DefaultOptions apply.
// A zero Timeout falls back to the default; a negative one is an
// error reported by Verify.
func New(opts ...Options) *Validator {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	v := &Validator{opts: o, lookup: net.DefaultResolver}

	switch {
	case o.Timeout < 0:
		v.err = ErrInvalidTimeout
	case o.Timeout == 0:
		v.opts.Timeout = DefaultOptions().Timeout
	}

	v.rebuild()
	return v
}

// WithResolver replaces the DNS resolver used for MX lookups.
func (v *Validator) WithResolver(r MXLookup) *Validator {
	v.lookup = r
	v.rebuild()
	return v
}

// WithDialer replaces the SOCKS5 connector.
func (v *Validator) WithDialer(d check.DialFunc) *Validator {
	v.dial = d
	v.rebuild()
	return v
}

// WithTracer installs a hook receiving resolver and probe events.
func (v *Validator) WithTracer(t check.Tracer) *Validator {
	v.tracer = t
	v.rebuild()
	return v
}

// WithProbe tunes the SMTP dialogue.
func (v *Validator) WithProbe(opts ProbeOptions) *Validator {
	v.probeOpts = opts
	v.rebuild()
	return v
}

// WithProxyAuth sets SOCKS5 username/password authentication.
func (v *Validator) WithProxyAuth(user, password string) *Validator {
	v.user = user
	v.password = password
	return v
}

// rebuild recreates the resolver and probe from the current settings.
func (v *Validator) rebuild() {
	cache := dnscache.NewWithResolver(v.opts.Timeout, 5*time.Minute, v.lookup)
	v.resolver = check.NewMXResolver(cache, v.tracer)
	v.probe = check.NewMailboxProbe(check.ProbeConfig{
		Timeout:  v.opts.Timeout,
		Port:     v.probeOpts.Port,
		DenyList: v.probeOpts.DenyList,
		HeloName: v.probeOpts.HeloName,
		MailFrom: v.probeOpts.MailFrom,
		Dial:     v.dial,
		Tracer:   v.tracer,
	})
}

// Verify checks address and, as configured, its domain and mailbox, with
// the probe connection originated through the SOCKS5 proxy at
// proxyHost:proxyPort. Network failures never produce an error: they
// leave the affected flag Unknown, as does cancelling ctx. The error is
// reserved for an invalid configuration.
func (v *Validator) Verify(ctx context.Context, address, proxyHost string, proxyPort int) (VerificationResult, error) {
	if v.err != nil {
		return VerificationResult{}, v.err
	}

	res := VerificationResult{Email: address}

	addr, err := parse.Parse(address)
	if err == nil && v.opts.StrictSyntax {
		err = check.ValidateSyntax(addr)
	}
	if err != nil {
		res.Details = err.Error()
		return res, nil
	}
	res.WellFormed = true

	if !v.opts.VerifyDomain && !v.opts.VerifyMailbox {
		return res, nil
	}

	records := v.resolver.Resolve(ctx, addr.Domain)
	if err := ctx.Err(); err != nil {
		res.Details = fmt.Sprintf("cancelled: %v", err)
		return res, nil
	}
	if v.opts.VerifyDomain {
		res.ValidDomain = types.FromBool(len(records) > 0)
	}

	if v.opts.VerifyMailbox {
		var exchange string
		if len(records) > 0 {
			exchange = records[0].Host
			res.MXHost = exchange
		}
		out := v.probe.Probe(ctx, addr.Local, addr.Domain, exchange, check.ProxyEndpoint{
			Host:     proxyHost,
			Port:     proxyPort,
			User:     v.user,
			Password: v.password,
		})
		res.ValidMailbox = out.Verdict
		res.SMTPCode = out.Code
		res.Details = out.Reason
	}

	return res, nil
}

// VerifyMany verifies multiple addresses concurrently through the same proxy.
// The result order matches the input slice order.
// Addresses are sorted by domain internally so MX lookups hit the cache.
func (v *Validator) VerifyMany(ctx context.Context, addresses []string, proxyHost string, proxyPort int, opts ...ConcurrencyOptions) ([]VerificationResult, error) {
	if v.err != nil {
		return nil, v.err
	}

	workers := 5
	if len(opts) > 0 && opts[0].Workers > 0 {
		workers = opts[0].Workers
	}

	type job struct {
		idx     int
		address string
		domain  string
	}

	jobSlice := make([]job, len(addresses))
	for i, a := range addresses {
		domain := ""
		if atIdx := strings.LastIndex(a, "@"); atIdx >= 0 {
			domain = strings.ToLower(a[atIdx+1:])
		}
		jobSlice[i] = job{idx: i, address: a, domain: domain}
	}
	sort.SliceStable(jobSlice, func(i, j int) bool {
		return jobSlice[i].domain < jobSlice[j].domain
	})

	jobs := make(chan job)
	go func() {
		defer close(jobs)
		for _, j := range jobSlice {
			jobs <- j
		}
	}()

	results := make([]VerificationResult, len(addresses))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				// Verify only fails on configuration errors, checked above.
				results[j.idx], _ = v.Verify(ctx, j.address, proxyHost, proxyPort)
			}
		}()
	}

	wg.Wait()
	return results, nil
}
