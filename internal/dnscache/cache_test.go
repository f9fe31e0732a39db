package dnscache_test

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/emailprobe/internal/dnscache"
)

// mockResolver tracks how many times LookupMX was called.
type mockResolver struct {
	records []*net.MX
	err     error
	delay   time.Duration
	calls   atomic.Int64
}

func (m *mockResolver) LookupMX(_ context.Context, _ string) ([]*net.MX, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.records, m.err
}

func TestCache_BasicCaching(t *testing.T) {
	r := &mockResolver{
		records: []*net.MX{{Host: "mx.example.com.", Pref: 10}},
	}
	c := dnscache.NewWithResolver(2*time.Second, time.Minute, r)
	ctx := context.Background()

	recs, err := c.LookupMX(ctx, "example.com")
	assert.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = c.LookupMX(ctx, "EXAMPLE.com.")
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, int64(1), r.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_TTLExpiry(t *testing.T) {
	r := &mockResolver{
		records: []*net.MX{{Host: "mx.test.", Pref: 10}},
	}
	c := dnscache.NewWithResolver(2*time.Second, 50*time.Millisecond, r)

	_, _ = c.LookupMX(context.Background(), "example.com")
	time.Sleep(100 * time.Millisecond)
	_, _ = c.LookupMX(context.Background(), "example.com")

	assert.Equal(t, int64(2), r.calls.Load())
}

func TestCache_Dedup(t *testing.T) {
	r := &mockResolver{
		records: []*net.MX{{Host: "mx.test.", Pref: 10}},
		delay:   20 * time.Millisecond,
	}
	c := dnscache.NewWithResolver(2*time.Second, time.Minute, r)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := c.LookupMX(context.Background(), "example.com")
			assert.NoError(t, err)
			assert.Len(t, recs, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), r.calls.Load())
}

func TestCache_CachesErrors(t *testing.T) {
	r := &mockResolver{err: &net.DNSError{Err: "no such host"}}
	c := dnscache.NewWithResolver(2*time.Second, time.Minute, r)

	_, err := c.LookupMX(context.Background(), "bad.com")
	assert.Error(t, err)
	_, err = c.LookupMX(context.Background(), "bad.com")
	assert.Error(t, err)
	assert.Equal(t, int64(1), r.calls.Load())
}

func TestCache_WaiterCancelled(t *testing.T) {
	r := &mockResolver{
		records: []*net.MX{{Host: "mx.test.", Pref: 10}},
		delay:   200 * time.Millisecond,
	}
	c := dnscache.NewWithResolver(2*time.Second, time.Minute, r)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.LookupMX(ctx, "slow.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_ReturnsCopy(t *testing.T) {
	r := &mockResolver{
		records: []*net.MX{
			{Host: "mx2.", Pref: 20},
			{Host: "mx1.", Pref: 10},
		},
	}
	c := dnscache.NewWithResolver(2*time.Second, time.Minute, r)

	recs1, _ := c.LookupMX(context.Background(), "example.com")
	recs2, _ := c.LookupMX(context.Background(), "example.com")

	recs1[0].Host = "modified."
	assert.NotEqual(t, recs1[0].Host, recs2[0].Host)
}
