package mx_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"verifier/pkg/logger"
	"verifier/pkg/mx"
	mockmx "verifier/pkg/mx/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	_ = logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func TestChecker_Lookup(t *testing.T) {
	cases := []struct {
		name    string
		records []*net.MX
		err     error
		want    mx.Reachability
	}{
		{
			name:    "records found",
			records: []*net.MX{{Host: "mx1.example.com.", Pref: 10}},
			want:    mx.Reachable,
		},
		{
			name: "empty answer",
			want: mx.Unreachable,
		},
		{
			name: "nxdomain",
			err:  &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true},
			want: mx.Unreachable,
		},
		{
			name: "timeout",
			err:  &net.DNSError{Err: "i/o timeout", Name: "slow.example", IsTimeout: true},
			want: mx.Indeterminate,
		},
		{
			name: "network failure",
			err:  errors.New("connection refused"),
			want: mx.Indeterminate,
		},
		{
			name:    "partially malformed answer",
			records: []*net.MX{{Host: "mx1.example.com.", Pref: 10}},
			err:     &net.DNSError{Err: "DNS response contained records which contain invalid names"},
			want:    mx.Reachable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			res := mockmx.NewMockResolver(ctrl)
			res.EXPECT().LookupMX(gomock.Any(), "example.com").Return(tc.records, tc.err)

			c := mx.New(res, mx.Options{})
			got := c.Lookup(context.Background(), "example.com")
			require.Equal(t, tc.want, got)
		})
	}
}

func TestChecker_HasMailExchangeCollapsesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)
	res.EXPECT().LookupMX(gomock.Any(), "ok.com").Return([]*net.MX{{Host: "mx.ok.com."}}, nil)
	res.EXPECT().LookupMX(gomock.Any(), "gone.com").Return(nil, &net.DNSError{IsNotFound: true})
	res.EXPECT().LookupMX(gomock.Any(), "flaky.com").Return(nil, &net.DNSError{IsTimeout: true})

	c := mx.New(res, mx.Options{})
	ctx := context.Background()
	require.True(t, c.HasMailExchange(ctx, "ok.com"))
	require.False(t, c.HasMailExchange(ctx, "gone.com"))
	require.False(t, c.HasMailExchange(ctx, "flaky.com"))
}

func TestChecker_EmptyDomainSkipsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)

	c := mx.New(res, mx.Options{})
	require.Equal(t, mx.Unreachable, c.Lookup(context.Background(), ""))
	require.Equal(t, mx.Unreachable, c.Lookup(context.Background(), "."))
}

func TestChecker_CachesDefinitiveAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)
	res.EXPECT().LookupMX(gomock.Any(), "example.com").
		Return([]*net.MX{{Host: "mx.example.com."}}, nil).Times(1)
	res.EXPECT().LookupMX(gomock.Any(), "gone.org").
		Return(nil, &net.DNSError{IsNotFound: true}).Times(1)

	c := mx.New(res, mx.Options{CacheTTL: time.Minute})
	ctx := context.Background()
	for range 3 {
		require.Equal(t, mx.Reachable, c.Lookup(ctx, "example.com"))
		require.Equal(t, mx.Reachable, c.Lookup(ctx, "EXAMPLE.com."), "keys are normalized")
		require.Equal(t, mx.Unreachable, c.Lookup(ctx, "gone.org"))
	}
}

func TestChecker_DoesNotCacheIndeterminate(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)
	gomock.InOrder(
		res.EXPECT().LookupMX(gomock.Any(), "flaky.com").Return(nil, errors.New("server misbehaving")),
		res.EXPECT().LookupMX(gomock.Any(), "flaky.com").Return([]*net.MX{{Host: "mx.flaky.com."}}, nil),
	)

	c := mx.New(res, mx.Options{CacheTTL: time.Minute})
	ctx := context.Background()
	require.Equal(t, mx.Indeterminate, c.Lookup(ctx, "flaky.com"))
	require.Equal(t, mx.Reachable, c.Lookup(ctx, "flaky.com"))
	require.Equal(t, mx.Reachable, c.Lookup(ctx, "flaky.com"))
}

func TestChecker_TimeoutDegradesToIndeterminate(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)
	res.EXPECT().LookupMX(gomock.Any(), "hang.com").DoAndReturn(
		func(ctx context.Context, _ string) ([]*net.MX, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		},
	)

	c := mx.New(res, mx.Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	require.Equal(t, mx.Indeterminate, c.Lookup(context.Background(), "hang.com"))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestChecker_CallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)
	started := make(chan struct{})
	release := make(chan struct{})
	res.EXPECT().LookupMX(gomock.Any(), "slow.com").DoAndReturn(
		func(context.Context, string) ([]*net.MX, error) {
			close(started)
			<-release

			return []*net.MX{{Host: "mx.slow.com."}}, nil
		},
	)

	c := mx.New(res, mx.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, mx.Indeterminate, c.Lookup(ctx, "slow.com"))

	<-started
	close(release)
}

func TestChecker_CoalescesConcurrentLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockmx.NewMockResolver(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	res.EXPECT().LookupMX(gomock.Any(), "shared.com").DoAndReturn(
		func(context.Context, string) ([]*net.MX, error) {
			close(started)
			<-release

			return []*net.MX{{Host: "mx.shared.com."}}, nil
		},
	).Times(1)

	// late followers are served from the cache filled by the shared call
	c := mx.New(res, mx.Options{CacheTTL: time.Minute})

	const n = 10
	results := make(chan mx.Reachability, n)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- c.Lookup(context.Background(), "shared.com")
	}()
	<-started
	for range n - 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- c.Lookup(context.Background(), "shared.com")
		}()
	}
	// give the followers a moment to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for r := range results {
		require.Equal(t, mx.Reachable, r)
	}
}
