package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"verifier/internal/pipeline"
	"verifier/pkg/domain"
	"verifier/pkg/mx"
	"verifier/pkg/serrors"
	"verifier/pkg/tabular"

	"github.com/stretchr/testify/require"
)

type fakeChecker map[string]mx.Reachability

func (f fakeChecker) Lookup(_ context.Context, d string) mx.Reachability {
	if r, ok := f[d]; ok {
		return r
	}

	return mx.Unreachable
}

type classifierFunc func(ctx context.Context, address string) domain.Disposition

func (f classifierFunc) Classify(ctx context.Context, address string) domain.Disposition {
	return f(ctx, address)
}

type sliceSource struct {
	records []domain.Record
	err     error
	reads   atomic.Int32
}

func (s *sliceSource) Next(context.Context) (domain.Record, error) {
	i := int(s.reads.Add(1)) - 1
	if i < len(s.records) {
		return s.records[i], nil
	}
	if s.err != nil {
		return nil, s.err
	}

	return nil, io.EOF
}

func numbered(n int, email func(i int) string) []domain.Record {
	out := make([]domain.Record, n)
	for i := range n {
		out[i] = record("id", fmt.Sprint(i), "email", email(i))
	}

	return out
}

func ids(b *domain.Bucket) []string {
	var out []string
	for _, r := range b.Records() {
		id, _ := r.Record.Get("id")
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

var checker = fakeChecker{ //nolint: gochecknoglobals
	"ok.com":    mx.Reachable,
	"ok.org":    mx.Reachable,
	"ok.net":    mx.Reachable,
	"gone.com":  mx.Unreachable,
	"flaky.com": mx.Indeterminate,
}

func TestPipeline_Run_PartitionsRows(t *testing.T) {
	src := tabular.NewReader(strings.NewReader(strings.Join([]string{
		"id,name,email",
		"1,Alice,alice@ok.com",
		"2,Bob,bob@ok.org",
		"3,Carol,carol@ok.net",
		"4,Dan,dan@gone.com",
		"5,Eve,not-an-address",
		"6,Frank,",
		"7,Grace,grace@flaky.com",
		"8,Heidi",
	}, "\n") + "\n"))

	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{Concurrency: 3})
	res, err := p.Run(context.Background(), src, "email")
	require.NoError(t, err)

	require.Equal(t, []string{"1"}, ids(res.Valid))
	require.Equal(t, []string{"2"}, ids(res.CatchAll))
	require.Equal(t, []string{"3", "4", "5", "6", "7", "8"}, ids(res.Invalid))
	require.Equal(t, 8, res.Total())

	for _, d := range domain.Dispositions {
		for _, r := range res.Bucket(d).Records() {
			require.Equal(t, d, r.Disposition)
			status, ok := r.Fields().Get(domain.StatusField)
			require.True(t, ok)
			require.Equal(t, string(d), status)
		}
	}
}

func TestPipeline_Run_EmptySource(t *testing.T) {
	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{})

	for _, input := range []string{"", "id,email\n"} {
		res, err := p.Run(context.Background(), tabular.NewReader(strings.NewReader(input)), "email")
		require.NoError(t, err)
		require.Zero(t, res.Valid.Len())
		require.Zero(t, res.Invalid.Len())
		require.Zero(t, res.CatchAll.Len())
	}
}

func TestPipeline_Run_EmptyColumnSelectorKeepsEveryRow(t *testing.T) {
	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{})
	src := &sliceSource{records: numbered(10, func(i int) string { return fmt.Sprintf("u%d@ok.com", i) })}

	res, err := p.Run(context.Background(), src, "")
	require.NoError(t, err)
	require.Equal(t, 10, res.Invalid.Len())
	require.Equal(t, 10, res.Total())
}

func TestPipeline_Run_NoLostUpdates(t *testing.T) {
	const n = 1000
	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{Concurrency: 64})
	src := &sliceSource{records: numbered(n, func(i int) string {
		switch i % 3 {
		case 0:
			return fmt.Sprintf("u%d@ok.com", i)
		case 1:
			return fmt.Sprintf("u%d@ok.org", i)
		default:
			return fmt.Sprintf("u%d@gone.com", i)
		}
	})}

	res, err := p.Run(context.Background(), src, "email")
	require.NoError(t, err)
	require.Equal(t, 334, res.Valid.Len())
	require.Equal(t, 333, res.CatchAll.Len())
	require.Equal(t, 333, res.Invalid.Len())
	require.Equal(t, n, res.Total())
}

func TestPipeline_Run_DeterministicAsSets(t *testing.T) {
	jittery := classifierFunc(func(ctx context.Context, address string) domain.Disposition {
		time.Sleep(time.Duration(len(address)%3) * time.Millisecond)

		return pipeline.NewClassifier(checker, nil).Classify(ctx, address)
	})
	email := func(i int) string {
		return []string{"a@ok.com", "bb@ok.org", "ccc@gone.com", "bad"}[i%4]
	}

	p := pipeline.New(jittery, pipeline.Options{Concurrency: 16})
	first, err := p.Run(context.Background(), &sliceSource{records: numbered(200, email)}, "email")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), &sliceSource{records: numbered(200, email)}, "email")
	require.NoError(t, err)

	for _, d := range domain.Dispositions {
		require.Equal(t, ids(first.Bucket(d)), ids(second.Bucket(d)), "disposition %s", d)
	}
}

func TestPipeline_Run_MalformedSource(t *testing.T) {
	decodeErr := errors.New("connection reset")
	src := &sliceSource{
		records: numbered(3, func(int) string { return "a@ok.com" }),
		err:     decodeErr,
	}

	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{})
	res, err := p.Run(context.Background(), src, "email")
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrMalformedSource)
	require.ErrorIs(t, err, decodeErr)
}

func TestPipeline_Run_TruncatedStream(t *testing.T) {
	src := tabular.NewReader(io.MultiReader(
		strings.NewReader("id,email\n1,a@ok.com\n"),
		iotest.ErrReader(errors.New("unexpected EOF in multipart body")),
	))

	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{})
	res, err := p.Run(context.Background(), src, "email")
	require.Nil(t, res)
	require.Equal(t, serrors.ErrMalformedSource, serrors.KindOf(err))
}

func TestPipeline_Run_BareQuotesAreClassified(t *testing.T) {
	src := tabular.NewReader(strings.NewReader("id,name,email\n1,Bob \"the\" Builder,bob@ok.com\n"))

	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{})
	res, err := p.Run(context.Background(), src, "email")
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, ids(res.Valid))
}

func TestPipeline_Run_RespectsConcurrencyLimit(t *testing.T) {
	const limit = 4
	var inFlight, peak atomic.Int32
	slow := classifierFunc(func(context.Context, string) domain.Disposition {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)

		return domain.DispositionValid
	})

	p := pipeline.New(slow, pipeline.Options{Concurrency: limit})
	res, err := p.Run(context.Background(), &sliceSource{records: numbered(50, func(int) string { return "a@ok.com" })}, "email")
	require.NoError(t, err)
	require.Equal(t, 50, res.Valid.Len())
	require.LessOrEqual(t, peak.Load(), int32(limit))
	require.Positive(t, peak.Load())
}

func TestPipeline_Run_BackpressureBlocksReader(t *testing.T) {
	const limit = 2
	release := make(chan struct{})
	var inFlight atomic.Int32
	blocking := classifierFunc(func(context.Context, string) domain.Disposition {
		inFlight.Add(1)
		<-release

		return domain.DispositionCatchAll
	})

	src := &sliceSource{records: numbered(10, func(int) string { return "a@ok.org" })}
	p := pipeline.New(blocking, pipeline.Options{Concurrency: limit})

	type outcome struct {
		res *domain.BatchResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := p.Run(context.Background(), src, "email")
		done <- outcome{res, err}
	}()

	require.Eventually(t, func() bool { return inFlight.Load() == limit }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	// the reader holds at most one record it cannot schedule yet
	require.LessOrEqual(t, src.reads.Load(), int32(limit+1))

	close(release)
	out := <-done
	require.NoError(t, out.err)
	require.Equal(t, 10, out.res.CatchAll.Len())
}

func TestPipeline_Run_JoinWaitsForAllRows(t *testing.T) {
	var completed atomic.Int32
	slow := classifierFunc(func(context.Context, string) domain.Disposition {
		time.Sleep(10 * time.Millisecond)
		completed.Add(1)

		return domain.DispositionValid
	})

	p := pipeline.New(slow, pipeline.Options{Concurrency: 5})
	res, err := p.Run(context.Background(), &sliceSource{records: numbered(20, func(int) string { return "a@ok.com" })}, "email")
	require.NoError(t, err)
	require.Equal(t, int32(20), completed.Load())
	require.Equal(t, 20, res.Valid.Len())
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Run(ctx, &sliceSource{records: numbered(5, func(int) string { return "a@ok.com" })}, "email")
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrTimeout)
}

func TestPipeline_Run_CancelledMidBatch(t *testing.T) {
	var started atomic.Int32
	waiting := classifierFunc(func(ctx context.Context, _ string) domain.Disposition {
		started.Add(1)
		<-ctx.Done()

		return domain.DispositionInvalid
	})

	p := pipeline.New(waiting, pipeline.Options{Concurrency: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for started.Load() < 2 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	res, err := p.Run(ctx, &sliceSource{records: numbered(10, func(int) string { return "a@ok.com" })}, "email")
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrTimeout)
}

func TestPipeline_Run_DuplicateColumnLastValueWins(t *testing.T) {
	src := tabular.NewReader(strings.NewReader("email,email\nfirst@ok.com,second@ok.org\n"))

	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.Options{Concurrency: 2})
	res, err := p.Run(context.Background(), src, "email")
	require.NoError(t, err)
	require.Equal(t, 1, res.CatchAll.Len())
	require.Zero(t, res.Valid.Len())

	out, ok := tabular.Serialize(res.CatchAll)
	require.True(t, ok)
	require.Equal(t, "email,email,status\nfirst@ok.com,second@ok.org,catchall\n", string(out))
}
