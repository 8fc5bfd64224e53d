package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/jurisdiction"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = &record.Schema{
	Name:     "Testland (OSB)",
	State:    "Testland",
	Category: record.CategoryOSB,
	Amounts:  []string{"Handle", "GGR"},
}

type fakeExtractor struct {
	source  string
	records []record.Record
	err     error
}

func (f *fakeExtractor) Source() string {
	return f.source
}

func (f *fakeExtractor) Produce(ctx context.Context) ([]record.Record, error) {
	return f.records, f.err
}

func row(m time.Month, provider string, handle float64) record.Record {
	r := record.New(testSchema, time.Date(2023, m, 1, 0, 0, 0, 0, time.UTC), provider)
	r.SetValue("Handle", handle)
	r.SetValue("GGR", handle/10)
	return r
}

func driver(key string, extractors ...jurisdiction.Extractor) jurisdiction.Driver {
	return jurisdiction.Driver{
		Key:    key,
		Schema: testSchema,
		Sources: func(ctx context.Context, env *jurisdiction.Env) ([]jurisdiction.Extractor, error) {
			return extractors, nil
		},
	}
}

func newRunner(t *testing.T) (*Runner, string, string) {
	t.Helper()
	root := t.TempDir()
	out := filepath.Join(root, "out")
	prior := filepath.Join(root, "prior")
	store, err := workbook.New(out, prior)
	require.NoError(t, err)
	r := New(store, nil)
	r.Metrics = logger.NewMetrics()
	return r, out, prior
}

func TestRunDriver_SkipsFailedDocuments(t *testing.T) {
	r, out, _ := newRunner(t)

	d := driver("testland-osb",
		&fakeExtractor{source: "a.pdf", records: []record.Record{row(time.January, "FanDuel", 100), row(time.January, "BetMGM", 50)}},
		&fakeExtractor{source: "b.pdf", err: record.Invalid("garbage", "a month heading")},
		&fakeExtractor{source: "c.pdf", err: errors.New("connection reset")},
		&fakeExtractor{source: "d.pdf", records: []record.Record{row(time.February, "FanDuel", 200)}},
	)

	summary := r.RunDriver(context.Background(), d)
	require.True(t, summary.OK(), "unexpected error: %v", summary.Err)
	assert.Equal(t, "testland-osb", summary.Driver)
	assert.Equal(t, filepath.Join(out, testSchema.FileName()), summary.Workbook)
	assert.Equal(t, 2, summary.Documents)
	require.Len(t, summary.Skipped, 2)
	assert.Equal(t, "b.pdf", summary.Skipped[0].Source)
	assert.Equal(t, "c.pdf", summary.Skipped[1].Source)
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 3, summary.Added)
	assert.Equal(t, 3, summary.Total)

	assert.Equal(t, int64(2), r.Metrics.Counter(MetricDocumentsScraped))
	assert.Equal(t, int64(2), r.Metrics.Counter(MetricDocumentsSkipped))
	assert.Equal(t, int64(1), r.Metrics.Counter(MetricDocumentsInvalid))
	assert.Equal(t, int64(3), r.Metrics.Counter(MetricRowsWritten))

	saved, _, err := workbook.Load(summary.Workbook, testSchema)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestRunDriver_MergesWithPrior(t *testing.T) {
	r, _, prior := newRunner(t)
	require.NoError(t, os.MkdirAll(prior, 0755))
	require.NoError(t, workbook.Save(filepath.Join(prior, testSchema.FileName()),
		[]record.Record{row(time.January, "FanDuel", 100)}, testSchema))

	d := driver("testland-osb",
		&fakeExtractor{source: "a.pdf", records: []record.Record{row(time.January, "FanDuel", 100), row(time.February, "FanDuel", 200)}},
	)

	summary := r.RunDriver(context.Background(), d)
	require.True(t, summary.OK(), "unexpected error: %v", summary.Err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 2, summary.Total)
}

func TestRunDriver_SourcesError(t *testing.T) {
	r, _, _ := newRunner(t)
	d := jurisdiction.Driver{
		Key:    "testland-osb",
		Schema: testSchema,
		Sources: func(ctx context.Context, env *jurisdiction.Env) ([]jurisdiction.Extractor, error) {
			return nil, errors.New("listing unavailable")
		},
	}

	summary := r.RunDriver(context.Background(), d)
	assert.False(t, summary.OK())
	assert.ErrorContains(t, summary.Err, "listing unavailable")
	assert.Empty(t, summary.Workbook)
	assert.Equal(t, int64(1), r.Metrics.Counter(MetricDriversFailed))
}

func TestRun_FreshEnvPerDriver(t *testing.T) {
	r, _, _ := newRunner(t)
	var envs []*jurisdiction.Env
	r.NewEnv = func() *jurisdiction.Env {
		env := &jurisdiction.Env{Store: r.Store}
		envs = append(envs, env)
		return env
	}
	var seen []*jurisdiction.Env
	capture := func(key string) jurisdiction.Driver {
		return jurisdiction.Driver{
			Key:    key,
			Schema: testSchema,
			Sources: func(ctx context.Context, env *jurisdiction.Env) ([]jurisdiction.Extractor, error) {
				seen = append(seen, env)
				return nil, nil
			},
		}
	}

	_, err := r.Run(context.Background(), []jurisdiction.Driver{capture("a-osb"), capture("b-osb")})
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, envs, seen)
	assert.NotSame(t, envs[0], envs[1])
}

func TestRun_DefaultEnvCanFetch(t *testing.T) {
	r, _, _ := newRunner(t)
	var env *jurisdiction.Env
	d := jurisdiction.Driver{
		Key:    "testland-osb",
		Schema: testSchema,
		Sources: func(ctx context.Context, e *jurisdiction.Env) ([]jurisdiction.Extractor, error) {
			env = e
			return nil, nil
		},
	}

	_, err := r.Run(context.Background(), []jurisdiction.Driver{d})
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.NotNil(t, env.Fetch, "drivers that discover links need a client")
	assert.Same(t, r.Store, env.Store)
}

func TestRun_AmbiguousPriorIsFatal(t *testing.T) {
	r, _, prior := newRunner(t)
	for _, dir := range []string{"2022", "2023"} {
		path := filepath.Join(prior, dir)
		require.NoError(t, os.MkdirAll(path, 0755))
		require.NoError(t, workbook.Save(filepath.Join(path, testSchema.FileName()),
			[]record.Record{row(time.January, "FanDuel", 100)}, testSchema))
	}

	ran := false
	second := jurisdiction.Driver{
		Key:    "zzz-osb",
		Schema: testSchema,
		Sources: func(ctx context.Context, env *jurisdiction.Env) ([]jurisdiction.Extractor, error) {
			ran = true
			return nil, nil
		},
	}

	summaries, err := r.Run(context.Background(), []jurisdiction.Driver{
		driver("testland-osb", &fakeExtractor{source: "a.pdf", records: []record.Record{row(time.March, "FanDuel", 1)}}),
		second,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, workbook.ErrAmbiguousPrior))
	assert.Len(t, summaries, 1)
	assert.False(t, ran, "run stops after a fatal error")
}

func TestRun_ContinuesAfterDriverFailure(t *testing.T) {
	r, _, _ := newRunner(t)
	failing := jurisdiction.Driver{
		Key:    "broken-osb",
		Schema: testSchema,
		Sources: func(ctx context.Context, env *jurisdiction.Env) ([]jurisdiction.Extractor, error) {
			return nil, errors.New("boom")
		},
	}

	summaries, err := r.Run(context.Background(), []jurisdiction.Driver{
		failing,
		driver("testland-osb", &fakeExtractor{source: "a.pdf", records: []record.Record{row(time.March, "FanDuel", 1)}}),
	})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].OK())
	assert.True(t, summaries[1].OK())
	assert.Equal(t, 1, summaries[1].Total)
}

func TestRun_CancelledContext(t *testing.T) {
	r, _, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := r.Run(ctx, []jurisdiction.Driver{driver("testland-osb")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summaries)
}
