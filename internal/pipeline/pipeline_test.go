package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/housing-cli/internal/analysis"
	"github.com/KaramelBytes/housing-cli/internal/dataset"
	"github.com/KaramelBytes/housing-cli/internal/summary"
)

const header = "Price,Number of Bedrooms,Number of Bathrooms,Floor Area (m2),Property Type,County,Latitude,Longitude,Listing Views,Date of Construction"

// Listing Views is uncorrelated with Price and Latitude is constant.
var listings = []string{
	header,
	`"€100,000",2 Bed,1 Bath,50 m²,Apartment,Dublin,53.3,-6.1,10,1990`,
	`"€200,000",3 Bed,1 Bath,60 m²,Apartment,Dublin,53.3,-6.2,20,2000`,
	`"€300,000",3 Bed,2 Bath,70 m²,Semi-D,Cork,53.3,-6.3,20,2010`,
	`"€400,000",4 Bed,2 Bath,80 m²,Detached,Galway,53.3,-6.4,10,2020`,
	`POA,3 Bed,2 Bath,90 m²,Detached,Cork,53.3,-6.5,99,2021`,
}

func fixture(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daft_housing_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

type stubGenerator struct {
	text   string
	err    error
	prompt string
	params summary.Params
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, p summary.Params) (string, error) {
	s.prompt, s.params = prompt, p
	return s.text, s.err
}

func TestAnalyzeReportMode(t *testing.T) {
	res, err := Analyze(context.Background(), DefaultOptions(fixture(t, listings)), nil)
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 5, res.Stats.Loaded)
	assert.Equal(t, 4, res.Stats.Kept)
	assert.Equal(t, 1, res.Stats.Dropped)
	assert.Equal(t, 1, res.Stats.NullCounts[dataset.ColPrice])
	assert.Equal(t, 5, res.Preview.Len())

	assert.InDelta(t, 250000, res.Summary.AvgPrice, 1e-9)
	assert.InDelta(t, 3.0, res.Summary.AvgBedrooms, 1e-9)
	assert.InDelta(t, 1.5, res.Summary.AvgBathrooms, 1e-9)
	assert.InDelta(t, 65.0, res.Summary.AvgFloorArea, 1e-9)
	assert.Equal(t, "Apartment", res.Summary.MostCommonType)
	assert.Equal(t, "Dublin", res.Summary.MostCommonCounty)

	assert.Equal(t, []string{dataset.ColViews}, res.LowCorrelated)
	assert.True(t, res.Dataset.Has(dataset.ColViews), "report mode keeps the dataset intact")
	assert.Empty(t, res.Dropped)

	_, ok := res.Corr.At(dataset.ColLatitude, dataset.ColPrice)
	assert.False(t, ok, "constant latitude has no defined correlation")

	assert.Contains(t, res.Prompt, "- Average price: €250,000\n")
	assert.Contains(t, res.Prompt, "- Most listed county: Dublin\n")
}

func TestAnalyzeDatasetMode(t *testing.T) {
	opt := DefaultOptions(fixture(t, listings))
	opt.Analysis.DropMode = DropDataset
	res, err := Analyze(context.Background(), opt, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{dataset.ColViews}, res.Dropped)
	assert.False(t, res.Dataset.Has(dataset.ColViews))
	assert.True(t, res.Preview.Has(dataset.ColViews))
	assert.InDelta(t, 250000, res.Summary.AvgPrice, 1e-9)

	md := res.Report().Markdown()
	assert.Contains(t, md, "Dropped from dataset: Listing Views")
	assert.Contains(t, md, "1 rows dropped")
}

func TestAnalyzeNoneMode(t *testing.T) {
	opt := DefaultOptions(fixture(t, listings))
	opt.Analysis.DropMode = DropNone
	res, err := Analyze(context.Background(), opt, nil)
	require.NoError(t, err)
	assert.Empty(t, res.LowCorrelated)
	assert.True(t, res.Dataset.Has(dataset.ColViews))
}

func TestAnalyzeThresholdIsConfigurable(t *testing.T) {
	opt := DefaultOptions(fixture(t, listings))
	opt.Analysis.Threshold = 0
	res, err := Analyze(context.Background(), opt, nil)
	require.NoError(t, err)
	assert.Empty(t, res.LowCorrelated)
}

func TestAnalyzeFromReader(t *testing.T) {
	opt := DefaultOptions("stdin")
	opt.Input = strings.NewReader(strings.Join(listings, "\n"))
	res, err := Analyze(context.Background(), opt, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Stats.Kept)
	assert.Equal(t, "stdin", res.Source)
}

func TestAnalyzeStageErrors(t *testing.T) {
	cases := []struct {
		name  string
		path  func(t *testing.T) string
		stage Stage
		want  error
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }, StageLoad, dataset.ErrFileNotFound},
		{"missing column", func(t *testing.T) string {
			return fixture(t, []string{"Price,County", `"€1",Cork`})
		}, StageClean, dataset.ErrSchema},
		{"nothing survives", func(t *testing.T) string {
			return fixture(t, []string{header, `POA,Studio,1 Bath,,Apartment,Cork,51.9,-8.4,10,2000`})
		}, StageStatistics, analysis.ErrEmptyDataset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Analyze(context.Background(), DefaultOptions(tc.path(t)), nil)
			require.Error(t, err)
			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.stage, se.Stage)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, strings.HasPrefix(err.Error(), string(tc.stage)+": "))
		})
	}
}

func TestAnalyzeCorrelationColumnMissing(t *testing.T) {
	opt := DefaultOptions(fixture(t, listings))
	opt.Analysis.Columns = []string{dataset.ColPrice, "Energy Rating"}
	_, err := Analyze(context.Background(), opt, nil)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageStatistics, se.Stage)
	assert.ErrorIs(t, err, dataset.ErrSchema)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, DefaultOptions(fixture(t, listings)), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeWritesOutput(t *testing.T) {
	res, err := Analyze(context.Background(), DefaultOptions(fixture(t, listings)), nil)
	require.NoError(t, err)

	gen := &stubGenerator{text: "Prices rise with floor area."}
	out := filepath.Join(t.TempDir(), "housing_summary.txt")
	params := summary.Params{Role: "data analyst", Temperature: summary.Temperature(0.7), MaxTokens: 300}
	text, err := Summarize(context.Background(), res, gen, params, out, nil)
	require.NoError(t, err)
	assert.Equal(t, "Prices rise with floor area.", text)
	assert.Equal(t, res.Prompt, gen.prompt)
	assert.Equal(t, params, gen.params)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, text, string(b))
}

func TestSummarizeFailureLeavesCoreResults(t *testing.T) {
	res, err := Analyze(context.Background(), DefaultOptions(fixture(t, listings)), nil)
	require.NoError(t, err)
	promptBefore := res.Prompt

	svcErr := &summary.ServiceError{Provider: "openai", Err: errors.New("connection refused")}
	out := filepath.Join(t.TempDir(), "housing_summary.txt")
	_, err = Summarize(context.Background(), res, &stubGenerator{err: svcErr}, summary.Params{}, out, nil)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageGenerate, se.Stage)
	assert.ErrorIs(t, err, summary.ErrService)
	assert.NoFileExists(t, out)
	assert.Equal(t, promptBefore, res.Prompt)
	assert.InDelta(t, 250000, res.Summary.AvgPrice, 1e-9)
}

func TestSummarizeWriteFailure(t *testing.T) {
	res, err := Analyze(context.Background(), DefaultOptions(fixture(t, listings)), nil)
	require.NoError(t, err)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err = Summarize(context.Background(), res, &stubGenerator{text: "ok"}, summary.Params{}, filepath.Join(blocker, "out.txt"), nil)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageWrite, se.Stage)
}

func TestParseDropMode(t *testing.T) {
	for in, want := range map[string]DropMode{"": DropReport, "none": DropNone, "Report": DropReport, " dataset ": DropDataset} {
		got, err := ParseDropMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDropMode("columns")
	assert.Error(t, err)
}
