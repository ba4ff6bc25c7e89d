package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"propflow/internal/ingest/load"
	"propflow/internal/ingest/sources"
	"propflow/internal/ingest/transform"
	"propflow/internal/ingest/validate"
	"propflow/internal/property"
	"propflow/internal/property/store"
)

// stubExtractor returns scripted records or a scripted failure.
type stubExtractor struct {
	name    sources.SourceName
	records []property.RawRecord
	err     error
}

func (s *stubExtractor) Source() sources.SourceName { return s.name }

func (s *stubExtractor) Extract(_ context.Context, _ sources.Descriptor) ([]property.RawRecord, error) {
	return s.records, s.err
}

func floatPtr(v float64) *float64 { return &v }

func rawRecord(address string) property.RawRecord {
	lat, lng := 32.75, -97.33
	return property.RawRecord{
		Address:        address,
		City:           "Fort Worth",
		State:          "TX",
		ZipCode:        "76101",
		Latitude:       &lat,
		Longitude:      &lng,
		EstimatedValue: floatPtr(200000),
		EquityPercent:  floatPtr(50),
		Source:         "test",
	}
}

type PipelineSuite struct {
	suite.Suite
	store *store.MemoryStore
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.store = store.NewMemoryStore()
}

func (s *PipelineSuite) newPipeline(e Extractor) *Pipeline {
	desc := sources.Descriptor{Name: e.Source(), Coverage: []string{"76101"}}
	return New(desc, e, transform.New(), validate.New(), load.New(s.store))
}

func (s *PipelineSuite) TestSuccessfulRun() {
	extractor := &stubExtractor{name: "test", records: []property.RawRecord{
		rawRecord("100 First St"),
		rawRecord("200 Second St"),
		rawRecord("300 Third St"),
	}}

	summary := s.newPipeline(extractor).Run(context.Background())

	s.True(summary.Success)
	s.Equal("test", summary.Source)
	s.Equal(3, summary.Processed)
	s.Equal(3, summary.Added)
	s.Zero(summary.Updated)
	s.Zero(summary.Skipped)
	s.Empty(summary.Errors)
	s.NotZero(summary.RunID)
	s.Equal(3, s.store.Count())
}

func (s *PipelineSuite) TestExtractorFailureIsTheOnlyWholeRunFailure() {
	extractor := &stubExtractor{name: "test", err: errors.New("client construction exploded")}

	summary := s.newPipeline(extractor).Run(context.Background())

	s.False(summary.Success)
	s.Zero(summary.Processed)
	s.Zero(summary.Added + summary.Updated + summary.Skipped)
	s.Require().Len(summary.Errors, 1)
	s.Contains(summary.Errors[0], "client construction exploded")
	s.Zero(s.store.Count())
}

func (s *PipelineSuite) TestEmptyExtractionShortCircuits() {
	extractor := &stubExtractor{name: "test"}

	summary := s.newPipeline(extractor).Run(context.Background())

	s.True(summary.Success)
	s.Zero(summary.Processed)
	s.Equal([]string{"No data extracted from source"}, summary.Errors)
	s.Zero(s.store.Count())
}

func (s *PipelineSuite) TestInvalidEntitiesAreExcludedFromLoading() {
	bad := rawRecord("666 Overleveraged Ln")
	bad.EquityPercent = floatPtr(150)

	extractor := &stubExtractor{name: "test", records: []property.RawRecord{
		rawRecord("100 First St"),
		bad,
	}}

	summary := s.newPipeline(extractor).Run(context.Background())

	s.True(summary.Success)
	s.Equal(2, summary.Processed)
	s.Equal(1, summary.Added)
	s.Require().Len(summary.Errors, 1)
	s.Contains(summary.Errors[0], "666 Overleveraged Ln")
	s.Contains(summary.Errors[0], "100%")
	s.Equal(1, s.store.Count())
}

func (s *PipelineSuite) TestRerunUpdatesInsteadOfDuplicating() {
	extractor := &stubExtractor{name: "test", records: []property.RawRecord{
		rawRecord("100 First St"),
		rawRecord("200 Second St"),
	}}
	p := s.newPipeline(extractor)

	first := p.Run(context.Background())
	s.Equal(2, first.Added)
	s.Zero(first.Updated)

	second := p.Run(context.Background())
	s.Zero(second.Added)
	s.Equal(2, second.Updated)
	s.Equal(2, s.store.Count())
}

func (s *PipelineSuite) TestCountInvariants() {
	bad := rawRecord("1 Bad")
	bad.EquityPercent = floatPtr(120)

	extractor := &stubExtractor{name: "test", records: []property.RawRecord{
		rawRecord("100 First St"), bad, rawRecord("300 Third St"),
	}}

	summary := s.newPipeline(extractor).Run(context.Background())

	s.Equal(3, summary.Processed)
	s.LessOrEqual(summary.Added+summary.Updated+summary.Skipped, summary.Processed)
}

func (s *PipelineSuite) TestCancellationFailsTheRun() {
	extractor := &stubExtractor{name: "test", records: []property.RawRecord{
		rawRecord("100 First St"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := s.newPipeline(extractor).Run(ctx)

	s.False(summary.Success)
	s.NotEmpty(summary.Errors)
	s.Zero(s.store.Count())
}
