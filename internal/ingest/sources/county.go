package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"propflow/internal/ingest/ratelimit"
	"propflow/internal/property"
)

// CountyExtractor pulls appraisal-district parcel records from the county
// open records API. County data is the slowest provider, so the adapter keeps
// the longest inter-request delay.
type CountyExtractor struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewCountyExtractor builds the county records adapter.
func NewCountyExtractor(baseURL, apiKey string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *CountyExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CountyExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

func (e *CountyExtractor) Source() SourceName {
	return SourceCounty
}

// Extract walks the coverage list sequentially, skipping failed areas.
func (e *CountyExtractor) Extract(ctx context.Context, desc Descriptor) ([]property.RawRecord, error) {
	var records []property.RawRecord
	for _, area := range desc.Coverage {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := e.fetchArea(ctx, area)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("area extraction failed, skipping",
				"source", SourceCounty,
				"area", area,
				"category", Category(err),
				"error", err,
			)
			continue
		}
		records = append(records, page...)
	}

	e.logger.Info("extraction complete",
		"source", SourceCounty,
		"areas", len(desc.Coverage),
		"records", len(records),
	)
	return records, nil
}

type countyEnvelope struct {
	Records []json.RawMessage `json:"records"`
}

type countyRecord struct {
	ParcelID      string   `json:"parcel_id"`
	SitusAddress  string   `json:"situs_address"`
	SitusCity     string   `json:"situs_city"`
	SitusState    string   `json:"situs_state"`
	SitusZip      string   `json:"situs_zip"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	OwnerName     string   `json:"owner_name"`
	OwnerKind     string   `json:"owner_kind"`
	LandUse       string   `json:"land_use"`
	YearBuilt     *int     `json:"year_built"`
	LivingArea    *int     `json:"living_area_sqft"`
	LotAcres      *float64 `json:"lot_acres"`
	AssessedValue *float64 `json:"assessed_value"`
	TaxDelinquent bool     `json:"tax_delinquent"`
	InForeclosure bool     `json:"in_foreclosure"`
}

func (e *CountyExtractor) fetchArea(ctx context.Context, area string) ([]property.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/parcels?zip=%s&limit=200", e.baseURL, url.QueryEscape(area))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewSourceError(ErrorInternal, SourceCounty, area, "build request", err)
	}
	req.Header.Set("X-Api-Key", e.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, NewSourceError(categoryForTransport(err), SourceCounty, area, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewSourceError(categoryForStatus(resp.StatusCode), SourceCounty, area,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewSourceError(categoryForTransport(err), SourceCounty, area, "read body", err)
	}

	var envelope countyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewSourceError(ErrorBadData, SourceCounty, area, "decode body", err)
	}

	records := make([]property.RawRecord, 0, len(envelope.Records))
	for _, raw := range envelope.Records {
		var rec countyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			e.logger.Warn("malformed county record, skipping",
				"area", area,
				"error", err,
			)
			continue
		}
		records = append(records, e.mapRecord(rec, raw))
	}
	return records, nil
}

var countyLandUses = map[string]string{
	"A1": "Single-Family",
	"B1": "Multi-Family",
	"F1": "Commercial",
}

var countyOwnerKinds = map[string]string{
	"person":      "individual",
	"llc":         "llc",
	"corp":        "corporation",
	"corporation": "corporation",
	"trust":       "trust",
	"partnership": "partnership",
	"absentee":    "absentee",
}

// mapRecord converts one appraisal record into the raw record shape. County
// delinquency and foreclosure flags become tags the transformer scores on.
func (e *CountyExtractor) mapRecord(rec countyRecord, raw json.RawMessage) property.RawRecord {
	out := property.RawRecord{
		Address:       rec.SitusAddress,
		City:          rec.SitusCity,
		State:         rec.SitusState,
		ZipCode:       rec.SitusZip,
		Latitude:      rec.Latitude,
		Longitude:     rec.Longitude,
		OwnerName:     rec.OwnerName,
		OwnerType:     countyOwnerType(rec.OwnerKind),
		YearBuilt:     rec.YearBuilt,
		SquareFeet:    rec.LivingArea,
		LotSize:       rec.LotAcres,
		AssessedValue: rec.AssessedValue,
		Source:        string(SourceCounty),
		RawData:       raw,
	}

	if class, ok := countyLandUses[strings.ToUpper(rec.LandUse)]; ok {
		out.PropertyType = class
	}

	if rec.TaxDelinquent {
		out.Tags = append(out.Tags, "tax-delinquent")
	}
	if rec.InForeclosure {
		out.Tags = append(out.Tags, "pre-foreclosure")
	}

	return out
}

// countyOwnerType maps the county's owner vocabulary into the fixed taxonomy.
// County data is too inconsistent to assume individuals, so unrecognized
// values default to unknown.
func countyOwnerType(kind string) string {
	if mapped, ok := countyOwnerKinds[strings.ToLower(kind)]; ok {
		return mapped
	}
	return "unknown"
}
