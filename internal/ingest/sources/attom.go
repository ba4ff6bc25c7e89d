package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"propflow/internal/ingest/ratelimit"
	"propflow/internal/property"
)

// AttomExtractor pulls parcel and assessment data from the ATTOM property
// API, one postal code per request.
type AttomExtractor struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewAttomExtractor builds the ATTOM adapter.
func NewAttomExtractor(baseURL, apiKey string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *AttomExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttomExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

func (e *AttomExtractor) Source() SourceName {
	return SourceAttom
}

// Extract walks the coverage list sequentially. A failed area is logged and
// skipped; only cancellation aborts the whole extraction.
func (e *AttomExtractor) Extract(ctx context.Context, desc Descriptor) ([]property.RawRecord, error) {
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
				"source", SourceAttom,
				"area", area,
				"category", Category(err),
				"error", err,
			)
			continue
		}
		records = append(records, page...)
	}

	e.logger.Info("extraction complete",
		"source", SourceAttom,
		"areas", len(desc.Coverage),
		"records", len(records),
	)
	return records, nil
}

type attomEnvelope struct {
	Property []json.RawMessage `json:"property"`
}

type attomProperty struct {
	Address struct {
		Line1       string `json:"line1"`
		Locality    string `json:"locality"`
		CountrySubd string `json:"countrySubd"`
		Postal1     string `json:"postal1"`
	} `json:"address"`
	Location struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
	Summary struct {
		PropClass string `json:"propclass"`
		YearBuilt int    `json:"yearbuilt"`
	} `json:"summary"`
	Building struct {
		Rooms struct {
			Beds       int     `json:"beds"`
			BathsTotal float64 `json:"bathstotal"`
		} `json:"rooms"`
		Size struct {
			UniversalSize int `json:"universalsize"`
		} `json:"size"`
	} `json:"building"`
	Lot struct {
		LotSize1 float64 `json:"lotsize1"`
	} `json:"lot"`
	Assessment struct {
		Assessed struct {
			AssdTtlValue float64 `json:"assdttlvalue"`
		} `json:"assessed"`
		Market struct {
			MktTtlValue float64 `json:"mktttlvalue"`
		} `json:"market"`
	} `json:"assessment"`
	Owner struct {
		Owner1 struct {
			Name string `json:"name"`
		} `json:"owner1"`
		Type                string `json:"type"`
		AbsenteeOwnerStatus string `json:"absenteeownerstatus"`
	} `json:"owner"`
}

func (e *AttomExtractor) fetchArea(ctx context.Context, area string) ([]property.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/property/expandedprofile?postalcode=%s&pagesize=100",
		e.baseURL, url.QueryEscape(area))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewSourceError(ErrorInternal, SourceAttom, area, "build request", err)
	}
	req.Header.Set("apikey", e.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, NewSourceError(categoryForTransport(err), SourceAttom, area, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewSourceError(categoryForStatus(resp.StatusCode), SourceAttom, area,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewSourceError(categoryForTransport(err), SourceAttom, area, "read body", err)
	}

	var envelope attomEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewSourceError(ErrorBadData, SourceAttom, area, "decode body", err)
	}

	records := make([]property.RawRecord, 0, len(envelope.Property))
	for _, raw := range envelope.Property {
		var p attomProperty
		if err := json.Unmarshal(raw, &p); err != nil {
			e.logger.Warn("malformed attom record, skipping",
				"area", area,
				"error", err,
			)
			continue
		}
		records = append(records, e.mapRecord(p, raw))
	}
	return records, nil
}

var attomPropertyClasses = map[string]string{
	"SFR": "Single-Family",
	"APT": "Multi-Family",
	"MFR": "Multi-Family",
	"COM": "Commercial",
	"CND": "Condo",
}

var attomOwnerTypes = map[string]string{
	"individual":  "individual",
	"llc":         "llc",
	"company":     "corporation",
	"corporation": "corporation",
	"trust":       "trust",
	"partnership": "partnership",
}

// mapRecord converts one ATTOM property into the raw record shape. The
// original payload rides along in RawData for audit.
func (e *AttomExtractor) mapRecord(p attomProperty, raw json.RawMessage) property.RawRecord {
	rec := property.RawRecord{
		Address: p.Address.Line1,
		City:    p.Address.Locality,
		State:   p.Address.CountrySubd,
		ZipCode: p.Address.Postal1,
		Source:  string(SourceAttom),
		RawData: raw,
	}

	if lat, err := strconv.ParseFloat(p.Location.Latitude, 64); err == nil && lat != 0 {
		rec.Latitude = &lat
	}
	if lng, err := strconv.ParseFloat(p.Location.Longitude, 64); err == nil && lng != 0 {
		rec.Longitude = &lng
	}

	if class, ok := attomPropertyClasses[strings.ToUpper(p.Summary.PropClass)]; ok {
		rec.PropertyType = class
	} else if p.Summary.PropClass != "" {
		rec.PropertyType = p.Summary.PropClass
	}

	if p.Summary.YearBuilt > 0 {
		yb := p.Summary.YearBuilt
		rec.YearBuilt = &yb
	}
	if p.Building.Rooms.Beds > 0 {
		beds := p.Building.Rooms.Beds
		rec.Bedrooms = &beds
	}
	if p.Building.Rooms.BathsTotal > 0 {
		baths := p.Building.Rooms.BathsTotal
		rec.Bathrooms = &baths
	}
	if p.Building.Size.UniversalSize > 0 {
		sqft := p.Building.Size.UniversalSize
		rec.SquareFeet = &sqft
	}
	if p.Lot.LotSize1 > 0 {
		lot := p.Lot.LotSize1
		rec.LotSize = &lot
	}
	if p.Assessment.Assessed.AssdTtlValue > 0 {
		assessed := p.Assessment.Assessed.AssdTtlValue
		rec.AssessedValue = &assessed
	}
	if p.Assessment.Market.MktTtlValue > 0 {
		market := p.Assessment.Market.MktTtlValue
		rec.EstimatedValue = &market
	}

	rec.OwnerName = p.Owner.Owner1.Name
	rec.OwnerType = attomOwnerType(p.Owner.Type, p.Owner.AbsenteeOwnerStatus)

	return rec
}

// attomOwnerType maps ATTOM's owner vocabulary into the fixed taxonomy,
// defaulting to individual for anything unrecognized.
func attomOwnerType(ownerType, absenteeStatus string) string {
	if strings.EqualFold(absenteeStatus, "ABSENTEE OWNER") {
		return "absentee"
	}
	if mapped, ok := attomOwnerTypes[strings.ToLower(ownerType)]; ok {
		return mapped
	}
	return "individual"
}
