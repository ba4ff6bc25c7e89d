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

// RentcastExtractor pulls listing and valuation data from the RentCast API,
// one ZIP code per request.
type RentcastExtractor struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewRentcastExtractor builds the RentCast adapter.
func NewRentcastExtractor(baseURL, apiKey string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *RentcastExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RentcastExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

func (e *RentcastExtractor) Source() SourceName {
	return SourceRentcast
}

// Extract walks the coverage list sequentially, skipping failed areas.
func (e *RentcastExtractor) Extract(ctx context.Context, desc Descriptor) ([]property.RawRecord, error) {
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
				"source", SourceRentcast,
				"area", area,
				"category", Category(err),
				"error", err,
			)
			continue
		}
		records = append(records, page...)
	}

	e.logger.Info("extraction complete",
		"source", SourceRentcast,
		"areas", len(desc.Coverage),
		"records", len(records),
	)
	return records, nil
}

type rentcastProperty struct {
	AddressLine1     string   `json:"addressLine1"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zipCode"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	PropertyType     string   `json:"propertyType"`
	Bedrooms         *int     `json:"bedrooms"`
	Bathrooms        *float64 `json:"bathrooms"`
	SquareFootage    *int     `json:"squareFootage"`
	LotSize          *float64 `json:"lotSize"`
	YearBuilt        *int     `json:"yearBuilt"`
	TaxAssessedValue *float64 `json:"taxAssessedValue"`
	EstimatedValue   *float64 `json:"estimatedValue"`
	OwnerOccupied    *bool    `json:"ownerOccupied"`
	Owner            struct {
		Names []string `json:"names"`
		Type  string   `json:"type"`
	} `json:"owner"`
}

func (e *RentcastExtractor) fetchArea(ctx context.Context, area string) ([]property.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/properties?zipCode=%s&limit=100", e.baseURL, url.QueryEscape(area))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewSourceError(ErrorInternal, SourceRentcast, area, "build request", err)
	}
	req.Header.Set("X-Api-Key", e.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, NewSourceError(categoryForTransport(err), SourceRentcast, area, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewSourceError(categoryForStatus(resp.StatusCode), SourceRentcast, area,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewSourceError(categoryForTransport(err), SourceRentcast, area, "read body", err)
	}

	// RentCast returns a bare JSON array.
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, NewSourceError(ErrorBadData, SourceRentcast, area, "decode body", err)
	}

	records := make([]property.RawRecord, 0, len(items))
	for _, raw := range items {
		var p rentcastProperty
		if err := json.Unmarshal(raw, &p); err != nil {
			e.logger.Warn("malformed rentcast record, skipping",
				"area", area,
				"error", err,
			)
			continue
		}
		records = append(records, e.mapRecord(p, raw))
	}
	return records, nil
}

var rentcastPropertyTypes = map[string]string{
	"single family": "Single-Family",
	"multi family":  "Multi-Family",
	"commercial":    "Commercial",
	"condo":         "Condo",
	"townhouse":     "Townhouse",
}

var rentcastOwnerTypes = map[string]string{
	"individual":   "individual",
	"llc":          "llc",
	"organization": "corporation",
	"corporation":  "corporation",
	"trust":        "trust",
	"partnership":  "partnership",
}

// mapRecord converts one RentCast property into the raw record shape. A
// non-owner-occupied individual owner is treated as absentee.
func (e *RentcastExtractor) mapRecord(p rentcastProperty, raw json.RawMessage) property.RawRecord {
	rec := property.RawRecord{
		Address:        p.AddressLine1,
		City:           p.City,
		State:          p.State,
		ZipCode:        p.ZipCode,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		SquareFeet:     p.SquareFootage,
		LotSize:        p.LotSize,
		YearBuilt:      p.YearBuilt,
		AssessedValue:  p.TaxAssessedValue,
		EstimatedValue: p.EstimatedValue,
		Source:         string(SourceRentcast),
		RawData:        raw,
	}

	if class, ok := rentcastPropertyTypes[strings.ToLower(p.PropertyType)]; ok {
		rec.PropertyType = class
	} else if p.PropertyType != "" {
		rec.PropertyType = p.PropertyType
	}

	if len(p.Owner.Names) > 0 {
		rec.OwnerName = p.Owner.Names[0]
	}

	ownerType := "individual"
	if mapped, ok := rentcastOwnerTypes[strings.ToLower(p.Owner.Type)]; ok {
		ownerType = mapped
	}
	if ownerType == "individual" && p.OwnerOccupied != nil && !*p.OwnerOccupied {
		ownerType = "absentee"
	}
	rec.OwnerType = ownerType

	return rec
}
