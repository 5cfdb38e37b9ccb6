package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Outcome tags the result of a single warranty lookup.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ServiceTypes are the fixed service-detail group tags the lookup service
// returns, in display order.
var ServiceTypes = []string{"warranty", "onsite", "other"}

// ServiceEntry is one maintenance/coverage record for a machine.
type ServiceEntry struct {
	ServiceProductName string  `json:"ServiceProductName"`
	ServiceDescription string  `json:"ServiceDescription,omitempty"`
	StartDate          string  `json:"StartDate"`
	EndDate            string  `json:"EndDate"`
	DateDifference     FlexInt `json:"DateDifference"`
}

// Expired reports whether this entry's coverage has lapsed.
func (e ServiceEntry) Expired() bool {
	return int(e.DateDifference) <= 0
}

// WarrantyPayload is the decoded lookup service response, stored verbatim
// on successful results.
type WarrantyPayload struct {
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message,omitempty"`
	Data       WarrantyDetail `json:"data"`
}

// WarrantyDetail wraps the service-detail groups keyed by service type tag.
type WarrantyDetail struct {
	DetailInfo map[string][]ServiceEntry `json:"detailinfo"`
}

// ServiceCounts summarizes coverage across all groups of a success payload.
type ServiceCounts struct {
	Valid   int `json:"valid_services"`
	Expired int `json:"expired_services"`
	Total   int `json:"total_services"`
}

// Provenance captures metadata about how a lookup was resolved.
type Provenance struct {
	CheckID     string    `json:"check_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at"`
	FromCache   bool      `json:"from_cache,omitempty"`
}

// QueryResult is the immutable outcome of looking up one serial. Exactly one
// of Payload (success) or FailureReason (failure) is populated; Outcome is
// the tag. A recomputation replaces the whole value.
type QueryResult struct {
	Serial        string           `json:"serial"`
	Sequence      int              `json:"sequence"`
	BatchTotal    int              `json:"batch_total"`
	Outcome       Outcome          `json:"outcome"`
	Payload       *WarrantyPayload `json:"payload,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
	RetryCount    int              `json:"retry_count"`
	ServiceCounts ServiceCounts    `json:"service_counts"`
	Provenance    Provenance       `json:"provenance"`
}

// Success reports whether the result carries a success payload.
func (r *QueryResult) Success() bool {
	return r != nil && r.Outcome == OutcomeSuccess
}

// NewSuccessResult builds a success result and derives its service counts
// from the payload.
func NewSuccessResult(serial string, sequence, total int, payload *WarrantyPayload, retries int, prov Provenance) *QueryResult {
	return &QueryResult{
		Serial:        serial,
		Sequence:      sequence,
		BatchTotal:    total,
		Outcome:       OutcomeSuccess,
		Payload:       payload,
		RetryCount:    retries,
		ServiceCounts: Summarize(payload),
		Provenance:    prov,
	}
}

// NewFailureResult builds a failure result carrying the last error or
// non-success status message observed.
func NewFailureResult(serial string, sequence, total int, reason string, retries int, prov Provenance) *QueryResult {
	return &QueryResult{
		Serial:        serial,
		Sequence:      sequence,
		BatchTotal:    total,
		Outcome:       OutcomeFailure,
		FailureReason: reason,
		RetryCount:    retries,
		Provenance:    prov,
	}
}

// BatchSummary reports the aggregate outcome of one orchestrator run.
// Failed serials are data, not an error: the caller re-submits that subset.
type BatchSummary struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	Total            int       `json:"total"`
	Succeeded        int       `json:"succeeded"`
	Failed           int       `json:"failed"`
	FromCache        int       `json:"from_cache"`
	FailedSerials    []string  `json:"failed_serials,omitempty"`
	CheckpointErrors int       `json:"checkpoint_errors,omitempty"`
}

// FlexInt decodes a JSON number or a numeric string. The lookup service is
// inconsistent about how it encodes DateDifference.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	value, err := strconv.Atoi(raw)
	if err != nil {
		// Some responses carry fractional day counts.
		parsed, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fmt.Errorf("invalid integer value %q", raw)
		}
		value = int(parsed)
	}
	*f = FlexInt(value)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}
