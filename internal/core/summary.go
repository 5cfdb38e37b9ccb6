package core

import "time"

const dateLayout = "2006-01-02"

// Summarize counts valid and expired service entries across all groups of a
// success payload. A nil payload yields zero counts.
func Summarize(payload *WarrantyPayload) ServiceCounts {
	counts := ServiceCounts{}
	if payload == nil {
		return counts
	}

	for _, serviceType := range ServiceTypes {
		for _, entry := range payload.Data.DetailInfo[serviceType] {
			if entry.Expired() {
				counts.Expired++
			} else {
				counts.Valid++
			}
		}
	}

	counts.Total = counts.Valid + counts.Expired
	return counts
}

// Coverage is the most relevant warranty window for a machine: the entry
// whose end date is furthest in the future.
type Coverage struct {
	StartDate     string
	EndDate       string
	RemainingDays int
}

// InWarranty reports whether the coverage window is still open.
func (c Coverage) InWarranty() bool {
	return c.RemainingDays > 0
}

// LatestCoverage selects the service entry with the latest end date across
// all groups. Entries with unparseable dates are skipped. Returns false when
// no entry carries a usable window.
func LatestCoverage(payload *WarrantyPayload) (Coverage, bool) {
	if payload == nil {
		return Coverage{}, false
	}

	var (
		found     bool
		coverage  Coverage
		latestEnd time.Time
	)

	for _, serviceType := range ServiceTypes {
		for _, entry := range payload.Data.DetailInfo[serviceType] {
			if entry.EndDate == "" {
				continue
			}
			end, err := time.Parse(dateLayout, entry.EndDate)
			if err != nil {
				continue
			}
			if _, err := time.Parse(dateLayout, entry.StartDate); err != nil {
				continue
			}
			if !found || end.After(latestEnd) {
				found = true
				latestEnd = end
				coverage = Coverage{
					StartDate:     entry.StartDate,
					EndDate:       entry.EndDate,
					RemainingDays: int(entry.DateDifference),
				}
			}
		}
	}

	return coverage, found
}

// Services flattens the payload's service-detail groups into display order.
func Services(payload *WarrantyPayload) []ServiceEntry {
	if payload == nil {
		return nil
	}

	entries := make([]ServiceEntry, 0)
	for _, serviceType := range ServiceTypes {
		entries = append(entries, payload.Data.DetailInfo[serviceType]...)
	}
	return entries
}
