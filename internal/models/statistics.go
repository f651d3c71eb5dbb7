package models

// MunicipalityCount is one row of the municipality ranking.
type MunicipalityCount struct {
	Municipality string `json:"municipality"`
	Count        int    `json:"count"`
}

// MonthlyCount is one bucket of the monthly time series. Month is 1-12.
type MonthlyCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

// OccurrenceStatistics is the dashboard payload. Slices are computed
// independently; a slice that failed to compute comes back zeroed.
type OccurrenceStatistics struct {
	Year              int                 `json:"year"`
	ByStatus          StatusCounts        `json:"by_status"`
	ByType            map[string]int      `json:"by_type"`
	TopMunicipalities []MunicipalityCount `json:"top_municipalities"`
	Monthly           []MonthlyCount      `json:"monthly"`
}
