package domain

// Event is a scheduled happening near a zone, shown alongside predictions
type Event struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	ZoneID         int    `json:"zone_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	ExpectedImpact string `json:"expected_impact"` // "High", "Medium", "Low"
}
