package models

// DailyStats represents a per-day datapoint for admin charts
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
