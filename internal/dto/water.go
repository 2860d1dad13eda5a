package dto

// UpdateWaterRequest is the JSON body for POST /api/data. Both fields
// are optional; nil leaves the stored value unchanged.
type UpdateWaterRequest struct {
	Consumed *int `json:"consumed"`
	Goal     *int `json:"goal"`
}

// WaterDataResponse is the current state returned by GET /api/data.
type WaterDataResponse struct {
	Consumed   int `json:"consumed"`
	Goal       int `json:"goal"`
	Streak     int `json:"streak"`
	BestStreak int `json:"best_streak"`
}

// UpdateWaterResponse is returned by POST /api/data.
type UpdateWaterResponse struct {
	Message    string `json:"message"`
	Streak     int    `json:"streak"`
	BestStreak int    `json:"best_streak"`
}

// StatisticsResponse is returned by GET /api/statistics.
type StatisticsResponse struct {
	LifetimeConsumed        int64 `json:"lifetime_consumed"`
	AverageDailyConsumption int   `json:"average_daily_consumption"`
	DaysSinceRegistration   int   `json:"days_since_registration"`
	BestStreak              int   `json:"best_streak"`
	CurrentGoal             int   `json:"current_goal"`
}
