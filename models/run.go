package models

// Run is a single logged run. Runs are immutable once created; they live in
// the bounded recent feed and in the owner's unbounded personal history.
type Run struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Location  string  `json:"location"`
	Distance  float64 `json:"distance"`
	Timestamp string  `json:"timestamp"`
	UserID    string  `json:"userId"`
}

// BaselineKm seeds totalKm for a fresh runs.json. The club logged 20 km
// before the site went live.
const BaselineKm = 20

// RunsDocument is the singleton runs.json aggregate.
type RunsDocument struct {
	TotalKm      float64          `json:"totalKm"`
	RecentRuns   []Run            `json:"recentRuns"`
	PersonalRuns map[string][]Run `json:"personalRuns"`
}

func NewRunsDocument() *RunsDocument {
	return &RunsDocument{
		TotalKm:      BaselineKm,
		RecentRuns:   []Run{},
		PersonalRuns: map[string][]Run{},
	}
}

// UserStats is the per-user aggregate returned alongside run submissions and
// by GET /api/user/:userId. Distances are formatted to one decimal place.
type UserStats struct {
	TotalDistance   string `json:"totalDistance"`
	TotalRuns       int    `json:"totalRuns"`
	AverageDistance string `json:"averageDistance"`
	RecentRuns      []Run  `json:"recentRuns"`
}

// LeaderboardEntry ranks one user by total logged distance. The display name
// comes from the user's most recent run, not the user directory.
type LeaderboardEntry struct {
	UserID        string `json:"userId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	TotalDistance string `json:"totalDistance"`
	TotalRuns     int    `json:"totalRuns"`
	LastRun       string `json:"lastRun"`
}
