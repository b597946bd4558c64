package managers

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/models"
	"github.com/paulfarrow/runclubbackend/store"
)

const runsDocument = "runs"

// recentRunsCap bounds the stored global feed; the API returns at most
// recentRunsShown of it. Personal histories are never truncated.
const (
	recentRunsCap   = 20
	recentRunsShown = 10
)

// Runs owns the runs document: the club-wide distance total, the recent-run
// feed and per-user histories.
type Runs struct {
	mu    sync.Mutex
	store *store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewRuns(st *store.Store, log *zap.SugaredLogger) *Runs {
	return &Runs{store: st, log: log, now: time.Now}
}

func (m *Runs) readDoc() *models.RunsDocument {
	doc := models.NewRunsDocument()
	m.store.Read(runsDocument, doc)
	if doc.PersonalRuns == nil {
		doc.PersonalRuns = map[string][]models.Run{}
	}
	if doc.RecentRuns == nil {
		doc.RecentRuns = []models.Run{}
	}
	return doc
}

// ListRuns returns the whole runs document, as the site's home page expects.
func (m *Runs) ListRuns() *models.RunsDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readDoc()
}

// AddRunResult is the aggregate snapshot returned after a submission.
type AddRunResult struct {
	TotalKm    string
	RecentRuns []models.Run
	UserStats  models.UserStats
	UserID     string
}

// AddRun records a run for an already-authenticated user: prepends to the
// capped recent feed, appends to the user's history and bumps the total.
func (m *Runs) AddRun(userID, firstName, lastName, location string, distance float64) (AddRunResult, error) {
	if location == "" || distance == 0 {
		return AddRunResult{}, ErrMissingRunFields
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return AddRunResult{}, ErrInvalidDistance
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	now := m.now().UTC()

	run := models.Run{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		FirstName: firstName,
		LastName:  lastName,
		Location:  location,
		Distance:  distance,
		Timestamp: now.Format(time.RFC3339),
		UserID:    userID,
	}

	doc.TotalKm += distance
	doc.RecentRuns = append([]models.Run{run}, doc.RecentRuns...)
	if len(doc.RecentRuns) > recentRunsCap {
		doc.RecentRuns = doc.RecentRuns[:recentRunsCap]
	}
	doc.PersonalRuns[userID] = append(doc.PersonalRuns[userID], run)

	if !m.store.Write(runsDocument, doc) {
		return AddRunResult{}, ErrPersistence
	}

	m.log.Infow("run added", "userId", userID, "distance", distance)

	recent := doc.RecentRuns
	if len(recent) > recentRunsShown {
		recent = recent[:recentRunsShown]
	}
	return AddRunResult{
		TotalKm:    fmt.Sprintf("%.1f", doc.TotalKm),
		RecentRuns: recent,
		UserStats:  statsFor(doc, userID),
		UserID:     userID,
	}, nil
}

// UserStats returns a user's aggregate stats; unknown users get all-zero
// stats rather than an error, which the stats page relies on.
func (m *Runs) UserStats(userID string) models.UserStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return statsFor(m.readDoc(), userID)
}

func statsFor(doc *models.RunsDocument, userID string) models.UserStats {
	userRuns := doc.PersonalRuns[userID]

	var total float64
	for _, run := range userRuns {
		total += run.Distance
	}

	average := "0"
	if len(userRuns) > 0 {
		average = fmt.Sprintf("%.1f", total/float64(len(userRuns)))
	}

	// Last 5 runs, newest first.
	n := len(userRuns)
	start := n - 5
	if start < 0 {
		start = 0
	}
	recent := make([]models.Run, 0, n-start)
	for i := n - 1; i >= start; i-- {
		recent = append(recent, userRuns[i])
	}

	return models.UserStats{
		TotalDistance:   fmt.Sprintf("%.1f", total),
		TotalRuns:       n,
		AverageDistance: average,
		RecentRuns:      recent,
	}
}

// Leaderboard ranks every user with at least one run by total distance,
// descending. Display names come from each user's most recent run.
func (m *Runs) Leaderboard() []models.LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	entries := make([]models.LeaderboardEntry, 0, len(doc.PersonalRuns))
	totals := map[string]float64{}

	for userID, runs := range doc.PersonalRuns {
		if len(runs) == 0 {
			continue
		}
		var total float64
		for _, run := range runs {
			total += run.Distance
		}
		latest := runs[len(runs)-1]
		totals[userID] = total
		entries = append(entries, models.LeaderboardEntry{
			UserID:        userID,
			FirstName:     latest.FirstName,
			LastName:      latest.LastName,
			TotalDistance: fmt.Sprintf("%.1f", total),
			TotalRuns:     len(runs),
			LastRun:       latest.Timestamp,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return totals[entries[i].UserID] > totals[entries[j].UserID]
	})
	return entries
}
