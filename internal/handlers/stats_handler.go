package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"vstepprep/internal/service"
)

// StatsHandler serves the leaderboard and per-user performance stats
type StatsHandler struct {
	stats *service.StatsService
	log   *logrus.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, log: log}
}

type leaderboardEntryView struct {
	UserID            int64  `json:"userId"`
	Name              string `json:"name"`
	TotalPoints       int    `json:"totalPoints"`
	CompletedSessions int    `json:"completedSessions"`
}

type sectionStatView struct {
	Skill       string  `json:"skill"`
	Section     string  `json:"section"`
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	SuccessRate float64 `json:"successRate"`
}

type userStatsView struct {
	TotalPoints  int               `json:"totalPoints"`
	WeakSections []sectionStatView `json:"weakSections"`
}

// Leaderboard handles GET /api/leaderboard
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.stats.Leaderboard(limit)
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "failed to load leaderboard", err)
		return
	}

	views := make([]leaderboardEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, leaderboardEntryView{
			UserID:            e.UserID,
			Name:              e.Name,
			TotalPoints:       e.TotalPoints,
			CompletedSessions: e.CompletedSessions,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// MyStats handles GET /api/stats/me
func (h *StatsHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stats, err := h.stats.UserStats(user.ID)
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "failed to load stats", err)
		return
	}

	view := userStatsView{TotalPoints: stats.TotalPoints, WeakSections: []sectionStatView{}}
	for _, sec := range stats.WeakSections {
		view.WeakSections = append(view.WeakSections, sectionStatView{
			Skill:       sec.Skill,
			Section:     sec.Section,
			Attempts:    sec.Attempts,
			Correct:     sec.Correct,
			SuccessRate: sec.SuccessRate,
		})
	}
	respondJSON(w, http.StatusOK, view)
}
