package service

import (
	"fmt"

	"vstepprep/internal/repository"
)

// Sections below 60% success over at least 3 graded answers count as weak
const (
	weakSectionMaxRate     = 0.6
	weakSectionMinAttempts = 3
)

// UserStats is a user's aggregate performance across completed sessions
type UserStats struct {
	TotalPoints  int
	WeakSections []repository.SectionStat
}

// StatsService serves leaderboard and per-user performance aggregates
type StatsService struct {
	leaderboard *repository.LeaderboardRepository
}

// NewStatsService creates a new stats service
func NewStatsService(leaderboard *repository.LeaderboardRepository) *StatsService {
	return &StatsService{leaderboard: leaderboard}
}

// Leaderboard returns the top users by total points
func (s *StatsService) Leaderboard(limit int) ([]repository.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.leaderboard.TopUsers(limit)
}

// UserStats returns the user's total points and weak sections
func (s *StatsService) UserStats(userID int64) (*UserStats, error) {
	points, err := s.leaderboard.GetUserTotalPoints(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load total points: %w", err)
	}
	weak, err := s.leaderboard.GetWeakSections(userID, weakSectionMaxRate, weakSectionMinAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to load weak sections: %w", err)
	}
	return &UserStats{TotalPoints: points, WeakSections: weak}, nil
}
