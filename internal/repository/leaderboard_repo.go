package repository

import (
	"sort"

	"vstepprep/internal/database"
)

// LeaderboardEntry is one row of the points leaderboard
type LeaderboardEntry struct {
	UserID            int64
	Name              string
	TotalPoints       int
	CompletedSessions int
}

// SectionStat summarizes a user's historical performance on one section
type SectionStat struct {
	Skill       string
	Section     string
	Attempts    int
	Correct     int
	SuccessRate float64
}

// LeaderboardRepository handles aggregate queries across completed sessions
type LeaderboardRepository struct {
	db *database.DB
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *database.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// TopUsers returns the highest-scoring users by total points across their
// completed sessions, ties broken by completed session count
func (r *LeaderboardRepository) TopUsers(limit int) ([]LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.name, COALESCE(SUM(s.points_earned), 0) AS total_points, COUNT(s.id)
		FROM users u
		JOIN practice_sessions s ON s.user_id = u.id AND s.status = 'completed'
		GROUP BY u.id, u.name
		ORDER BY total_points DESC, COUNT(s.id) DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalPoints, &e.CompletedSessions); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetUserTotalPoints calculates total points earned across completed sessions
func (r *LeaderboardRepository) GetUserTotalPoints(userID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(points_earned), 0)
		FROM practice_sessions
		WHERE user_id = ? AND status = 'completed'
	`

	var totalPoints int
	err := r.db.QueryRow(query, userID).Scan(&totalPoints)
	return totalPoints, err
}

// GetWeakSections returns sections where the user's success rate across
// machine-graded answers falls below maxRate, given at least minAttempts,
// weakest first
func (r *LeaderboardRepository) GetWeakSections(userID int64, maxRate float64, minAttempts int) ([]SectionStat, error) {
	query := `
		SELECT q.skill, q.section,
		       COUNT(a.id) AS attempts,
		       SUM(CASE WHEN a.outcome = 'correct' THEN 1 ELSE 0 END) AS correct
		FROM practice_answers a
		JOIN practice_sessions s ON s.id = a.session_id
		JOIN questions q ON q.id = a.question_id
		WHERE s.user_id = ? AND a.outcome != 'ungraded'
		GROUP BY q.skill, q.section
		HAVING COUNT(a.id) >= ?
	`

	rows, err := r.db.Query(query, userID, minAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SectionStat
	for rows.Next() {
		var st SectionStat
		if err := rows.Scan(&st.Skill, &st.Section, &st.Attempts, &st.Correct); err != nil {
			return nil, err
		}
		if st.Attempts > 0 {
			st.SuccessRate = float64(st.Correct) / float64(st.Attempts)
		}
		if st.SuccessRate < maxRate {
			stats = append(stats, st)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Weakest first
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].SuccessRate < stats[j].SuccessRate
	})

	return stats, nil
}
