package services

import (
	"context"
	"fmt"
	"iter"

	"philosofium/backend/models"
	"philosofium/backend/utils"

	"gorm.io/gorm"
)

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     uint   `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
	TotalScore int64  `json:"total_score"`
}

// LeaderboardCache stores computed leaderboards under opaque keys.
type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error)
	Set(ctx context.Context, key string, entries []LeaderboardEntry) error
}

type LeaderboardService struct {
	db    *gorm.DB
	log   *utils.Logger
	cache LeaderboardCache
}

// NewLeaderboardService builds the service; cache may be nil.
func NewLeaderboardService(db *gorm.DB, log *utils.Logger, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{db: db, log: log, cache: cache}
}

// Stream yields users with at least one attempt ordered by total score
// descending, ties by user id ascending. Each range runs a fresh query.
func (s *LeaderboardService) Stream(ctx context.Context) iter.Seq2[LeaderboardEntry, error] {
	const op = "leaderboard.Stream"

	return func(yield func(LeaderboardEntry, error) bool) {
		rows, err := s.db.WithContext(ctx).
			Table("attempts").
			Select("users.id, users.name, users.email, users.avatar, SUM(attempts.score) AS total_score").
			Joins("JOIN users ON users.id = attempts.user_id").
			Group("users.id, users.name, users.email, users.avatar").
			Order("total_score DESC, users.id ASC").
			Rows()
		if err != nil {
			yield(LeaderboardEntry{}, wrap(op, err))
			return
		}
		defer rows.Close()

		rank := 0
		for rows.Next() {
			var e LeaderboardEntry
			if err := rows.Scan(&e.UserID, &e.Name, &e.Email, &e.Avatar, &e.TotalScore); err != nil {
				yield(LeaderboardEntry{}, wrap(op, err))
				return
			}
			rank++
			e.Rank = rank
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(LeaderboardEntry{}, wrap(op, err))
		}
	}
}

// Get returns the whole leaderboard, served from the cache when the attempts
// table has not changed since it was stored.
func (s *LeaderboardService) Get(ctx context.Context) ([]LeaderboardEntry, error) {
	const op = "leaderboard.Get"

	var key string
	if s.cache != nil {
		k, err := s.cacheKey(ctx)
		if err != nil {
			return nil, wrap(op, err)
		}
		key = k

		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("leaderboard cache read failed", "key", key, "error", err)
		case ok:
			return cached, nil
		}
	}

	entries := make([]LeaderboardEntry, 0)
	for e, err := range s.Stream(ctx) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries); err != nil {
			s.log.Warn("leaderboard cache write failed", "key", key, "error", err)
		}
	}
	return entries, nil
}

// cacheKey changes with every stored attempt since attempts are append-only.
func (s *LeaderboardService) cacheKey(ctx context.Context) (string, error) {
	var wm struct {
		N     int64
		MaxID int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("COUNT(*) AS n, COALESCE(MAX(id), 0) AS max_id").
		Scan(&wm).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("leaderboard:%d:%d", wm.N, wm.MaxID), nil
}
