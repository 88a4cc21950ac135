// Package cache keeps a Redis copy of each tournament's live standings so
// read-heavy leaderboard views can be served without recomputing or touching
// Postgres. The cache is strictly best effort: the in-process analytics
// engine stays the source of truth.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/padel-americano/models"
	"github.com/redis/go-redis/v9"
)

const standingsTTL = 24 * time.Hour

type StandingsCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewStandingsCache(addr, password string, db int, logger *slog.Logger) (*StandingsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &StandingsCache{client: client, logger: logger}, nil
}

func (c *StandingsCache) Close() error {
	return c.client.Close()
}

func (c *StandingsCache) standingsKey(tournamentID string) string {
	return fmt.Sprintf("tournament:%s:standings", tournamentID)
}

// UpdateStandings replaces the cached leaderboard with the given one.
// The ZSET scores carry finalScore, so range queries return rank order.
func (c *StandingsCache) UpdateStandings(ctx context.Context, tournamentID string, standings []models.PlayerStats) error {
	key := c.standingsKey(tournamentID)
	members := make([]redis.Z, 0, len(standings))
	for _, ps := range standings {
		members = append(members, redis.Z{Score: float64(ps.FinalScore), Member: ps.Player})
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}
	pipe.Expire(ctx, key, standingsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating standings cache: %w", err)
	}
	return nil
}

// TopPlayers returns up to n player names by cached final score, best first.
func (c *StandingsCache) TopPlayers(ctx context.Context, tournamentID string, n int) ([]string, error) {
	players, err := c.client.ZRevRange(ctx, c.standingsKey(tournamentID), 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading standings cache: %w", err)
	}
	return players, nil
}

// Invalidate drops the cached standings, e.g. after a tournament is deleted.
func (c *StandingsCache) Invalidate(ctx context.Context, tournamentID string) {
	if err := c.client.Del(ctx, c.standingsKey(tournamentID)).Err(); err != nil {
		c.logger.Warn("failed to invalidate standings cache",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
	}
}
