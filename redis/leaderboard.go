package redis

import (
	"context"
	"fmt"

	"github.com/livedeck/reactions-backend/api"
)

// Increment atomically adds delta to member's score on the board, creating
// the board and the member as needed, and refreshes the board's TTL. Boards
// expire as a whole once the TTL elapses after the last write; presentations
// are ephemeral events, not permanent records.
func (r *Redis) Increment(ctx context.Context, board, member string, delta float64) error {
	key := r.key(board)

	pipe := r.cli.TxPipeline()
	pipe.ZIncrBy(ctx, key, delta, member)
	pipe.Expire(ctx, key, r.boardTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("zincrby %s %s: %w", board, member, err)
	}
	return nil
}

// TopDescending returns the board's entries ranked by score descending,
// starting at startRank. A missing or expired board yields an empty slice.
// Redis keeps equal scores in lexicographic member order, so ties come back
// in reverse-lexicographic order here.
func (r *Redis) TopDescending(ctx context.Context, board string, startRank int) ([]api.LeaderboardEntry, error) {
	zs, err := r.cli.ZRevRangeWithScores(ctx, r.key(board), int64(startRank), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", board, err)
	}

	out := make([]api.LeaderboardEntry, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		out[i] = api.LeaderboardEntry{
			Rank:   startRank + i + 1,
			Member: member,
			Score:  z.Score,
		}
	}
	return out, nil
}
