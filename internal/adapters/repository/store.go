// Package repository keeps recorded player sessions and the leaderboard
// built from them.
package repository

import (
	"context"

	"github.com/okian/skirmish/internal/domain/playerstats"
	"github.com/okian/skirmish/internal/domain/types"
)

// Store provides read/write access to player history.
type Store interface {
	// Append adds one session record to the player's history and returns
	// true when the record raised the player's best score.
	Append(ctx context.Context, rec playerstats.SessionStats) (bool, error)

	// History returns the player's records in the order they were appended.
	// Returns ErrNotFound if the player is unknown.
	History(ctx context.Context, player string) ([]playerstats.SessionStats, error)

	// Rank returns the current leaderboard entry for a player.
	Rank(ctx context.Context, player string) (types.Entry, error)

	// TopN returns the top-N entries ordered by best score desc, then name asc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of players with history.
	Count(ctx context.Context) int
}
