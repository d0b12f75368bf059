package api

import "time"

// A Token is a scoped access token vended to a device. Clients present it to
// the cache and topic layer until exp passes, then request a new one.
type Token struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"exp"` // epoch seconds
}

// A Presentation is a registered slide deck that can host a live reaction
// session. The slug doubles as the topic and leaderboard key for the
// presentation.
type Presentation struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	DeckID    string    `json:"deck_id"`
	CreatedAt time.Time `json:"created_at"`
}

// A LeaderboardEntry is one ranked row of a board: a reaction kind and how
// often it was used, or a username and how many reactions they sent.
type LeaderboardEntry struct {
	Rank   int     `json:"rank"`
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}
