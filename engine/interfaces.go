package engine

import (
	"arcadia/client"
	"arcadia/games"
	"context"
)

// StateReader produces the game state for one tick.
type StateReader interface {
	ReadState() (games.State, error)
}

type StateReaderFunc func() (games.State, error)

func (f StateReaderFunc) ReadState() (games.State, error) { return f() }

// Handler receives the Poller's events. Calls are made on the poller goroutine and must not block.
type Handler interface {
	// ScoreChanged is called when the score differs from the previous tick (always on the first tick).
	ScoreChanged(state games.State)
	// Tick is called on every successful read, after any other event.
	Tick(state games.State)
	// GameOver is called once per transition into game over.
	GameOver(state games.State)
}

// ScoreSubmitter persists a final score.
type ScoreSubmitter interface {
	Submit(ctx context.Context, s client.Submission) (*client.Score, error)
}

// TopScorer fetches a game's leaderboard.
type TopScorer interface {
	Top(ctx context.Context, game string) ([]client.Score, error)
}

// Reporter tells the player what happened to their score.
type Reporter interface {
	Report(r Report)
}

type ReporterFunc func(r Report)

func (f ReporterFunc) Report(r Report) { f(r) }
