package engine

import (
	"arcadia/games"
	"context"
	"errors"
)

var ErrPromptCancelled = errors.New("engine: pseudonym prompt cancelled")

// PromptRequest is what the player is asked after a game over.
type PromptRequest struct {
	Game    string `json:"game"`
	Score   int    `json:"score"`
	Default string `json:"default"`
}

func (r PromptRequest) Message() string {
	return "GAME OVER! Your final score: " + games.FormatScore(r.Score) + ". Enter your pseudonym to save it to the leaderboard:"
}

// Prompter asks the player for a pseudonym. It returns ErrPromptCancelled (or the context error) if the
// player declines.
type Prompter interface {
	Prompt(ctx context.Context, req PromptRequest) (string, error)
}

type PromptFunc func(ctx context.Context, req PromptRequest) (string, error)

func (f PromptFunc) Prompt(ctx context.Context, req PromptRequest) (string, error) { return f(ctx, req) }

// DefaultPrompter accepts the suggested pseudonym without asking.
var DefaultPrompter = PromptFunc(func(_ context.Context, req PromptRequest) (string, error) {
	return req.Default, nil
})
