// Package leaderboard is the score backend: a SQL store of games, players and scores behind a small REST API.
package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
)

const DefaultTopLimit = 10

var ErrUnknownGame = errors.New("leaderboard: unknown game")

// DefaultGames are seeded on Migrate.
var DefaultGames = []string{"Super Mario Bros", "Galaga", "Snake"}

// Identity selects how a submission's pseudonym maps to a player row.
type Identity int

const (
	// IdentityDedup reuses the player row of an existing pseudonym.
	IdentityDedup Identity = iota
	// IdentityAlways inserts a player row per submission.
	IdentityAlways
)

func (i Identity) String() string {
	if i == IdentityAlways {
		return "always"
	}
	return "dedup"
}

func ParseIdentity(s string) (Identity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dedup":
		return IdentityDedup, nil
	case "always":
		return IdentityAlways, nil
	default:
		return IdentityDedup, fmt.Errorf("leaderboard: unknown player identity %q (dedup, always)", s)
	}
}

// Score is a leaderboard row.
type Score struct {
	ID     int64  `json:"pk_score"`
	Score  int64  `json:"score"`
	Pseudo string `json:"pseudo"`
	Game   string `json:"game"`
}

type Store struct {
	db       *sql.DB
	dialect  Dialect
	identity Identity
}

func NewStore(db *sql.DB, dialect Dialect, identity Identity) *Store {
	return &Store{db: db, dialect: dialect, identity: identity}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the tables and seeds games.
func (s *Store) Migrate(ctx context.Context, games ...string) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("leaderboard: migrate: %w", err)
		}
	}
	for _, name := range games {
		if _, err := s.db.ExecContext(ctx, s.dialect.InsertGame, name); err != nil {
			return fmt.Errorf("leaderboard: seed game %q: %w", name, err)
		}
	}
	return nil
}

// AddScore records score for pseudo in game inside one transaction. An unknown game rolls back and returns
// an error wrapping ErrUnknownGame.
func (s *Store) AddScore(ctx context.Context, pseudo string, score int64, game string) (created *Score, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: begin: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			log.Printf("leaderboard: rollback: %v\n", rerr)
		}
	}()

	var pkGame int64
	err = tx.QueryRowContext(ctx, "SELECT pk_game FROM t_games WHERE name = ?", game).Scan(&pkGame)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard: lookup game: %w", err)
	}

	pkPlayer, err := s.playerFor(ctx, tx, pseudo)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO t_scores (score, pseudo, fk_player, fk_game) VALUES (?, ?, ?, ?)",
		score, pseudo, pkPlayer, pkGame)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: insert score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: insert score: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("leaderboard: commit: %w", err)
	}

	return &Score{ID: id, Score: score, Pseudo: pseudo, Game: game}, nil
}

func (s *Store) playerFor(ctx context.Context, tx *sql.Tx, pseudo string) (int64, error) {
	if s.identity == IdentityDedup {
		var pk int64
		err := tx.QueryRowContext(ctx,
			"SELECT pk_player FROM t_players WHERE pseudo = ? ORDER BY pk_player LIMIT 1", pseudo).Scan(&pk)
		if err == nil {
			return pk, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("leaderboard: lookup player: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO t_players (pseudo) VALUES (?)", pseudo)
	if err != nil {
		return 0, fmt.Errorf("leaderboard: insert player: %w", err)
	}
	pk, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("leaderboard: insert player: %w", err)
	}
	return pk, nil
}

const selectScores = `SELECT s.pk_score, s.score, s.pseudo, g.name
	FROM t_scores s
	JOIN t_games g ON s.fk_game = g.pk_game`

// AllScores returns every score ordered by game name then score, highest first.
func (s *Store) AllScores(ctx context.Context) ([]Score, error) {
	return s.query(ctx, selectScores+" ORDER BY g.name, s.score DESC, s.pk_score")
}

// TopScores returns up to limit scores of game, highest first; ties go to the earlier score.
func (s *Store) TopScores(ctx context.Context, game string, limit int) ([]Score, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return s.query(ctx, selectScores+" WHERE g.name = ? ORDER BY s.score DESC, s.pk_score LIMIT ?", game, limit)
}

// Games returns the known game names, sorted.
func (s *Store) Games(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM t_games ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("leaderboard: games: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("leaderboard: games: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PlayerCount returns the number of player rows with pseudo.
func (s *Store) PlayerCount(ctx context.Context, pseudo string) (n int, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t_players WHERE pseudo = ?", pseudo).Scan(&n)
	return
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query scores: %w", err)
	}
	defer rows.Close()

	scores := make([]Score, 0, 16)
	for rows.Next() {
		var sc Score
		if err = rows.Scan(&sc.ID, &sc.Score, &sc.Pseudo, &sc.Game); err != nil {
			return nil, fmt.Errorf("leaderboard: scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: query scores: %w", err)
	}
	return scores, nil
}
