package leaderboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	MaxPseudoLength = 50
	maxBodySize     = 1 << 16
)

// ValidationError reports an invalid submission field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Submission is a validated score submission.
type Submission struct {
	Pseudo string
	Score  int64
	Game   string
}

// DecodeSubmission reads and validates a {pseudo, score, game} JSON body. The pseudonym and game are
// trimmed; the score must be a non-negative JSON integer.
func DecodeSubmission(r io.Reader) (Submission, error) {
	var body struct {
		Pseudo *string         `json:"pseudo"`
		Score  json.RawMessage `json:"score"`
		Game   *string         `json:"game"`
	}

	dec := json.NewDecoder(io.LimitReader(r, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		return Submission{}, &ValidationError{Reason: "body must be a JSON object: " + err.Error()}
	}

	var s Submission

	if body.Pseudo == nil {
		return s, &ValidationError{Field: "pseudo", Reason: "is required"}
	}
	s.Pseudo = strings.TrimSpace(*body.Pseudo)
	if s.Pseudo == "" {
		return s, &ValidationError{Field: "pseudo", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(s.Pseudo) > MaxPseudoLength {
		return s, &ValidationError{Field: "pseudo", Reason: fmt.Sprintf("must be at most %d characters", MaxPseudoLength)}
	}

	score, err := parseScore(body.Score)
	if err != nil {
		return s, err
	}
	s.Score = score

	if body.Game == nil || strings.TrimSpace(*body.Game) == "" {
		return s, &ValidationError{Field: "game", Reason: "is required"}
	}
	s.Game = strings.TrimSpace(*body.Game)

	return s, nil
}

func parseScore(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, &ValidationError{Field: "score", Reason: "is required"}
	}
	// reject strings, booleans and objects before json.Number gets a chance to accept "123"
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, &ValidationError{Field: "score", Reason: "must be an integer"}
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, &ValidationError{Field: "score", Reason: "must be an integer"}
	}
	score, err := n.Int64()
	if err != nil {
		return 0, &ValidationError{Field: "score", Reason: "must be an integer"}
	}
	if score < 0 {
		return 0, &ValidationError{Field: "score", Reason: "must not be negative"}
	}
	return score, nil
}
