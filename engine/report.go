package engine

import (
	"arcadia/games"
	"fmt"
	"log"
)

type ReportKind int

const (
	ReportSaved ReportKind = iota
	ReportNotSaved
	ReportFailed
)

func (k ReportKind) String() string {
	switch k {
	case ReportSaved:
		return "saved"
	case ReportNotSaved:
		return "not saved"
	case ReportFailed:
		return "failed"
	default:
		return fmt.Sprintf("report(%d)", int(k))
	}
}

func (k ReportKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Report describes the outcome of a game over.
type Report struct {
	Kind   ReportKind `json:"kind"`
	Pseudo string     `json:"pseudo,omitempty"`
	Score  int        `json:"score"`
	Game   string     `json:"game"`
	Err    error      `json:"-"`
	Detail string     `json:"detail,omitempty"`
}

func (r Report) String() string {
	switch r.Kind {
	case ReportSaved:
		return fmt.Sprintf("Score saved! Player: %s, score: %s, game: %s", r.Pseudo, games.FormatScore(r.Score), r.Game)
	case ReportNotSaved:
		return "Score not saved: a pseudonym is required to record your score"
	default:
		return fmt.Sprintf("Could not save the score (%s). Is the backend server running?", r.Detail)
	}
}

// LogReporter writes reports to the standard logger.
var LogReporter = ReporterFunc(func(r Report) {
	log.Printf("session: %s\n", r)
})
