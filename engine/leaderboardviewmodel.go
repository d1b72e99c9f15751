package engine

import (
	"arcadia/client"
	"arcadia/interfaces"
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const leaderboardTimeout = 10 * time.Second

// LeaderboardViewModel is the "leaderboard" view: the top scores of the current game.
type LeaderboardViewModel struct {
	root *ViewModel
	top  TopScorer

	commands map[string]interfaces.Command

	lock    sync.Mutex
	isDirty bool

	Game   string         `json:"game"`
	Scores []client.Score `json:"scores"`
	Error  string         `json:"error,omitempty"`
}

func NewLeaderboardViewModel(root *ViewModel, top TopScorer) *LeaderboardViewModel {
	v := &LeaderboardViewModel{
		root:   root,
		top:    top,
		Scores: []client.Score{},
	}

	v.commands = map[string]interfaces.Command{
		"refresh": &refreshCmd{v},
	}

	return v
}

func (v *LeaderboardViewModel) IsDirty() bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.isDirty
}

func (v *LeaderboardViewModel) ClearDirty() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.isDirty = false
}

func (v *LeaderboardViewModel) MarkDirty() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.isDirty = true
}

func (v *LeaderboardViewModel) CommandFor(command string) (ce interfaces.Command, err error) {
	var ok bool
	ce, ok = v.commands[command]
	if !ok {
		err = fmt.Errorf("no command '%s' found", command)
	}
	return
}

func (v *LeaderboardViewModel) ViewModel() interface{} {
	v.lock.Lock()
	defer v.lock.Unlock()
	return &LeaderboardViewModel{
		Game:   v.Game,
		Scores: append([]client.Score{}, v.Scores...),
		Error:  v.Error,
	}
}

// Refresh fetches the current game's top scores.
func (v *LeaderboardViewModel) Refresh(ctx context.Context) error {
	s := v.root.Session()
	if s == nil || v.top == nil {
		return nil
	}
	game := s.Game()

	ctx, cancel := context.WithTimeout(ctx, leaderboardTimeout)
	defer cancel()
	scores, err := v.top.Top(ctx, game)

	v.lock.Lock()
	v.Game = game
	if err != nil {
		log.Printf("leaderboard: top %s: %v\n", game, err)
		v.Error = err.Error()
	} else {
		v.Scores = scores
		v.Error = ""
	}
	v.isDirty = true
	v.lock.Unlock()

	v.root.NotifyViewOf("leaderboard", v)
	return err
}

type refreshCmd struct{ v *LeaderboardViewModel }

func (c *refreshCmd) CreateArgs() interfaces.CommandArgs { return nil }

func (c *refreshCmd) Execute(_ interfaces.CommandArgs) error {
	go func() {
		_ = c.v.Refresh(context.Background())
	}()
	return nil
}
