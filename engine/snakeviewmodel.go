package engine

import (
	"arcadia/games/snake"
	"arcadia/interfaces"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const DefaultSnakeSpeed = 150 * time.Millisecond

// SnakeViewModel is the "snake" view: it steps the board and takes turn commands from the UI.
type SnakeViewModel struct {
	root *ViewModel
	game *snake.Game

	commands map[string]interfaces.Command

	lock    sync.Mutex
	isDirty bool
	board   snake.Board
}

func NewSnakeViewModel(root *ViewModel, game *snake.Game) *SnakeViewModel {
	v := &SnakeViewModel{
		root:  root,
		game:  game,
		board: game.Board(),
	}

	v.commands = map[string]interfaces.Command{
		"turn":    &turnCmd{v},
		"restart": &restartCmd{v},
	}

	return v
}

func (v *SnakeViewModel) IsDirty() bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.isDirty
}

func (v *SnakeViewModel) ClearDirty() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.isDirty = false
}

func (v *SnakeViewModel) MarkDirty() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.isDirty = true
}

func (v *SnakeViewModel) CommandFor(command string) (ce interfaces.Command, err error) {
	var ok bool
	ce, ok = v.commands[command]
	if !ok {
		err = fmt.Errorf("no command '%s' found", command)
	}
	return
}

func (v *SnakeViewModel) ViewModel() interface{} {
	v.lock.Lock()
	defer v.lock.Unlock()
	b := v.board
	return &b
}

func (v *SnakeViewModel) Update() {
	b := v.game.Board()

	v.lock.Lock()
	v.board = b
	v.isDirty = true
	v.lock.Unlock()
}

// Step advances the board one move and notifies the view.
func (v *SnakeViewModel) Step() {
	v.game.Update()
	v.Update()
	if v.root != nil {
		v.root.NotifyViewOf("snake", v)
	}
}

// Run steps the board every speed until ctx is done.
func (v *SnakeViewModel) Run(ctx context.Context, speed time.Duration) {
	if speed <= 0 {
		speed = DefaultSnakeSpeed
	}
	t := time.NewTicker(speed)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			v.Step()
		}
	}
}

// ParseDirection maps up/down/left/right (or arrow key names) to a direction.
func ParseDirection(name string) (snake.Point, error) {
	switch strings.ToLower(strings.TrimPrefix(name, "Arrow")) {
	case "up":
		return snake.Up, nil
	case "down":
		return snake.Down, nil
	case "left":
		return snake.Left, nil
	case "right":
		return snake.Right, nil
	}
	return snake.Stop, fmt.Errorf("unknown direction '%s'", name)
}

type turnCmd struct{ v *SnakeViewModel }
type turnArgs struct {
	Direction string `json:"dir"`
}

func (c *turnCmd) CreateArgs() interfaces.CommandArgs { return &turnArgs{} }

func (c *turnCmd) Execute(args interfaces.CommandArgs) error {
	a, ok := args.(*turnArgs)
	if !ok {
		return fmt.Errorf("expected *turnArgs")
	}
	dir, err := ParseDirection(a.Direction)
	if err != nil {
		return err
	}
	c.v.game.SetDirection(dir)
	return nil
}

type restartCmd struct{ v *SnakeViewModel }

func (c *restartCmd) CreateArgs() interfaces.CommandArgs { return nil }

func (c *restartCmd) Execute(_ interfaces.CommandArgs) error {
	c.v.game.Reset()
	c.v.Update()
	if c.v.root != nil {
		c.v.root.NotifyViewOf("snake", c.v)
	}
	return nil
}
