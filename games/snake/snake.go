// Package snake implements the Snake mini-game rules. Rendering and input are left to the caller; the
// game reports its state through the same contract as the emulated games.
package snake

import (
	"arcadia/games"
	"math/rand"
	"sync"
)

const (
	ID          = "snake"
	Name        = "Snake"
	DefaultCols = 15
	DefaultRows = 15

	// maxFoodTries bounds the search for a free food cell on a crowded board.
	maxFoodTries = 200
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(d Point) Point { return Point{p.X + d.X, p.Y + d.Y} }

var (
	Stop  = Point{}
	Up    = Point{0, -1}
	Down  = Point{0, 1}
	Left  = Point{-1, 0}
	Right = Point{1, 0}
)

// Game is a Snake board. It is safe for concurrent use.
type Game struct {
	cols, rows int
	rnd        *rand.Rand

	lock          sync.Mutex
	snake         []Point
	direction     Point
	nextDirection Point
	food          Point
	score         int
	gameOver      bool
}

// New creates a cols x rows board. rnd places the food; nil uses a time-seeded source.
func New(cols, rows int, rnd *rand.Rand) *Game {
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	g := &Game{cols: cols, rows: rows, rnd: rnd}
	g.Reset()
	return g
}

// Reset puts a one-cell snake in the middle of the board, stopped, with score 0.
func (g *Game) Reset() {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.snake = []Point{{g.cols / 2, g.rows / 2}}
	g.direction = Stop
	g.nextDirection = Stop
	g.score = 0
	g.gameOver = false
	g.spawnFood()
}

// SetDirection queues a turn for the next Update. Reversing onto the current direction is ignored.
func (g *Game) SetDirection(dir Point) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.direction.X+dir.X == 0 && g.direction.Y+dir.Y == 0 {
		return
	}
	g.nextDirection = dir
}

// Update advances the snake one cell. A stopped snake does not move.
func (g *Game) Update() {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.gameOver {
		return
	}
	if g.nextDirection != Stop {
		g.direction = g.nextDirection
	}
	if g.direction == Stop {
		return
	}

	head := g.snake[0].Add(g.direction)
	if head.X < 0 || head.X >= g.cols || head.Y < 0 || head.Y >= g.rows {
		g.gameOver = true
		return
	}
	if g.occupied(head) {
		g.gameOver = true
		return
	}

	g.snake = append([]Point{head}, g.snake...)
	if head == g.food {
		g.score++
		g.spawnFood()
	} else {
		g.snake = g.snake[:len(g.snake)-1]
	}
}

func (g *Game) occupied(p Point) bool {
	for _, s := range g.snake {
		if s == p {
			return true
		}
	}
	return false
}

// spawnFood picks a random free cell, giving up after maxFoodTries.
func (g *Game) spawnFood() {
	for tries := 0; ; tries++ {
		g.food = Point{g.rnd.Intn(g.cols), g.rnd.Intn(g.rows)}
		if tries >= maxFoodTries || !g.occupied(g.food) {
			return
		}
	}
}

// ReadState implements engine.StateReader. The snake has a single life.
func (g *Game) ReadState() (games.State, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	s := games.State{Score: g.score, Lives: 1, IsGameOver: g.gameOver}
	if g.gameOver {
		s.Lives = games.GameOverLives
	}
	return s, nil
}

// Board is a copy of the game for display.
type Board struct {
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	Snake    []Point `json:"snake"`
	Food     Point   `json:"food"`
	Score    int     `json:"score"`
	GameOver bool    `json:"gameOver"`
}

func (g *Game) Board() Board {
	g.lock.Lock()
	defer g.lock.Unlock()
	return Board{
		Cols:     g.cols,
		Rows:     g.rows,
		Snake:    append([]Point(nil), g.snake...),
		Food:     g.food,
		Score:    g.score,
		GameOver: g.gameOver,
	}
}

// place sets the board state directly; for tests.
func (g *Game) place(snake []Point, direction, food Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.snake = snake
	g.direction = direction
	g.nextDirection = Stop
	g.food = food
}
