package snake

import (
	"arcadia/games"
	"math/rand"
	"testing"
)

func newTestGame() *Game {
	return New(DefaultCols, DefaultRows, rand.New(rand.NewSource(42)))
}

func TestGame_Reset(t *testing.T) {
	g := newTestGame()
	b := g.Board()
	if len(b.Snake) != 1 || b.Snake[0] != (Point{7, 7}) {
		t.Errorf("snake actual = %v, expected = [{7 7}]", b.Snake)
	}
	if b.Food == b.Snake[0] {
		t.Errorf("food spawned on the snake")
	}

	// stopped snake does not move
	g.Update()
	if actual := g.Board().Snake[0]; actual != (Point{7, 7}) {
		t.Errorf("head after Update actual = %v, expected = {7 7}", actual)
	}
}

func TestGame_EatGrowsAndScores(t *testing.T) {
	g := newTestGame()
	g.place([]Point{{5, 5}}, Right, Point{6, 5})

	g.Update()
	b := g.Board()
	if b.Score != 1 || len(b.Snake) != 2 || b.Snake[0] != (Point{6, 5}) {
		t.Errorf("board after eating actual = %+v", b)
	}

	g.Update()
	b = g.Board()
	if len(b.Snake) != 2 || b.Snake[0] != (Point{7, 5}) || b.Snake[1] != (Point{6, 5}) {
		t.Errorf("board after moving actual = %+v", b)
	}
}

func TestGame_NoReversing(t *testing.T) {
	g := newTestGame()
	g.place([]Point{{5, 5}, {4, 5}}, Right, Point{0, 0})

	g.SetDirection(Left)
	g.Update()
	if actual := g.Board().Snake[0]; actual != (Point{6, 5}) {
		t.Errorf("head actual = %v, expected = {6 5}", actual)
	}

	g.SetDirection(Up)
	g.Update()
	if actual := g.Board().Snake[0]; actual != (Point{6, 4}) {
		t.Errorf("head actual = %v, expected = {6 4}", actual)
	}
}

func TestGame_WallEndsGame(t *testing.T) {
	g := newTestGame()
	g.place([]Point{{14, 3}}, Right, Point{0, 0})

	g.Update()
	s, err := g.ReadState()
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsGameOver || s.Lives != games.GameOverLives {
		t.Errorf("state actual = %+v", s)
	}

	// a finished game stays put
	g.SetDirection(Down)
	g.Update()
	if actual := g.Board().Snake[0]; actual != (Point{14, 3}) {
		t.Errorf("head actual = %v, expected = {14 3}", actual)
	}
}

func TestGame_SelfCollisionEndsGame(t *testing.T) {
	g := newTestGame()
	// a U shape whose head turns into its own body
	g.place([]Point{{5, 5}, {5, 6}, {6, 6}, {6, 5}, {6, 4}}, Up, Point{0, 0})
	g.SetDirection(Right)
	g.Update()

	if !g.Board().GameOver {
		t.Errorf("game not over after self collision")
	}
}

func TestGame_FoodOnFullBoard(t *testing.T) {
	g := New(2, 1, rand.New(rand.NewSource(1)))
	g.place([]Point{{0, 0}, {1, 0}}, Stop, Point{0, 0})

	// no free cell; spawning gives up instead of looping forever
	g.lock.Lock()
	g.spawnFood()
	g.lock.Unlock()
}

func TestGame_ReadState(t *testing.T) {
	g := newTestGame()
	g.place([]Point{{1, 1}}, Right, Point{2, 1})
	g.Update()

	s, _ := g.ReadState()
	if s.Score != 1 || s.Lives != 1 || s.IsGameOver {
		t.Errorf("state actual = %+v", s)
	}
}
