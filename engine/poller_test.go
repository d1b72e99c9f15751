package engine

import (
	"arcadia/games"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	lock      sync.Mutex
	scores    []int
	ticks     int
	gameOvers []int
}

func (h *recordingHandler) ScoreChanged(s games.State) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.scores = append(h.scores, s.Score)
}

func (h *recordingHandler) Tick(games.State) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.ticks++
}

func (h *recordingHandler) GameOver(s games.State) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.gameOvers = append(h.gameOvers, s.Score)
}

func (h *recordingHandler) counts() (scores, ticks, gameOvers int) {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.scores), h.ticks, len(h.gameOvers)
}

func playing(score int) games.State { return games.State{Score: score, Lives: 3} }
func over(score int) games.State {
	return games.State{Score: score, Lives: games.GameOverLives, IsGameOver: true}
}

func TestPoller_Step(t *testing.T) {
	type step struct {
		state games.State
		want  Events
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "first tick publishes score",
			steps: []step{
				{state: playing(0), want: Events{ScoreChanged: true}},
				{state: playing(0), want: Events{}},
			},
		},
		{
			name: "score changes",
			steps: []step{
				{state: playing(100), want: Events{ScoreChanged: true}},
				{state: playing(100)},
				{state: playing(250), want: Events{ScoreChanged: true}},
			},
		},
		{
			name: "game over fires once",
			steps: []step{
				{state: playing(1250), want: Events{ScoreChanged: true}},
				{state: over(1250), want: Events{GameOver: true}},
				{state: over(1250)},
				{state: over(1250)},
			},
		},
		{
			name: "game over on the first tick",
			steps: []step{
				{state: over(0), want: Events{GameOver: true, ScoreChanged: true}},
				{state: over(0)},
			},
		},
		{
			name: "reset re-arms game over",
			steps: []step{
				{state: playing(500), want: Events{ScoreChanged: true}},
				{state: over(500), want: Events{GameOver: true}},
				{state: playing(0), want: Events{ScoreChanged: true, Reset: true}},
				{state: playing(100), want: Events{ScoreChanged: true}},
				{state: over(100), want: Events{GameOver: true}},
			},
		},
		{
			name: "reset while still game over does not refire",
			steps: []step{
				{state: playing(500), want: Events{ScoreChanged: true}},
				{state: over(500), want: Events{GameOver: true}},
				{state: over(0), want: Events{ScoreChanged: true, Reset: true}},
				{state: over(0)},
				{state: playing(0)},
				{state: over(0), want: Events{GameOver: true}},
			},
		},
		{
			name: "lives recover without score reset",
			steps: []step{
				{state: over(700), want: Events{GameOver: true, ScoreChanged: true}},
				{state: playing(700)},
				{state: over(700), want: Events{GameOver: true}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPoller(nil, nil, 0)
			for i, s := range tt.steps {
				if actual, expected := p.Step(s.state), s.want; actual != expected {
					t.Fatalf("step %d: Step(%+v) actual = %+v, expected = %+v", i, s.state, actual, expected)
				}
			}
		})
	}
}

func TestPoller_GameOverHeldFor50Ticks(t *testing.T) {
	p := NewPoller(nil, nil, 0)
	p.Step(playing(1250))

	fired := 0
	for i := 0; i < 50; i++ {
		if p.Step(over(1250)).GameOver {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("game over events actual = %v, expected = %v", fired, 1)
	}
}

func TestPoller_TickDispatch(t *testing.T) {
	states := []games.State{playing(0), playing(10), over(10), over(10)}
	i := 0
	reader := StateReaderFunc(func() (games.State, error) {
		s := states[i]
		i++
		return s, nil
	})

	h := &recordingHandler{}
	p := NewPoller(reader, h, 0)
	for range states {
		p.Tick()
	}

	scores, ticks, gameOvers := h.counts()
	if scores != 2 || ticks != 4 || gameOvers != 1 {
		t.Errorf("counts actual = %d/%d/%d, expected = 2/4/1", scores, ticks, gameOvers)
	}
	if actual, expected := h.gameOvers[0], 10; actual != expected {
		t.Errorf("game over score actual = %v, expected = %v", actual, expected)
	}
}

func TestPoller_TickSurvivesErrorsAndPanics(t *testing.T) {
	n := 0
	reader := StateReaderFunc(func() (games.State, error) {
		n++
		switch n {
		case 1:
			return games.State{}, errors.New("memory not ready")
		case 2:
			panic("boom")
		default:
			return playing(5), nil
		}
	})

	h := &recordingHandler{}
	p := NewPoller(reader, h, 0)
	p.Tick()
	p.Tick()
	p.Tick()

	if _, ticks, _ := h.counts(); ticks != 1 {
		t.Errorf("ticks actual = %v, expected = %v", ticks, 1)
	}
	if actual, expected := p.LastScore(), 5; actual != expected {
		t.Errorf("LastScore() actual = %v, expected = %v", actual, expected)
	}
}

func TestPoller_StartStop(t *testing.T) {
	ticked := make(chan struct{}, 1)
	reader := StateReaderFunc(func() (games.State, error) {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return playing(1), nil
	})

	p := NewPoller(reader, &recordingHandler{}, time.Millisecond)
	p.Stop() // stop before start is a no-op

	p.Start(context.Background())
	if !p.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	select {
	case <-ticked:
	case <-time.After(5 * time.Second):
		t.Fatal("poller never ticked")
	}

	p.Stop()
	p.Stop()
	if p.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}

}

func TestPoller_Reset(t *testing.T) {
	p := NewPoller(nil, nil, 0)
	p.Step(playing(1))
	p.Step(over(1))

	p.Reset()
	if actual, expected := p.LastScore(), -1; actual != expected {
		t.Errorf("LastScore() actual = %v, expected = %v", actual, expected)
	}
	if ev := p.Step(over(1)); !ev.ScoreChanged || !ev.GameOver {
		t.Errorf("Step() after Reset actual = %+v", ev)
	}
}

func TestPoller_StopsWithContext(t *testing.T) {
	p := NewPoller(StateReaderFunc(func() (games.State, error) { return playing(0), nil }), nil, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return after context cancel")
	}
}
