package engine

import (
	"arcadia/games"
	"context"
	"log"
	"sync"
	"time"
)

// Events lists what a single tick triggered.
type Events struct {
	ScoreChanged bool
	Reset        bool
	GameOver     bool
}

// Poller reads the game state on a fixed interval and turns it into events. It owns the last seen score
// and game-over flag; a game over is reported once per transition into game over.
type Poller struct {
	reader   StateReader
	handler  Handler
	interval time.Duration

	lock        sync.Mutex
	lastScore   int
	wasGameOver bool

	runLock sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(reader StateReader, handler Handler, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = games.DefaultPollInterval
	}
	return &Poller{
		reader:    reader,
		handler:   handler,
		interval:  interval,
		lastScore: -1,
	}
}

func (p *Poller) Interval() time.Duration { return p.interval }

// Reset returns the state machine to its initial state.
func (p *Poller) Reset() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.lastScore = -1
	p.wasGameOver = false
}

// Step applies one tick's state to the state machine and returns the events it triggers.
func (p *Poller) Step(s games.State) (ev Events) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if s.IsGameOver && !p.wasGameOver {
		ev.GameOver = true
	}
	p.wasGameOver = s.IsGameOver

	if s.Score != p.lastScore {
		ev.ScoreChanged = true
		if s.Score == 0 && p.lastScore > 0 {
			ev.Reset = true
			// a reset landing on a game-over tick must not re-arm it
			if !s.IsGameOver {
				p.wasGameOver = false
			}
		}
	}
	p.lastScore = s.Score

	return
}

// LastScore returns the score seen on the last tick, or -1 before the first one.
func (p *Poller) LastScore() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.lastScore
}

// Tick reads the state once and dispatches the resulting events.
func (p *Poller) Tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("poller: recovered from panic in tick: %v\n", r)
		}
	}()

	s, err := p.reader.ReadState()
	if err != nil {
		log.Printf("poller: read state: %v\n", err)
		return
	}

	ev := p.Step(s)
	if p.handler == nil {
		return
	}
	if ev.GameOver {
		p.handler.GameOver(s)
	}
	if ev.ScoreChanged {
		p.handler.ScoreChanged(s)
	}
	p.handler.Tick(s)
}

// Start resets the state machine and ticks on a new goroutine until ctx is done or Stop is called.
// Starting a running poller restarts it.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	p.runLock.Lock()
	defer p.runLock.Unlock()

	p.Reset()
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop stops the ticker and waits for the poller goroutine to exit. Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.runLock.Lock()
	defer p.runLock.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *Poller) IsRunning() bool {
	p.runLock.Lock()
	defer p.runLock.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	log.Printf("poller: started, interval %v\n", p.interval)
	defer log.Printf("poller: stopped\n")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}
