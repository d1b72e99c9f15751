package engine

import (
	"arcadia/client"
	"arcadia/games"
	"arcadia/interfaces"
	"arcadia/memory"
	"arcadia/util"
	"bytes"
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bradleyjkemp/memviz"
)

const (
	DefaultPseudonym     = "Player1"
	DefaultSubmitTimeout = 15 * time.Second
)

type Options struct {
	Prompter  Prompter
	Submitter ScoreSubmitter
	Reporter  Reporter
	// Notifier receives "score" view updates on every tick.
	Notifier interfaces.ViewNotifier
	Interval time.Duration
	// Now and Rand seed the session id; defaults are the wall clock and math/rand.
	Now  func() time.Time
	Rand *rand.Rand
}

// Session plays one game: it polls the game state, publishes it, and submits the final score on game over.
type Session struct {
	id   string
	name string
	game string

	reader StateReader
	poller *Poller
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc

	lock       sync.Mutex
	lastPseudo string
	lastState  games.State
	hasState   bool
	gameOvers  int

	pending sync.WaitGroup
}

// NewMemorySession creates a session reading cfg's layout through accessor.
func NewMemorySession(cfg *games.MemoryConfig, accessor *memory.Accessor, opts Options) *Session {
	if opts.Interval <= 0 {
		opts.Interval = cfg.Interval()
	}
	return NewSession(cfg.Name, cfg.GameName(), NewMemoryReader(cfg, accessor), opts)
}

// NewSession creates a session for the game displayed as name and submitted as game.
func NewSession(name, game string, reader StateReader, opts Options) *Session {
	if opts.Prompter == nil {
		opts.Prompter = DefaultPrompter
	}
	if opts.Reporter == nil {
		opts.Reporter = LogReporter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Session{
		name:   name,
		game:   game,
		reader: reader,
		opts:   opts,
	}
	s.id = newSessionID(name, opts.Now(), opts.Rand)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.poller = NewPoller(reader, s, opts.Interval)
	return s
}

// newSessionID formats <game_name>_<unix ms>_<7 base36 chars>.
func newSessionID(name string, now time.Time, rnd *rand.Rand) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	suffix := strconv.FormatInt(rnd.Int63(), 36)
	for len(suffix) < 7 {
		suffix = "0" + suffix
	}
	return fmt.Sprintf("%s_%d_%s", slug, now.UnixMilli(), suffix[:7])
}

func (s *Session) ID() string          { return s.id }
func (s *Session) Name() string        { return s.name }
func (s *Session) Game() string        { return s.game }
func (s *Session) Poller() *Poller     { return s.poller }
func (s *Session) Reader() StateReader { return s.reader }

func (s *Session) Start(ctx context.Context) {
	log.Printf("session: %s: start\n", s.id)
	s.poller.Start(ctx)
}

// AwaitMemory waits for emulator memory and checks the game config against the view found. It returns
// the memory path in use, or "" for sessions that do not read emulator memory. A config that cannot read
// the view stops polling and its *games.ConfigError is returned.
func (s *Session) AwaitMemory(ctx context.Context, attempts int, delay time.Duration) (string, error) {
	r, ok := s.reader.(*MemoryReader)
	if !ok {
		return "", nil
	}

	view, err := r.accessor.Wait(ctx, attempts, delay)
	if err != nil {
		return "", err
	}
	if err = r.Check(view); err != nil {
		log.Printf("session: %s: %v\n", s.id, err)
		s.Stop()
		return "", err
	}
	return r.accessor.Path(), nil
}

// Stop stops polling. Game-over handling already in flight continues.
func (s *Session) Stop() {
	s.poller.Stop()
}

// Wait blocks until in-flight game-over handling has finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Close stops polling and cancels in-flight prompts and submissions.
func (s *Session) Close() error {
	s.Stop()
	s.cancel()
	s.pending.Wait()
	if r, ok := s.reader.(*MemoryReader); ok {
		return r.accessor.Close()
	}
	return nil
}

func (s *Session) LastPseudonym() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastPseudo
}

func (s *Session) SetLastPseudonym(pseudo string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lastPseudo = strings.TrimSpace(pseudo)
}

// LastState returns the state seen on the last tick.
func (s *Session) LastState() (games.State, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastState, s.hasState
}

// Handler:

func (s *Session) ScoreChanged(state games.State) {
	if state.Score == 0 {
		log.Printf("session: %s: score reset\n", s.id)
	}
}

func (s *Session) Tick(state games.State) {
	s.lock.Lock()
	s.lastState, s.hasState = state, true
	s.lock.Unlock()

	if s.opts.Notifier != nil {
		s.opts.Notifier.NotifyView("score", NewScoreView(state))
	}
}

func (s *Session) GameOver(state games.State) {
	s.lock.Lock()
	s.gameOvers++
	s.lock.Unlock()

	log.Printf("session: %s: game over with score %s\n", s.id, games.FormatScore(state.Score))

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				util.LogPanic(r)
			}
		}()
		s.handleGameOver(s.ctx, state.Score)
	}()
}

// HandleGameOver asks for a pseudonym and submits score, synchronously.
func (s *Session) HandleGameOver(ctx context.Context, score int) Report {
	return s.handleGameOver(ctx, score)
}

func (s *Session) handleGameOver(ctx context.Context, score int) (r Report) {
	r = Report{Score: score, Game: s.game}
	defer func() { s.opts.Reporter.Report(r) }()

	def := s.LastPseudonym()
	if def == "" {
		def = DefaultPseudonym
	}

	pseudo, err := s.opts.Prompter.Prompt(ctx, PromptRequest{Game: s.name, Score: score, Default: def})
	pseudo = strings.TrimSpace(pseudo)
	if err != nil || pseudo == "" {
		if err != nil {
			log.Printf("session: %s: prompt: %v\n", s.id, err)
		}
		r.Kind = ReportNotSaved
		return
	}

	s.SetLastPseudonym(pseudo)
	r.Pseudo = pseudo

	if s.opts.Submitter == nil {
		r.Kind, r.Detail = ReportFailed, "no score submitter configured"
		return
	}

	sctx, cancel := context.WithTimeout(ctx, DefaultSubmitTimeout)
	defer cancel()
	created, err := s.opts.Submitter.Submit(sctx, client.Submission{Pseudo: pseudo, Score: score, Game: s.game})
	if err != nil {
		log.Printf("session: %s: submit: %v\n", s.id, err)
		r.Kind, r.Err, r.Detail = ReportFailed, err, err.Error()
		return
	}

	log.Printf("session: %s: saved score %d for '%s' as #%d\n", s.id, score, pseudo, created.ID)
	r.Kind = ReportSaved
	return
}

// DebugInfo is an inspection dump of a running session.
type DebugInfo struct {
	ID         string      `json:"id"`
	Game       string      `json:"game"`
	Running    bool        `json:"running"`
	LastScore  int         `json:"lastScore"`
	GameOvers  int         `json:"gameOvers"`
	State      games.State `json:"state"`
	MemoryPath string      `json:"memoryPath,omitempty"`
	Regions    []string    `json:"regions,omitempty"`
	// Graph is a graphviz rendering of the session's reader and last state.
	Graph string `json:"graph,omitempty"`
}

// Debug returns a snapshot of the session's internals for inspection.
func (s *Session) Debug() DebugInfo {
	s.lock.Lock()
	info := DebugInfo{
		ID:        s.id,
		Game:      s.game,
		GameOvers: s.gameOvers,
		State:     s.lastState,
	}
	s.lock.Unlock()

	info.Running = s.poller.IsRunning()
	info.LastScore = s.poller.LastScore()

	graphed := []interface{}{&info.State}
	if r, ok := s.reader.(*MemoryReader); ok {
		info.MemoryPath = r.accessor.Path()
		if snap := r.LastSnapshot(); snap != nil {
			for _, region := range snap.Regions() {
				info.Regions = append(info.Regions, region.String())
			}
		}
		graphed = append(graphed, r.Config())
	}

	var buf bytes.Buffer
	memviz.Map(&buf, graphed...)
	info.Graph = buf.String()

	return info
}
