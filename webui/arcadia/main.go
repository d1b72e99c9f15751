package main

import (
	"arcadia/client"
	"arcadia/engine"
	"arcadia/games"
	"arcadia/games/snake"
	"arcadia/memory"
	"arcadia/util"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/skratchdot/open-golang/open"
)

// include these memory drivers:
import (
	_ "arcadia/nes/grpcmem"
	_ "arcadia/nes/mock"
	_ "arcadia/nes/retroarch"
)

// include these games:
import (
	_ "arcadia/games/galaga"
	_ "arcadia/games/mario"
)

const (
	defaultMemoryPaths = "grpcmem=localhost:8191,retroarch=localhost:55355"
	defaultListenPort  = 27638

	memoryWaitAttempts = 50
	memoryWaitDelay    = 100 * time.Millisecond
)

var (
	listenHost  string // hostname/ip to listen on for webserver
	listenPort  int    // port number to listen on for webserver
	browserHost string // hostname to send as part of URL to browser to connect to webserver
	browserUrl  string // full URL that is sent to browser (composed of browserHost:listenPort)
)

func main() {
	util.InitLogging("arcadia")
	defer func() {
		if err := recover(); err != nil {
			util.LogPanic(err)
			panic(err)
		}
	}()

	// Parse env vars:
	gameID := strings.ToLower(util.GetOrDefault("ARCADIA_GAME", "mario"))
	apiURL := util.GetOrDefault("ARCADIA_API_URL", client.DefaultBaseURL)
	interval := util.GetMillisOrDefault("ARCADIA_POLL_INTERVAL_MS", 0)
	promptMode := strings.ToLower(util.GetOrDefault("ARCADIA_PROMPT", "web"))

	listenHost = util.GetOrDefault("ARCADIA_WEB_LISTEN_HOST", "0.0.0.0")
	listenPort = util.GetIntOrDefault("ARCADIA_WEB_LISTEN_PORT", defaultListenPort)
	listenAddr := net.JoinHostPort(listenHost, strconv.Itoa(listenPort))

	browserHost = util.GetOrDefault("ARCADIA_WEB_BROWSER_HOST", "127.0.0.1")
	browserUrl = fmt.Sprintf("http://%s:%d/", browserHost, listenPort)

	api := client.NewClient(apiURL)

	// construct our viewModel and web server:
	viewModel := engine.NewViewModel(api)
	webServer := NewWebServer(listenAddr)

	// inform viewModel of web server and vice versa:
	viewModel.ProvideViewNotifier(webServer)
	webServer.ProvideViewCommandHandler(viewModel)

	// initialize viewModel now that all dependencies are set up:
	viewModel.Init()

	opts := engine.Options{
		Submitter: api,
		Reporter:  viewModel,
		Notifier:  viewModel,
		Interval:  interval,
	}
	switch promptMode {
	case "terminal":
		opts.Prompter = NewTerminalPrompter()
		opts.Reporter = engine.ReporterFunc(func(r engine.Report) {
			viewModel.Report(r)
			PrintReport(r)
		})
	default:
		opts.Prompter = viewModel.Prompter()
	}

	ctx := context.Background()
	session, game, err := newSession(ctx, gameID, viewModel, opts)
	if err != nil {
		log.Fatalf("arcadia: %v\n", err)
	}
	webServer.HandleDebug(func() interface{} { return session.Debug() })

	// start the web server:
	go func() {
		log.Fatal(webServer.Serve())
	}()

	viewModel.AttachSession(session, game)
	session.Start(ctx)
	log.Printf("arcadia: session %s started; ui at %s\n", session.ID(), browserUrl)

	// find emulator memory in the background; the poller keeps retrying on its own afterwards:
	go awaitMemory(ctx, session, viewModel)

	// start up a systray app (or just open web UI):
	createSystray()

	_ = session.Close()
	_ = util.FlushLogger()
}

// newSession builds the session for gameID: snake runs in process, the rest read emulator memory.
func newSession(ctx context.Context, gameID string, viewModel *engine.ViewModel, opts engine.Options) (*engine.Session, engine.GameView, error) {
	if gameID == snake.ID {
		g := snake.New(snake.DefaultCols, snake.DefaultRows, nil)
		svm := engine.NewSnakeViewModel(viewModel, g)
		viewModel.RegisterView("snake", svm)
		go svm.Run(ctx, util.GetMillisOrDefault("ARCADIA_SNAKE_SPEED_MS", engine.DefaultSnakeSpeed))

		viewModel.SetStatus("Arrows to move, space to restart")
		return engine.NewSession(snake.Name, snake.Name, g, opts),
			engine.GameView{ID: snake.ID, Name: snake.Name, Title: "SNAKE", Game: snake.Name, Controls: "Keys: arrows | Space = restart"},
			nil
	}

	cfg, err := games.ByID(gameID)
	if err != nil {
		return nil, engine.GameView{}, err
	}

	paths, err := memory.ParsePaths(util.GetOrDefault("ARCADIA_MEMORY_PATHS", defaultMemoryPaths))
	if err != nil {
		return nil, engine.GameView{}, err
	}
	accessor := memory.NewAccessor(paths...)

	return engine.NewMemorySession(cfg, accessor, opts),
		engine.GameView{ID: cfg.ID, Name: cfg.Name, Title: cfg.Title, Game: cfg.GameName(), Controls: cfg.Controls},
		nil
}

// awaitMemory reports where emulator memory was found. A game config that cannot read that memory is
// fatal, like an unknown game id.
func awaitMemory(ctx context.Context, session *engine.Session, viewModel *engine.ViewModel) {
	path, err := session.AwaitMemory(ctx, memoryWaitAttempts, memoryWaitDelay)
	var cfgErr *games.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		viewModel.SetStatus(err.Error())
		_ = util.FlushLogger()
		log.Fatalf("arcadia: %v\n", err)
	case err != nil:
		log.Printf("arcadia: %v\n", err)
		viewModel.SetStatus("Emulator memory not found; still trying")
	case path != "":
		viewModel.SetStatus(fmt.Sprintf("Reading memory from %s", path))
	}
}

func openWebUI() {
	err := open.Start(browserUrl)
	if err != nil {
		log.Println(err)
	}
}
