package engine

import (
	"arcadia/games"
	"arcadia/interfaces"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// GameView is the "game" view model.
type GameView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Game     string `json:"game"`
	Controls string `json:"controls"`
}

// ViewModel is the root view model of the tracker UI.
type ViewModel struct {
	// state:
	session     *Session
	sessionLock sync.Mutex

	isLoadingConfig bool

	// dependency that notifies view of updated view model:
	viewNotifier interfaces.ViewNotifier

	// View Models:
	viewModels     map[string]interface{}
	viewModelsLock sync.Mutex

	sessionViewModel     *SessionViewModel
	leaderboardViewModel *LeaderboardViewModel
}

func NewViewModel(top TopScorer) *ViewModel {
	vm := &ViewModel{}

	// instantiate each child view model:
	vm.sessionViewModel = NewSessionViewModel(vm)
	vm.sessionViewModel.ProvideConfigurationSystem(vm)
	vm.leaderboardViewModel = NewLeaderboardViewModel(vm, top)

	// assign unique names to each view for easy binding with html/js UI:
	vm.viewModels = map[string]interface{}{
		"status":      "Waiting for emulator memory",
		"game":        &GameView{},
		"score":       NewScoreView(games.State{}),
		"session":     vm.sessionViewModel,
		"leaderboard": vm.leaderboardViewModel,
	}

	return vm
}

// Prompter returns the web UI prompter.
func (vm *ViewModel) Prompter() Prompter { return vm.sessionViewModel }

func (vm *ViewModel) Session() *Session {
	vm.sessionLock.Lock()
	defer vm.sessionLock.Unlock()
	return vm.session
}

// AttachSession makes s the session shown in the UI.
func (vm *ViewModel) AttachSession(s *Session, game GameView) {
	vm.sessionLock.Lock()
	vm.session = s
	vm.sessionLock.Unlock()

	if p := vm.sessionViewModel.ConfigurationModel().(*SessionConfiguration).LastPseudonym; p != "" && s.LastPseudonym() == "" {
		s.SetLastPseudonym(p)
	}

	vm.NotifyView("game", &game)
	vm.UpdateAndNotifyView()

	go func() {
		_ = vm.leaderboardViewModel.Refresh(context.Background())
	}()
}

// RegisterView adds a named view model, replacing any previous one.
func (vm *ViewModel) RegisterView(view string, model interface{}) {
	vm.viewModelsLock.Lock()
	vm.viewModels[view] = model
	vm.viewModelsLock.Unlock()

	vm.NotifyView(view, model)
}

func (vm *ViewModel) GetViewModel(view string) (interface{}, bool) {
	defer vm.viewModelsLock.Unlock()
	vm.viewModelsLock.Lock()

	viewModel, ok := vm.viewModels[view]
	return viewModel, ok
}

func (vm *ViewModel) NotifyView(view string, model interface{}) {
	// allow model to customize the instance to be stored as a view model:
	viewModel := model
	if viewModeler, ok := model.(interfaces.ViewModeler); ok {
		viewModel = viewModeler.ViewModel()
	}

	vm.viewModelsLock.Lock()
	// keep the live child view models registered; cache plain values for new websocket connections:
	if _, isViewModeler := model.(interfaces.ViewModeler); !isViewModeler {
		vm.viewModels[view] = viewModel
	}
	vn := vm.viewNotifier
	vm.viewModelsLock.Unlock()

	// notify downstream if applicable:
	if vn == nil {
		return
	}
	vn.NotifyView(view, viewModel)
}

// initializes all view models:
func (vm *ViewModel) Init() {
	for _, model := range vm.models() {
		if i, ok := model.(interfaces.Initializable); ok {
			i.Init()
		}
	}

	vm.LoadConfiguration()
}

type configuration struct {
	Session json.RawMessage `json:"session,omitempty"`
}

func configPath() (string, error) {
	dir, err := interfaces.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func (vm *ViewModel) LoadConfiguration() bool {
	if vm.isLoadingConfig {
		return false
	}

	defer func() {
		vm.isLoadingConfig = false
	}()
	vm.isLoadingConfig = true

	path, err := configPath()
	if err != nil {
		log.Printf("viewmodel: loadConfiguration: could not find configuration directory: %v\n", err)
		return false
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("viewmodel: loadConfiguration: could not read configuration file: %v\n", err)
		}
		return false
	}

	var config configuration
	if err = json.Unmarshal(b, &config); err != nil {
		log.Printf("viewmodel: loadConfiguration: could not json unmarshal configuration file: %v\n", err)
		return false
	}

	if config.Session != nil {
		vm.sessionViewModel.LoadConfiguration(config.Session)
	}

	log.Printf("viewmodel: loadConfiguration: loaded '%s'\n", path)
	return true
}

func (vm *ViewModel) SaveConfiguration() bool {
	if vm.isLoadingConfig {
		return false
	}

	var config configuration
	var err error
	config.Session, err = json.Marshal(vm.sessionViewModel.ConfigurationModel())
	if err != nil {
		log.Printf("viewmodel: saveConfiguration: could not json marshal session configuration: %v\n", err)
		return false
	}

	b, err := json.MarshalIndent(&config, "", "  ")
	if err != nil {
		log.Printf("viewmodel: saveConfiguration: could not json marshal configuration file: %v\n", err)
		return false
	}

	path, err := configPath()
	if err != nil {
		log.Printf("viewmodel: saveConfiguration: could not find configuration directory: %v\n", err)
		return false
	}

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0755); err != nil {
		log.Printf("viewmodel: saveConfiguration: could not make directories along the path '%s': %v\n", dir, err)
	}

	if err = os.WriteFile(path, b, 0644); err != nil {
		log.Printf("viewmodel: saveConfiguration: could not write configuration file '%s': %v\n", path, err)
		return false
	}

	log.Printf("viewmodel: saveConfiguration: saved configuration to file '%s'\n", path)
	return true
}

// Report implements Reporter: shows the outcome in the UI and refreshes the leaderboard after a save.
func (vm *ViewModel) Report(r Report) {
	LogReporter.Report(r)

	vm.setStatus(r.String())
	vm.NotifyView("report", r)

	if r.Kind != ReportSaved {
		return
	}
	vm.UpdateAndNotifyView()
	vm.SaveConfiguration()
	_ = vm.leaderboardViewModel.Refresh(context.Background())
}

// updates all view models:
func (vm *ViewModel) Update() {
	for _, model := range vm.models() {
		if i, ok := model.(interfaces.Updateable); ok {
			i.Update()
		}
	}
}

func (vm *ViewModel) NotifyViewTo(viewNotifier interfaces.ViewNotifier) {
	if viewNotifier == nil {
		return
	}

	// send all view models to this notifier regardless of dirty state:
	for view, model := range vm.models() {
		if viewModeler, ok := model.(interfaces.ViewModeler); ok {
			model = viewModeler.ViewModel()
		}
		viewNotifier.NotifyView(view, model)
	}
}

// updates all view models and notifies view:
func (vm *ViewModel) UpdateAndNotifyView() {
	for view, model := range vm.models() {
		if i, ok := model.(interfaces.Updateable); ok {
			i.Update()
		}
		vm.NotifyViewOf(view, model)
	}
}

func (vm *ViewModel) NotifyViewOf(view string, model interface{}) {
	dirtyable, isDirtyable := model.(interfaces.Dirtyable)
	if isDirtyable && !dirtyable.IsDirty() {
		return
	}

	vm.NotifyView(view, model)

	if isDirtyable {
		dirtyable.ClearDirty()
	}
}

// Implements ViewCommandHandler
func (vm *ViewModel) CommandFor(view, command string) (ce interfaces.Command, err error) {
	svm, ok := vm.GetViewModel(view)
	if !ok {
		return nil, fmt.Errorf("view=%s,cmd=%s: no view model found to handle command", view, command)
	}

	commandHandler, ok := svm.(interfaces.ViewModelCommandHandler)
	if !ok {
		return nil, fmt.Errorf("view=%s,cmd=%s: view model does not handle commands", view, command)
	}

	ce, err = commandHandler.CommandFor(command)
	if err != nil {
		err = fmt.Errorf("view=%s,cmd=%s: error from command handler: %w", view, command, err)
	}
	return
}

func (vm *ViewModel) setStatus(msg string) {
	log.Printf("notify: %s\n", msg)
	vm.NotifyView("status", msg)
}

// SetStatus shows msg as the UI status line.
func (vm *ViewModel) SetStatus(msg string) {
	vm.setStatus(msg)
}

func (vm *ViewModel) ProvideViewNotifier(viewNotifier interfaces.ViewNotifier) {
	vm.viewModelsLock.Lock()
	defer vm.viewModelsLock.Unlock()
	vm.viewNotifier = viewNotifier
}

func (vm *ViewModel) models() map[string]interface{} {
	vm.viewModelsLock.Lock()
	defer vm.viewModelsLock.Unlock()

	models := make(map[string]interface{}, len(vm.viewModels))
	for view, model := range vm.viewModels {
		models[view] = model
	}
	return models
}
