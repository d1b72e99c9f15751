package engine

import (
	"arcadia/client"
	"arcadia/util"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type viewRecorder struct {
	lock  sync.Mutex
	views map[string][]interface{}
}

func (r *viewRecorder) NotifyView(view string, viewModel interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.views == nil {
		r.views = make(map[string][]interface{})
	}
	r.views[view] = append(r.views[view], viewModel)
}

func (r *viewRecorder) last(view string) interface{} {
	r.lock.Lock()
	defer r.lock.Unlock()
	list := r.views[view]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

type fakeTop struct{ scores []client.Score }

func (f *fakeTop) Top(_ context.Context, game string) ([]client.Score, error) {
	return f.scores, nil
}

func TestViewModel_WebPrompt(t *testing.T) {
	util.RouteLogToTest(t)
	t.Setenv("ARCADIA_CONFIG_DIR", t.TempDir())

	vm := NewViewModel(&fakeTop{scores: []client.Score{{ID: 1, Score: 10, Pseudo: "Ada", Game: "Galaga"}}})
	rec := &viewRecorder{}
	vm.ProvideViewNotifier(rec)
	vm.Init()

	sub := &fakeSubmitter{}
	s := NewSession("Galaga", "Galaga", nil, Options{Prompter: vm.Prompter(), Submitter: sub, Reporter: vm})
	vm.AttachSession(s, GameView{ID: "galaga", Name: "Galaga", Game: "Galaga"})

	done := make(chan Report, 1)
	go func() { done <- s.HandleGameOver(context.Background(), 4200) }()

	waitFor(t, func() bool {
		m, ok := rec.last("session").(*SessionViewModel)
		return ok && m.Pending != nil
	})
	m := rec.last("session").(*SessionViewModel)
	if actual, expected := m.Pending.Default, DefaultPseudonym; actual != expected {
		t.Errorf("prompt default actual = %v, expected = %v", actual, expected)
	}
	if b, _ := json.Marshal(m); !strings.Contains(string(b), `"prompt":{`) {
		t.Errorf("session view json missing pending prompt: %s", b)
	}

	ce, err := vm.CommandFor("session", "pseudonym")
	if err != nil {
		t.Fatal(err)
	}
	args := ce.CreateArgs()
	if err = json.Unmarshal([]byte(`{"pseudo":"Grace"}`), args); err != nil {
		t.Fatal(err)
	}
	if err = ce.Execute(args); err != nil {
		t.Fatal(err)
	}

	var r Report
	select {
	case r = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("game over handling did not finish")
	}
	if r.Kind != ReportSaved || r.Pseudo != "Grace" {
		t.Errorf("report actual = %+v", r)
	}
	if len(sub.calls) != 1 || sub.calls[0].Score != 4200 {
		t.Errorf("submissions actual = %+v", sub.calls)
	}

	// the remembered pseudonym survives a restart
	vm2 := NewViewModel(nil)
	vm2.Init()
	if actual, expected := vm2.sessionViewModel.ConfigurationModel().(*SessionConfiguration).LastPseudonym, "Grace"; actual != expected {
		t.Errorf("reloaded pseudonym actual = %v, expected = %v", actual, expected)
	}

	// no prompt pending any more
	if err = ce.Execute(args); err == nil {
		t.Error("Execute() without a pending prompt returned no error")
	}
}

func TestSessionViewModel_PromptTimeoutAndCancel(t *testing.T) {
	util.RouteLogToTest(t)
	t.Setenv("ARCADIA_CONFIG_DIR", t.TempDir())

	vm := NewViewModel(nil)
	v := vm.sessionViewModel
	v.Timeout = 10 * time.Millisecond

	_, err := v.Prompt(context.Background(), PromptRequest{Game: "Galaga", Score: 1, Default: "x"})
	if !errors.Is(err, ErrPromptCancelled) {
		t.Errorf("Prompt() timeout error = %v, expected ErrPromptCancelled", err)
	}

	v.Timeout = time.Minute
	go func() {
		waitFor(t, func() bool { return v.ViewModel().(*SessionViewModel).Pending != nil })
		ce, _ := vm.CommandFor("session", "cancel")
		_ = ce.Execute(nil)
	}()
	_, err = v.Prompt(context.Background(), PromptRequest{Game: "Galaga", Score: 1, Default: "x"})
	if !errors.Is(err, ErrPromptCancelled) {
		t.Errorf("Prompt() cancel error = %v, expected ErrPromptCancelled", err)
	}
}

func TestViewModel_CommandFor_Unknown(t *testing.T) {
	vm := NewViewModel(nil)
	if _, err := vm.CommandFor("nope", "x"); err == nil {
		t.Error("CommandFor(unknown view) returned no error")
	}
	if _, err := vm.CommandFor("status", "x"); err == nil {
		t.Error("CommandFor(status) returned no error")
	}
	if _, err := vm.CommandFor("leaderboard", "refresh"); err != nil {
		t.Error(err)
	}
}
