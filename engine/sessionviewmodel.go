package engine

import (
	"arcadia/interfaces"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

const DefaultPromptTimeout = 2 * time.Minute

// SessionViewModel is the "session" view. It doubles as the web UI's Prompter: a prompt is published in
// the view model and answered by the "pseudonym" or "cancel" command.
type SessionViewModel struct {
	root *ViewModel

	commands map[string]interfaces.Command

	configurationSystem interfaces.ConfigurationSystem

	// Timeout bounds how long a prompt waits for an answer.
	Timeout time.Duration `json:"-"`

	lock    sync.Mutex
	isDirty bool
	answer  chan string
	nextID  int

	SessionID     string         `json:"sessionId"`
	LastPseudonym string         `json:"lastPseudonym"`
	Pending       *PromptRequest `json:"prompt"`
	PromptID      int            `json:"promptId"`
}

type SessionConfiguration struct {
	LastPseudonym string `json:"lastPseudonym"`
}

func NewSessionViewModel(root *ViewModel) *SessionViewModel {
	v := &SessionViewModel{
		root:    root,
		Timeout: DefaultPromptTimeout,
	}

	v.commands = map[string]interfaces.Command{
		"pseudonym": &pseudonymCmd{v},
		"cancel":    &cancelPromptCmd{v},
	}

	return v
}

func (v *SessionViewModel) IsDirty() bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.isDirty
}

func (v *SessionViewModel) ClearDirty() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.isDirty = false
}

func (v *SessionViewModel) MarkDirty() {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.isDirty = true
}

func (v *SessionViewModel) CommandFor(command string) (ce interfaces.Command, err error) {
	var ok bool
	ce, ok = v.commands[command]
	if !ok {
		err = fmt.Errorf("no command '%s' found", command)
	}
	return
}

// ViewModel returns a copy safe to marshal while prompts come and go.
func (v *SessionViewModel) ViewModel() interface{} {
	v.lock.Lock()
	defer v.lock.Unlock()

	m := &SessionViewModel{
		SessionID:     v.SessionID,
		LastPseudonym: v.LastPseudonym,
		PromptID:      v.PromptID,
	}
	if v.Pending != nil {
		p := *v.Pending
		m.Pending = &p
	}
	return m
}

func (v *SessionViewModel) ProvideConfigurationSystem(configurationSystem interfaces.ConfigurationSystem) {
	v.configurationSystem = configurationSystem
}

func (v *SessionViewModel) LoadConfiguration(config json.RawMessage) {
	var c SessionConfiguration
	if err := json.Unmarshal(config, &c); err != nil {
		log.Printf("session: loadConfiguration: %v\n", err)
		return
	}

	v.lock.Lock()
	v.LastPseudonym = strings.TrimSpace(c.LastPseudonym)
	v.isDirty = true
	v.lock.Unlock()

	if s := v.root.Session(); s != nil && c.LastPseudonym != "" {
		s.SetLastPseudonym(c.LastPseudonym)
	}
}

func (v *SessionViewModel) ConfigurationModel() interface{} {
	v.lock.Lock()
	defer v.lock.Unlock()
	return &SessionConfiguration{LastPseudonym: v.LastPseudonym}
}

// Update pulls the session id and remembered pseudonym from the attached session.
func (v *SessionViewModel) Update() {
	s := v.root.Session()
	if s == nil {
		return
	}

	v.lock.Lock()
	defer v.lock.Unlock()
	if v.SessionID != s.ID() {
		v.SessionID = s.ID()
		v.isDirty = true
	}
	if p := s.LastPseudonym(); p != "" && p != v.LastPseudonym {
		v.LastPseudonym = p
		v.isDirty = true
	}
}

// Prompt publishes req and waits for the web UI to answer it.
func (v *SessionViewModel) Prompt(ctx context.Context, req PromptRequest) (string, error) {
	answer := make(chan string, 1)

	v.lock.Lock()
	if v.answer != nil {
		close(v.answer)
	}
	v.nextID++
	v.PromptID = v.nextID
	v.Pending = &req
	v.answer = answer
	v.isDirty = true
	timeout := v.Timeout
	v.lock.Unlock()

	v.root.NotifyViewOf("session", v)
	defer v.clearPrompt(answer)

	if timeout <= 0 {
		timeout = DefaultPromptTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case pseudo, ok := <-answer:
		if !ok {
			return "", ErrPromptCancelled
		}
		return pseudo, nil
	case <-timer.C:
		return "", fmt.Errorf("%w: no answer after %v", ErrPromptCancelled, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Answer resolves the pending prompt. It returns false if no prompt is pending.
func (v *SessionViewModel) Answer(pseudo string) bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.answer == nil {
		return false
	}
	v.answer <- pseudo
	v.answer = nil
	return true
}

// CancelPrompt declines the pending prompt.
func (v *SessionViewModel) CancelPrompt() bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.answer == nil {
		return false
	}
	close(v.answer)
	v.answer = nil
	return true
}

func (v *SessionViewModel) clearPrompt(answer chan string) {
	v.lock.Lock()
	if v.answer == answer {
		v.answer = nil
	}
	v.Pending = nil
	v.isDirty = true
	v.lock.Unlock()

	v.root.NotifyViewOf("session", v)
}

// Commands

type pseudonymCmd struct{ v *SessionViewModel }
type pseudonymArgs struct {
	Pseudo string `json:"pseudo"`
}

func (c *pseudonymCmd) CreateArgs() interfaces.CommandArgs { return &pseudonymArgs{} }

func (c *pseudonymCmd) Execute(args interfaces.CommandArgs) error {
	a, ok := args.(*pseudonymArgs)
	if !ok {
		return fmt.Errorf("invalid args type for command")
	}
	if !c.v.Answer(a.Pseudo) {
		return fmt.Errorf("no pseudonym prompt pending")
	}
	return nil
}

type cancelPromptCmd struct{ v *SessionViewModel }

func (c *cancelPromptCmd) CreateArgs() interfaces.CommandArgs { return nil }

func (c *cancelPromptCmd) Execute(_ interfaces.CommandArgs) error {
	c.v.CancelPrompt()
	return nil
}
