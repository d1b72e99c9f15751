package main

import (
	"arcadia/interfaces"
	"arcadia/webui/dist"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

type WebServer struct {
	listenAddr string

	commandHandler interfaces.ViewCommandHandler

	mux *http.ServeMux

	socketsRw sync.RWMutex
	sockets   []*Socket

	// broadcast channel to all sockets:
	q chan ViewModelUpdate
}

type Socket struct {
	ws   *WebServer
	req  *http.Request
	conn net.Conn

	// write channel:
	q chan ViewModelUpdate
}

type ViewModelUpdate struct {
	View      string      `json:"v"`
	ViewModel interface{} `json:"m"`
}

// starts a web server with websockets support to enable bidirectional communication with the UI
func NewWebServer(listenAddr string) *WebServer {
	s := &WebServer{
		listenAddr: listenAddr,
		mux:        http.NewServeMux(),
		socketsRw:  sync.RWMutex{},
		sockets:    make([]*Socket, 0, 2),
		q:          make(chan ViewModelUpdate, 64),
	}

	// handle websockets:
	s.mux.Handle("/ws/", http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(req, rw)
		if err != nil {
			log.Println(err)
			rw.WriteHeader(400)
			return
		}

		// create the Socket to handle bidirectional communication:
		socket := NewSocket(s, req, conn)
		s.appendSocket(socket)

		// start by sending all view models to this new socket:
		if s.commandHandler != nil {
			s.commandHandler.NotifyViewTo(socket)
		}
	}))

	// serve the embedded UI:
	s.mux.Handle("/", StaticHandler(dist.Content))

	// handle the broadcast channel:
	go s.handleBroadcast()

	return s
}

// HandleDebug exposes debug as JSON at /debug/session.
func (s *WebServer) HandleDebug(debug func() interface{}) {
	s.mux.HandleFunc("/debug/session", func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(rw)
		enc.SetIndent("", "  ")
		if err := enc.Encode(debug()); err != nil {
			log.Printf("web: debug: %v\n", err)
		}
	})
}

func (s *WebServer) Handler() http.Handler { return s.mux }

func (s *WebServer) appendSocket(socket *Socket) {
	s.socketsRw.Lock()
	defer s.socketsRw.Unlock()
	s.sockets = append(s.sockets, socket)
}

// hasSocketLocked reports whether k is still registered; socketsRw must be held.
func (s *WebServer) hasSocketLocked(k *Socket) bool {
	for _, sk := range s.sockets {
		if sk == k {
			return true
		}
	}
	return false
}

func (s *WebServer) removeSocket(k *Socket) {
	s.socketsRw.Lock()
	defer s.socketsRw.Unlock()

	for i, sk := range s.sockets {
		if sk == k {
			s.sockets = append(s.sockets[:i], s.sockets[i+1:]...)
			close(k.q)
			break
		}
	}
}

func (s *WebServer) Serve() error {
	// start server:
	return http.ListenAndServe(s.listenAddr, s.mux)
}

func (s *WebServer) NotifyView(view string, viewModel interface{}) {
	// send to the broadcast channel so that all connected websockets get the update:
	s.q <- ViewModelUpdate{
		View:      view,
		ViewModel: viewModel,
	}
}

func (s *WebServer) ProvideViewCommandHandler(commandHandler interfaces.ViewCommandHandler) {
	s.commandHandler = commandHandler
}

func (s *WebServer) handleBroadcast() {
	// read updates from the broadcast channel:
	for u := range s.q {
		s.socketsRw.RLock()
		// broadcast to all connected sockets; drop updates for sockets that fall behind:
		for _, k := range s.sockets {
			select {
			case k.q <- u:
			default:
				log.Printf("web: socket %s: dropped '%s' update\n", k.req.RemoteAddr, u.View)
			}
		}
		s.socketsRw.RUnlock()
	}
}

func NewSocket(s *WebServer, req *http.Request, conn net.Conn) *Socket {
	k := &Socket{
		ws:   s,
		req:  req,
		conn: conn,
		q:    make(chan ViewModelUpdate, 64),
	}

	go k.readHandler()
	go k.writeHandler()

	return k
}

// NotifyView queues an update for this socket only. Updates for a removed socket are dropped.
func (k *Socket) NotifyView(view string, viewModel interface{}) {
	k.ws.socketsRw.RLock()
	defer k.ws.socketsRw.RUnlock()

	if !k.ws.hasSocketLocked(k) {
		return
	}
	select {
	case k.q <- ViewModelUpdate{View: view, ViewModel: viewModel}:
	default:
		log.Printf("web: socket %s: dropped '%s' update\n", k.req.RemoteAddr, view)
	}
}

type CommandRequest struct {
	View    string          `json:"v"`
	Command string          `json:"c"`
	Args    json.RawMessage `json:"a"`
}

func (k *Socket) readHandler() {
	// the reader is in control of the lifetime of the socket:
	defer func() {
		_ = k.conn.Close()

		// remove self from sockets array:
		k.ws.removeSocket(k)
	}()

	var (
		r       = wsutil.NewReader(k.conn, ws.StateServerSide)
		decoder = json.NewDecoder(r)
	)

	for {
		hdr, err := r.NextFrame()
		if err != nil {
			log.Println(fmt.Errorf("error reading next websocket frame: %w", err))
			break
		}
		if hdr.OpCode == ws.OpClose {
			break
		}
		if hdr.OpCode != ws.OpText {
			goto discard
		}

		{
			// read a JSON command request:
			var creq CommandRequest
			if err := decoder.Decode(&creq); err != nil {
				log.Println(fmt.Errorf("error reading json command request: %w", err))
				goto discard
			}

			if err := k.execute(&creq); err != nil {
				log.Println(err)
				goto discard
			}
		}

		continue

	discard:
		if err := r.Discard(); err != nil {
			log.Println(fmt.Errorf("discard: %w", err))
		}
	}
}

func (k *Socket) execute(creq *CommandRequest) error {
	// command handler:
	if k.ws.commandHandler == nil {
		return fmt.Errorf("no view command handler provided")
	}

	ce, err := k.ws.commandHandler.CommandFor(creq.View, creq.Command)
	if err != nil {
		return fmt.Errorf("error handling json command: %w", err)
	}

	// instantiate a specific args type for the command:
	args := ce.CreateArgs()
	if args != nil && len(creq.Args) > 0 {
		// deserialize json:
		if err = json.Unmarshal(creq.Args, args); err != nil {
			return fmt.Errorf("error deserializing json command args: %w", err)
		}
	}

	// execute the command:
	if err = ce.Execute(args); err != nil {
		return fmt.Errorf("error handling json command within executor: %w", err)
	}
	return nil
}

func (k *Socket) writeHandler() {
	var (
		w       = wsutil.NewWriter(k.conn, ws.StateServerSide, ws.OpText)
		encoder = json.NewEncoder(w)
	)

	// wait for ViewModelUpdates on the channel:
	for u := range k.q {
		var err error
		if err = encoder.Encode(&u); err != nil {
			log.Println(err)
			continue
		}
		if err = w.Flush(); err != nil {
			log.Println(err)
			continue
		}
	}
}
