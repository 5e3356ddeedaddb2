package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/deckstore"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

// Server wires an actor.Engine, its registry actor, and the shared
// deck store into the handlers net/http and golang.org/x/net/websocket
// dispatch to.
type Server struct {
	Engine    *actor.Engine
	Registry  *actor.PID
	DeckStore deckstore.Store
	Auth      Authenticator
}

func New(engine *actor.Engine, registry *actor.PID, store deckstore.Store, auth Authenticator) *Server {
	if auth == nil {
		auth = GuestAuthenticator{}
	}
	return &Server{Engine: engine, Registry: registry, DeckStore: store, Auth: auth}
}

// HandleSubscribe spawns a ConnectionHandler for each accepted websocket
// and blocks until that actor signals it's done, matching the
// one-goroutine-per-connection shape websocket.Handler expects.
func (s *Server) HandleSubscribe() func(ws *websocket.Conn) {
	return func(ws *websocket.Conn) {
		connAddr := ws.RemoteAddr().String()
		log := logrus.WithField("conn_addr", connAddr)

		done := make(chan struct{})
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).WithField("stack", string(debug.Stack())).Error("panic in HandleSubscribe")
				_ = ws.Close()
				select {
				case <-done:
				default:
					close(done)
				}
			}
		}()

		if s.Engine == nil || s.Registry == nil {
			log.Error("server engine or registry not initialized, closing connection")
			_ = ws.Close()
			close(done)
			return
		}

		playerName := ws.Request().URL.Query().Get("name")
		args := ConnectionHandlerArgs{
			Conn:       ws,
			Engine:     s.Engine,
			Registry:   s.Registry,
			DeckStore:  s.DeckStore,
			Auth:       s.Auth,
			PlayerName: playerName,
			Done:       done,
		}

		pid := s.Engine.SpawnNamed(actor.NewProps(NewConnectionHandlerProducer(args)), "conn")
		if pid == nil {
			log.Error("failed to spawn connection handler, closing connection")
			_ = ws.Close()
			close(done)
			return
		}

		<-done
	}
}

// HandleGetRooms reports the current game listing over plain HTTP, for
// admin tooling that doesn't want to speak the websocket protocol.
func (s *Server) HandleGetRooms() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.WithField("panic", rec).Error("panic in HandleGetRooms")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.Engine == nil || s.Registry == nil {
			http.Error(w, "server not properly initialized", http.StatusInternalServerError)
			return
		}

		reply, err := s.Engine.Ask(s.Registry, listGames{}, 2*time.Second)
		if err != nil {
			if errors.Is(err, actor.ErrTimeout) {
				http.Error(w, "timeout querying game state", http.StatusGatewayTimeout)
			} else {
				http.Error(w, "error querying game state", http.StatusInternalServerError)
			}
			return
		}

		res, ok := reply.(listGamesResult)
		if !ok {
			http.Error(w, "internal server error processing reply", http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(res.Games)
		if err != nil {
			http.Error(w, "error generating room list", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// HandleHealthCheck provides a trivial liveness endpoint.
func HandleHealthCheck() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
