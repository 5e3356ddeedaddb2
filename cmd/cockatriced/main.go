package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lguibr/cockatriced/actor"
	"github.com/lguibr/cockatriced/config"
	"github.com/lguibr/cockatriced/deckstore"
	"github.com/lguibr/cockatriced/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/net/websocket"
)

func runServer(cfg *config.Config) error {
	if cfg.Verbose() {
		logrus.SetLevel(logrus.DebugLevel)
	}

	engine := actor.NewEngine()
	registry := engine.SpawnNamed(actor.NewProps(server.NewRegistryProducer(engine, cfg.MaxGamesPerRoom(), cfg.ChatHistorySize())), "registry")
	if registry == nil {
		logrus.Fatal("failed to spawn registry actor")
	}
	time.Sleep(50 * time.Millisecond)

	store := deckstore.NewFileStore(cfg.DeckDir())
	srv := server.New(engine, registry, store, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", server.HandleHealthCheck())
	mux.HandleFunc("/rooms", srv.HandleGetRooms())
	mux.Handle("/subscribe", websocket.Handler(srv.HandleSubscribe()))

	addr := cfg.Bind() + ":" + strconv.Itoa(cfg.Port())
	logrus.WithFields(logrus.Fields{
		"addr":               addr,
		"deck_dir":           cfg.DeckDir(),
		"max_games_per_room": cfg.MaxGamesPerRoom(),
		"chat_history_size":  cfg.ChatHistorySize(),
	}).Info("cockatriced listening")

	err := http.ListenAndServe(addr, mux)
	if err != nil {
		logrus.WithError(err).Warn("server stopped")
		engine.Shutdown(5 * time.Second)
	}
	return err
}

func main() {
	cobra.CheckErr(config.NewCommand(runServer).Execute())
}
