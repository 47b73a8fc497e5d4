package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/kevinxiao27/inkdoc/internal/config"
	"github.com/kevinxiao27/inkdoc/internal/logging"
	"github.com/kevinxiao27/inkdoc/store"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging, os.Stderr, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	storeLogger, err := logging.New(cfg.Logging, os.Stderr, "store")
	if err != nil {
		logger.Error("store logger", "err", err)
		os.Exit(1)
	}
	st, err := store.Open(cfg.Storage.Path, storeLogger)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	server := NewServer(cfg.Document, st, logger)

	logger.Info("API server starting", "addr", cfg.Server.Addr, "db", cfg.Storage.Path)
	if err := http.ListenAndServe(cfg.Server.Addr, server.Handler()); err != nil {
		logger.Error("server stopped", "err", err)
	}
}
