package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	resultsDir := os.Getenv("RESULTS_DIR")
	if resultsDir == "" {
		resultsDir = "."
	}
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	r := gin.Default()
	h := &handlers{resultsDir: resultsDir, log: log}

	r.GET("/health", h.handleHealth)
	r.GET("/workspaces", h.handleListWorkspaces)
	r.GET("/workspaces/:id/result", h.handleGetResult)

	log.Info("serving results", zap.String("addr", addr), zap.String("dir", resultsDir))
	if err := r.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
