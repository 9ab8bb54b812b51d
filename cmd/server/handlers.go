package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handlers struct {
	resultsDir string
	log        *zap.Logger
}

func (h *handlers) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListWorkspaces lists every solved job workspace, i.e. directories
// containing a result.csv.
func (h *handlers) handleListWorkspaces(ctx *gin.Context) {
	entries, err := os.ReadDir(h.resultsDir)
	if err != nil {
		h.log.Error("reading results dir", zap.Error(err))
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ids := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(h.resultsDir, entry.Name(), "result.csv")); err == nil {
			ids = append(ids, entry.Name())
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"workspaceIds": ids})
}

func (h *handlers) handleGetResult(ctx *gin.Context) {
	id := ctx.Param("id")
	if id != filepath.Base(id) {
		ctx.Status(http.StatusBadRequest)
		return
	}

	content, err := os.ReadFile(filepath.Join(h.resultsDir, id, "result.csv"))
	if err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": string(content)})
}
