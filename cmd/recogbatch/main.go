package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/batch"
	"github.com/pravodoc/docrecog/internal/common"
	"github.com/pravodoc/docrecog/internal/pipeline"
	"github.com/pravodoc/docrecog/internal/recognize"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		dir      = flag.String("dir", "", "directory of documents to process")
		docType  = flag.String("type", "unknown", "document type hint: passport|snils|license|unknown")
		mode     = flag.String("mode", "local", "recognition mode: local|cloud")
		combined = flag.Bool("combined", false, "treat inputs as pages of one document")
		timeout  = flag.Duration("timeout", 30*time.Minute, "overall deadline")
	)
	flag.Parse()

	paths := flag.Args()
	if *dir != "" {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			logger.Error("read dir", "dir", *dir, "error", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := constants.NormalizeExt(filepath.Ext(e.Name()))
			if _, ok := constants.AllowedExtensions[ext]; ok {
				paths = append(paths, filepath.Join(*dir, e.Name()))
			}
		}
		sort.Strings(paths)
	}
	if len(paths) == 0 {
		logger.Error("usage", "cmd", "recogbatch -dir <dir> | recogbatch file1 file2 ...")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	orch := batch.NewOrchestrator(pipeline.New(cfg, logger), cfg.Batch, logger)

	start := time.Now()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *combined {
		res := orch.RecognizeCombined(ctx, paths, constants.DocType(*docType), recognize.Mode(*mode))
		logger.Info("batch done", "documents", len(paths), "combined", true,
			"confidence", res.Confidence, "elapsed_ms", time.Since(start).Milliseconds())
		if err := enc.Encode(res); err != nil {
			logger.Error("encode result", "error", err)
			os.Exit(1)
		}
		return
	}

	results := orch.RecognizeEach(ctx, paths, constants.DocType(*docType), recognize.Mode(*mode))
	failed := 0
	for _, r := range results {
		if r.Status == constants.StatusUnextracted {
			failed++
		}
	}
	logger.Info("batch done", "documents", len(paths), "unextracted", failed,
		"elapsed_ms", time.Since(start).Milliseconds())
	if err := enc.Encode(results); err != nil {
		logger.Error("encode results", "error", err)
		os.Exit(1)
	}
}
