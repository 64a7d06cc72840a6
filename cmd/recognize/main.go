package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pravodoc/docrecog/constants"
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
		file    = flag.String("file", "", "document to recognize (required)")
		docType = flag.String("type", "unknown", "document type hint: passport|snils|license|unknown")
		mode    = flag.String("mode", "local", "recognition mode: local|cloud")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	if *file == "" {
		logger.Error("usage", "cmd", "recognize -file <path> [-type passport] [-mode cloud]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc := pipeline.New(cfg, logger)

	start := time.Now()
	res, err := svc.Recognize(ctx, recognize.Request{
		Path:    *file,
		DocType: constants.DocType(*docType),
		Mode:    recognize.Mode(*mode),
	})
	if err != nil {
		logger.Error("recognition failed", "file", *file, "error", err)
		os.Exit(1)
	}

	logger.Info("recognition done",
		"file", *file,
		"doc_type", res.DocType,
		"method", res.Method,
		"status", res.Status,
		"confidence", res.Confidence,
		"fields", len(res.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
