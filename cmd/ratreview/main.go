package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tgakit/ratreview/config"
	"github.com/tgakit/ratreview/decode"
	"github.com/tgakit/ratreview/document"
	"github.com/tgakit/ratreview/extract"
	"github.com/tgakit/ratreview/fetch"
	"github.com/tgakit/ratreview/logger"
	"github.com/tgakit/ratreview/review"
)

const defaultLogLevel = "info"

func main() {
	configFile := flag.String("config", "", "YAML file overriding the default document layout")
	logLevel := flag.String("log-level", defaultLogLevel, "log level: debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		slog.Warn("unknown log level, using info", "level", *logLevel)
		level = slog.LevelInfo
	}
	log := logger.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.txt|file.pdf|https://... ...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.New()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Error("failed to load config", "file", *configFile, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	reader, err := document.New(cfg)
	if err != nil {
		log.Error("failed to create document reader", "error", err)
		os.Exit(1)
	}
	reader = reader.WithLogger(log)
	client := fetch.New(cfg.Fetch).WithLogger(log)

	// Document builds share no state, so every input gets its own goroutine.
	tables := make([]*review.Table, flag.NArg())
	group, ctx := errgroup.WithContext(context.Background())
	for i, arg := range flag.Args() {
		i, arg := i, arg
		group.Go(func() error {
			tbl, err := read(ctx, reader, client, arg)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			log.Info("document reconstructed", "source", arg, "entries", len(tbl.Entries))
			tables[i] = tbl
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		log.Error("failed to reconstruct documents", "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tables); err != nil {
		log.Error("failed to encode output", "error", err)
		os.Exit(1)
	}
}

// read reconstructs one review document from a pre-extracted .txt file, a
// local .pdf, or an http(s) URL to download the PDF from.
func read(ctx context.Context, reader *document.Reader, client *fetch.Client, source string) (*review.Table, error) {
	var raw []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = client.Get(ctx, source)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	if isPDF(source, raw) {
		raw, err = extract.New().Text(ctx, raw)
		if err != nil {
			return nil, err
		}
	}
	pages, err := decode.Document(raw)
	if err != nil {
		return nil, err
	}
	return reader.Read(pages)
}

// isPDF reports whether the source needs text extraction, by extension for
// files and by magic bytes for downloads.
func isPDF(source string, raw []byte) bool {
	if strings.EqualFold(filepath.Ext(source), ".pdf") {
		return true
	}
	return len(raw) >= 5 && string(raw[:5]) == "%PDF-"
}
