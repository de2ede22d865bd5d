package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/raine/pricemate/internal/config"
	"github.com/raine/pricemate/internal/feedback"
	"github.com/raine/pricemate/internal/form"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/prefs"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/session"
	"github.com/raine/pricemate/internal/storage"
)

func main() {
	var (
		imagePath   string
		estimateID  string
		category    string
		listing     bool
		rate        int
		toggleTheme bool
		interactive bool
		verbose     bool
	)
	flag.StringVar(&imagePath, "image", "", "Path to a product photo")
	flag.StringVar(&estimateID, "id", "", "Show an existing estimate instead of creating one")
	flag.StringVar(&category, "category", "", "Category value, label or search text")
	values := make(map[string]*string)
	for _, f := range form.DetailFields() {
		b := form.FieldBase(f)
		values[b.Name] = flag.String(b.Name, "", b.Label)
	}
	flag.BoolVar(&listing, "listing", false, "Generate listing text at the recommended price")
	flag.IntVar(&rate, "rate", 0, "Rate the estimate accuracy (1-5)")
	flag.BoolVar(&toggleTheme, "toggle-theme", false, "Switch between light and dark output")
	flag.BoolVar(&interactive, "i", false, "Prompt for each field")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", cfg.DBPath, err)
		os.Exit(1)
	}
	defer store.Close()

	a := &app{
		in:            bufio.NewReader(os.Stdin),
		out:           os.Stdout,
		ratings:       feedback.NewStore(store),
		maxImageBytes: cfg.MaxImageBytes(),
		interactive:   interactive,
		now:           time.Now(),
	}

	var g errgroup.Group
	g.Go(func() error {
		a.theme = prefs.LoadTheme(store)
		a.counter = prefs.LoadCounter(store)
		return nil
	})
	g.Go(func() error {
		analyzer, err := llm.NewAnalyzer(ctx, cfg.GeminiAPIKey, store)
		if err != nil {
			return fmt.Errorf("failed to initialize analyzer: %w", err)
		}
		a.analyzer = analyzer
		return nil
	})
	g.Go(func() error {
		mode, err := pricing.ParseMode(cfg.Backend)
		if err != nil {
			return err
		}
		backend, err := pricing.NewBackend(pricing.Options{Mode: mode, BaseURL: cfg.APIURL})
		if err != nil {
			return err
		}
		a.backend = backend
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if toggleTheme {
		a.theme.Toggle()
	}

	opts := runOptions{
		ImagePath: imagePath,
		Category:  category,
		Values:    make(map[string]string, len(values)),
		Listing:   listing,
		Rate:      rate,
	}
	for name, v := range values {
		opts.Values[name] = *v
	}

	if estimateID != "" {
		err = a.showResult(ctx, estimateID, session.New(), opts)
	} else {
		_, err = a.runNew(ctx, opts)
	}
	if err != nil {
		log.Debug().Err(err).Msg("estimate failed")
		os.Exit(1)
	}
}
