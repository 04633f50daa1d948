// Command batch validates a directory of photos against the full pipeline
// and prints a per-code summary, for tuning thresholds over a dataset.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/database"
	"github.com/adastrum/photogate/internal/domain"
	"github.com/adastrum/photogate/internal/models"
	"github.com/adastrum/photogate/internal/pipeline"
	"github.com/adastrum/photogate/internal/repository"
)

type options struct {
	workers int
	outPath string
	record  bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Validate every photo in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(cmd.Context(), args[0], opts)
	},
}

// fileResult is one line of the optional JSON output.
type fileResult struct {
	Path   string   `json:"path"`
	Status string   `json:"status"`
	Codes  []string `json:"codes,omitempty"`
}

func run(ctx context.Context, dir string, opts options) error {
	files, err := collectImages(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no JPEG or PNG files found in %s", dir)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Batch runs are quiet unless something goes wrong.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	registry, err := models.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create inference registry: %w", err)
	}
	pipe := pipeline.New(cfg, registry, logger)

	// Recording feeds the same audit trail the API writes, so batch runs
	// show up in the code-frequency rollups.
	var repo *repository.ValidationRepository
	if opts.record {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--record requires DATABASE_URL to be set")
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		repo = repository.NewValidationRepository(pool)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Validating photos"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	tasks := make(chan string)
	results := make(chan fileResult, opts.workers)

	var wg sync.WaitGroup
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				results <- validateFile(ctx, pipe, repo, logger, path)
				_ = bar.Add(1)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, path := range files {
			select {
			case tasks <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []fileResult
	codeCounts := make(map[string]int)
	var passed int
	for res := range results {
		all = append(all, res)
		if res.Status == domain.StatusSuccess {
			passed++
		}
		for _, code := range res.Codes {
			codeCounts[code]++
		}
	}
	fmt.Fprintln(os.Stderr)

	printSummary(len(all), passed, codeCounts)

	if opts.outPath != "" {
		if err := writeResults(opts.outPath, all); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", opts.outPath)
	}

	return ctx.Err()
}

func validateFile(ctx context.Context, pipe *pipeline.Pipeline, repo *repository.ValidationRepository, logger *slog.Logger, path string) fileResult {
	res := fileResult{Path: path, Status: domain.StatusFail}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Codes = []string{"unreadable_file"}
		return res
	}

	started := time.Now()
	result, err := pipe.Validate(ctx, data, domain.ModeFull)
	if err != nil {
		res.Codes = []string{string(domain.CodeProcessingFailed)}
		return res
	}

	if repo != nil {
		rec := domain.NewValidationRecord(domain.ModeFull, result, time.Since(started))
		if err := repo.Create(ctx, rec); err != nil {
			logger.Warn("failed to record validation", "path", path, "error", err)
		}
	}

	res.Status = result.Status
	for _, e := range result.Errors {
		res.Codes = append(res.Codes, string(e.Code))
	}
	return res
}

func collectImages(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func printSummary(total, passed int, codeCounts map[string]int) {
	fmt.Printf("Validated %d photos: %d passed, %d failed\n", total, passed, total-passed)
	if len(codeCounts) == 0 {
		return
	}

	codes := make([]string, 0, len(codeCounts))
	for code := range codeCounts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if codeCounts[codes[i]] != codeCounts[codes[j]] {
			return codeCounts[codes[i]] > codeCounts[codes[j]]
		}
		return codes[i] < codes[j]
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tCOUNT")
	for _, code := range codes {
		fmt.Fprintf(w, "%s\t%d\n", code, codeCounts[code])
	}
	_ = w.Flush()
}

func writeResults(path string, results []fileResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "Concurrent validations")
	rootCmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write per-file results to a JSON file")
	rootCmd.Flags().BoolVar(&opts.record, "record", false, "Persist results to the DATABASE_URL audit trail")

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
