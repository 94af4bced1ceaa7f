package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/postpulse/internal/adapter/sentimentapi"
	"github.com/pscheid92/postpulse/internal/app"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/history"
	"github.com/pscheid92/postpulse/internal/platform/config"
	"github.com/pscheid92/postpulse/internal/platform/logging"
	"github.com/pscheid92/postpulse/internal/schedule"
	"github.com/spf13/cobra"
)

type recommendOptions struct {
	historyPath string
	postsPath   string
	topic       string
	hashtag     string
	polarity    float64
	confidence  float64
	topN        int
	timezone    string
	now         string
	output      string
}

func newRecommendCmd() *cobra.Command {
	var opts recommendOptions
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank posting windows from a history CSV",
		Long: `Rank posting windows from a CSV of timestamp,engagement_count,platform rows.

Sentiment comes from --polarity/--confidence when given, otherwise from the posts in --posts
(one per line), analyzed by the configured sentiment API or the built-in word lists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			explicitSignal := cmd.Flags().Changed("polarity") || cmd.Flags().Changed("confidence")
			return runRecommend(cmd, opts, explicitSignal)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.historyPath, "history", "", "CSV file of past posts (use - for stdin)")
	f.StringVar(&opts.postsPath, "posts", "", "text file of trending posts, one per line")
	f.StringVar(&opts.topic, "topic", "", "topic the posts are about")
	f.StringVar(&opts.hashtag, "hashtag", "", "hashtag to use in content ideas")
	f.Float64Var(&opts.polarity, "polarity", 0, "explicit sentiment polarity in [-1,1]")
	f.Float64Var(&opts.confidence, "confidence", 1, "confidence of the explicit sentiment in [0,1]")
	f.IntVar(&opts.topN, "top", 0, "number of windows to return (default TOP_N)")
	f.StringVar(&opts.timezone, "timezone", "", "IANA time zone for slots (default TIMEZONE)")
	f.StringVar(&opts.now, "now", "", "evaluate as of this RFC 3339 time instead of the current time")
	f.StringVarP(&opts.output, "output", "o", "json", "output format: json|text")
	_ = cmd.MarkFlagRequired("history")

	return cmd
}

func runRecommend(cmd *cobra.Command, opts recommendOptions, explicitSignal bool) error {
	if opts.output != "json" && opts.output != "text" {
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	params := cfg.ScheduleParams()
	if opts.timezone != "" {
		loc, err := time.LoadLocation(opts.timezone)
		if err != nil {
			return fmt.Errorf("invalid --timezone: %w", err)
		}
		params.Location = loc
	}

	clock := clockwork.NewRealClock()
	if opts.now != "" {
		now, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		clock = clockwork.NewFakeClockAt(now)
	}

	engine, err := schedule.NewEngine(params)
	if err != nil {
		return err
	}

	observations, err := loadHistory(cmd.InOrStdin(), opts.historyPath)
	if err != nil {
		return err
	}
	now := clock.Now()
	store := history.NewStore(observations...)
	window := store.Window(now.Add(-cfg.Lookback()), now)
	if dropped := store.Len() - len(window); dropped > 0 {
		slog.Info("Ignoring observations outside the lookback window", "dropped", dropped, "lookback_days", cfg.LookbackDays)
	}

	req := app.RecommendRequest{Topic: opts.topic, Hashtag: opts.hashtag, TopN: opts.topN}
	if explicitSignal {
		req.Signal = &domain.SentimentSignal{Polarity: opts.polarity, Confidence: opts.confidence}
	}
	if opts.postsPath != "" {
		posts, err := readLines(opts.postsPath)
		if err != nil {
			return err
		}
		req.Posts = posts
	}

	svcOpts := app.Options{
		Engine:             engine,
		Clock:              clock,
		Lookback:           cfg.Lookback(),
		SentimentThreshold: cfg.SentimentThreshold,
	}
	if cfg.SentimentAPIURL != "" {
		svcOpts.Provider = sentimentapi.NewClient(sentimentapi.Config{
			URL:     cfg.SentimentAPIURL,
			APIKey:  cfg.SentimentAPIKey,
			Timeout: cfg.SentimentAPITimeout,
			Retry:   sentimentapi.DefaultRetryPolicy,
		}, nil)
	}

	result, err := app.NewService(svcOpts).Evaluate(cmd.Context(), window, req)
	if err != nil {
		return err
	}

	if opts.output == "text" {
		return writeText(cmd.OutOrStdout(), result, params.Location)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadHistory(stdin io.Reader, path string) ([]domain.Observation, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	observations, rowErrs, err := history.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	for _, rowErr := range rowErrs {
		var re *history.RowError
		if errors.As(rowErr, &re) {
			slog.Warn("Skipping history row", "line", re.Line, "reason", re.Reason)
		}
	}
	return observations, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open posts: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return lines, nil
}

func writeText(w io.Writer, result *app.RecommendResult, loc *time.Location) error {
	bw := bufio.NewWriter(w)

	source := "history"
	if result.Fallback {
		source = "best practice (not enough history)"
	}
	fmt.Fprintf(bw, "Sentiment: %s (%s, weight %.2f)\n", result.SentimentLabel, result.SentimentSource, result.SentimentWeight)
	fmt.Fprintf(bw, "Based on: %s, %d observations\n\n", source, result.ObservationCount)

	for _, rec := range result.Recommendations {
		fmt.Fprintf(bw, "%d. %-10s score %.3f  confidence %.2f  next %s\n",
			rec.Rank, rec.Slot, rec.Score, rec.Confidence, rec.NextWindow.In(loc).Format("Mon 2006-01-02 15:04 MST"))
	}
	if len(result.Rejected) > 0 {
		fmt.Fprintf(bw, "\n%d observations rejected\n", len(result.Rejected))
	}
	for _, insight := range result.Insights {
		fmt.Fprintf(bw, "\n- %s", insight)
	}
	if len(result.Insights) > 0 {
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}
