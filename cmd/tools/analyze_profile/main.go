package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kapu/viralscope-go/internal/app"
	"github.com/kapu/viralscope-go/internal/config"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/service/normalizer"
	"github.com/kapu/viralscope-go/internal/service/scoring"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	platformFlag  string
	targetFlag    string
	userFlag      string
	objectiveFlag string
	fileFlag      string
	followersFlag int64
	engageFlag    float64
	postsFlag     int64
	timeoutFlag   time.Duration
	logLevelFlag  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "analyze_profile",
		Short:         "Run the viralscope pipeline from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "log level")
	root.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 3*time.Minute, "overall deadline")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Scrape, score and diagnose one profile",
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "instagram, tiktok, youtube or kwai")
	analyzeCmd.Flags().StringVarP(&targetFlag, "url", "u", "", "profile URL or handle")
	analyzeCmd.Flags().StringVar(&userFlag, "user", "cli", "user id recorded on the analysis")
	analyzeCmd.Flags().StringVar(&objectiveFlag, "objective", "", "creator objective")
	_ = analyzeCmd.MarkFlagRequired("platform")
	_ = analyzeCmd.MarkFlagRequired("url")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Scrape and score one profile without the AI diagnosis",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "instagram, tiktok, youtube or kwai")
	snapshotCmd.Flags().StringVarP(&targetFlag, "url", "u", "", "profile URL or handle")
	_ = snapshotCmd.MarkFlagRequired("platform")
	_ = snapshotCmd.MarkFlagRequired("url")

	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Score raw metrics, or a saved provider payload with --file",
		RunE:  runScore,
	}
	scoreCmd.Flags().StringVarP(&platformFlag, "platform", "p", "instagram", "platform of the payload in --file")
	scoreCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "provider payload JSON to normalize")
	scoreCmd.Flags().Int64Var(&followersFlag, "followers", 0, "follower count")
	scoreCmd.Flags().Float64Var(&engageFlag, "engagement", 0, "engagement rate percent")
	scoreCmd.Flags().Int64Var(&postsFlag, "posts", 0, "post count")

	root.AddCommand(analyzeCmd, snapshotCmd, scoreCmd)
	return root
}

// buildContainer assembles the pipeline without persistence.
func buildContainer(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Postgres.Host = ""
	cfg.Redis.Host = ""

	logger, err := util.NewLogger(logLevelFlag, "")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return app.Build(ctx, cfg, logger)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	container, err := buildContainer(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	record, err := container.Analysis.Analyze(ctx, domain.AnalysisRequest{
		UserID:     userFlag,
		Platform:   domain.Platform(platformFlag),
		ProfileURL: targetFlag,
		Objective:  objectiveFlag,
	})
	if err != nil {
		container.Logger.Error("Analysis failed", zap.Error(err))
		return err
	}
	return printJSON(cmd.OutOrStdout(), record)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	platform, err := domain.ParsePlatform(platformFlag)
	if err != nil {
		return err
	}

	container, err := buildContainer(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	snap, err := container.Analysis.Snapshot(ctx, platform, targetFlag)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), snap)
}

func runScore(cmd *cobra.Command, _ []string) error {
	profile := domain.CanonicalProfile{
		Followers:             followersFlag,
		EngagementRatePercent: engageFlag,
		Posts:                 postsFlag,
	}

	if fileFlag != "" {
		platform, err := domain.ParsePlatform(platformFlag)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(fileFlag)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
		normalized, err := normalizer.Normalize(platform, raw)
		if err != nil {
			return err
		}
		if normalized == nil {
			return fmt.Errorf("payload %s holds no profile", fileFlag)
		}
		profile = *normalized
	}

	return printJSON(cmd.OutOrStdout(), domain.Snapshot{
		Profile:   profile,
		Score:     scoring.Score(profile),
		Breakdown: scoring.Breakdown(profile),
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
