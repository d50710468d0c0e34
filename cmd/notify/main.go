// The notify command generates the periodic AI analyses. It is meant
// to run from a daily cron job, but can be forced to run for a
// specific timeframe by hand.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/richardsr020/maxim-advisor/internal/ai"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "notify",
	Short: "Generate periodic AI analyses of the budget",
	Long: `notify writes a JSON export of the completed week, month or year,
lets the AI advisor analyze it and stores the result as a notification.

Runs are idempotent: a rerun for an already analyzed range is a no-op.
Without --timeframe, all timeframes due today are generated.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().String("timeframe", "", "timeframe to generate (week, month, year), defaults to all due today")
	rootCmd.Flags().Bool("dry-run", false, "write the export but skip the AI call and the notification")
	rootCmd.Flags().Bool("force", false, "generate even when the timeframe is not due today")
	rootCmd.Flags().String("db", "data/gorm.db", "database to use")
	rootCmd.Flags().String("export-dir", "exports", "directory to write export files to")

	// All flags can also be set via MAXIM_* environment variables,
	// MAXIM_EXPORT_DIR for --export-dir and so on
	viper.SetEnvPrefix("maxim")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("timeframe", rootCmd.Flags().Lookup("timeframe"))
	_ = viper.BindPFlag("dry-run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("force", rootCmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("db", rootCmd.Flags().Lookup("db"))
	_ = viper.BindPFlag("export-dir", rootCmd.Flags().Lookup("export-dir"))
}

func main() {
	output := io.Writer(os.Stdout)
	if os.Getenv("LOG_FORMAT") == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	now := time.Now()

	timeframes := []models.Timeframe{models.TimeframeWeek, models.TimeframeMonth, models.TimeframeYear}
	if raw := viper.GetString("timeframe"); raw != "" {
		timeframe := models.Timeframe(raw)
		if !timeframe.Valid() {
			return notify.ErrUnknownTimeframe
		}
		timeframes = []models.Timeframe{timeframe}
	}

	opts := notify.Options{
		DryRun: viper.GetBool("dry-run"),
		Force:  viper.GetBool("force"),
	}

	err := models.Connect(viper.GetString("db"))
	if err != nil {
		return err
	}

	var client ai.Client
	if !opts.DryRun {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set, or use --dry-run to only write the export")
		}

		client, err = ai.NewGemini(cmd.Context(), apiKey, ai.DefaultModelName)
		if err != nil {
			return err
		}
	}

	notify.Run(context.Background(), models.DB, client, viper.GetString("export-dir"), timeframes, opts, now)
	return nil
}
