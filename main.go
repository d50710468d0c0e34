package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/richardsr020/maxim-advisor/internal/ai"
	"github.com/richardsr020/maxim-advisor/internal/chat"
	v1 "github.com/richardsr020/maxim-advisor/internal/controllers/v1"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/router"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	dsn, ok := os.LookupEnv("DB_DSN")
	if !ok {
		// Create data directory
		dataDir := filepath.Join(".", "data")
		err := os.MkdirAll(dataDir, os.ModePerm)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		dsn = "data/gorm.db"
	}

	// Connect to the database and migrate all models so that the
	// schema is correct
	err := models.Connect(dsn)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// The assistant only works with a model API key. Everything else
	// works without one.
	if apiKey, ok := os.LookupEnv("GEMINI_API_KEY"); ok && apiKey != "" {
		client, err := ai.NewGemini(context.Background(), apiKey, ai.DefaultModelName)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		v1.ConfigureAssistant(&chat.Service{
			AI:       client,
			UserName: os.Getenv("USER_NAME"),
		})
	} else {
		log.Info().Msg("GEMINI_API_KEY is not set, the assistant is disabled")
	}

	err = router.RegisterPrometheusMetrics()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer router.UnregisterPrometheusMetrics()

	r, err := router.Config()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(r.Group("/"))

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
