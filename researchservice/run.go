// Package researchservice wires configuration, collaborators, the session
// store, and the HTTP transport into a runnable service.
package researchservice

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lorekeep/lorekeep-research/internal/agents"
	"github.com/lorekeep/lorekeep-research/internal/api"
	"github.com/lorekeep/lorekeep-research/internal/config"
	"github.com/lorekeep/lorekeep-research/internal/logger"
	"github.com/lorekeep/lorekeep-research/internal/orchestrator"
	"github.com/lorekeep/lorekeep-research/internal/store/memstore"
)

// Run starts the research service HTTP server and blocks until shutdown or
// error.
func Run() error {
	log := logger.New("research-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := agents.NewGeminiClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize Gemini client")
		return err
	}

	planner := agents.NewStrategyPlanner(agents.NewGeminiGenerator(client, cfg.PlannerModel), log)
	provider := agents.NewWebSearcher(
		cfg.SearchAPIURL, cfg.SearchAPIKey, cfg.SearchEngineID,
		agents.NewGeminiGenerator(client, cfg.ResearcherModel), log)
	synth := agents.NewReportSynthesizer(agents.NewGeminiGenerator(client, cfg.SynthesizerModel), log)

	sessions := memstore.New(log)
	orch := orchestrator.New(planner, provider, synth, sessions,
		time.Duration(cfg.CollaboratorTimeoutSeconds)*time.Second, log).
		WithDefaultNumSources(cfg.DefaultNumSources)

	router := api.NewRouter(orch, sessions, cfg.MaxDocumentBytes, log)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}
