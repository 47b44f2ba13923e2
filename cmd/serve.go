package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/model"
	"github.com/legalgapdb/gapcheck/internal/pipeline"
	"github.com/legalgapdb/gapcheck/internal/stats"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation API server",
	Long:  "Serves on-demand case validation, corpus statistics, and validation history over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p := pipeline.New(cfg, nil, st)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/check", func(w http.ResponseWriter, req *http.Request) {
			var rec model.CaseRecord
			dec := json.NewDecoder(req.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&rec); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid case record: " + err.Error()})
				return
			}

			records, _, err := corpus.LoadDir(cfg.Corpus.Dir)
			if err != nil {
				records = nil
			}
			snap := corpus.NewSnapshot(records)

			rep := p.CheckCase(req.Context(), &rec, snap)
			writeJSON(w, http.StatusOK, rep)
		})

		r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
			records, _, err := corpus.LoadDir(cfg.Corpus.Dir)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, stats.Compute(records, time.Now()))
		})

		r.Get("/api/reports/{caseID}", func(w http.ResponseWriter, req *http.Request) {
			caseID := chi.URLParam(req, "caseID")
			reports, err := st.ListReports(req.Context(), caseID, 50)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			if len(reports) == 0 {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no reports for " + caseID})
				return
			}
			writeJSON(w, http.StatusOK, reports)
		})

		r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), 50)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
