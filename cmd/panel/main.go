package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"context-assistant/internal/app"
	"context-assistant/internal/apperr"
	"context-assistant/internal/httputil"
	"context-assistant/internal/platform"
	"context-assistant/internal/prompt"
	"context-assistant/internal/shell"
)

//go:embed index.html
var indexHTML []byte

// The OS owns the key combination; it reaches us as SIGUSR1 or POST /api/show.
const hotkeyHint = "panel: hotkey ready; bind a desktop shortcut (e.g. Ctrl+Shift+X) to `pkill -USR1 panel`"

type processRequest struct {
	Text   string `json:"text"`
	Intent string `json:"intent" validate:"max=1000"`
	Style  string `json:"style" validate:"max=200"`
	Length string `json:"length" validate:"omitempty,oneof=short medium long"`
	NoLLM  bool   `json:"no_llm"`
}

type keyRequest struct {
	APIKey string `json:"api_key" validate:"required,max=512"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	sh := shell.New(deps.Clipboard, pipelineFactory(deps), deps.Config.OpenAIKey, deps.Log)
	hotkey := platform.NewSignalHotkey(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              deps.Config.PanelAddr,
		Handler:           newRouter(deps, sh),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run HTTP server
	g.Go(func() error {
		deps.Log.Info("panel listening", "addr", srv.Addr)
		fmt.Fprintf(os.Stderr, "panel: open http://%s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Run hotkey listener; without one the panel still works via POST /api/show.
	g.Go(func() error {
		if err := hotkey.Register(sh.Activate); err != nil {
			deps.Log.Warn("hotkey unavailable", "err", err)
			return nil
		}
		fmt.Fprintln(os.Stderr, hotkeyHint)
		<-ctx.Done()
		return hotkey.Unregister()
	})

	sh.Activate()

	if err := g.Wait(); err != nil {
		deps.Log.Error("panel stopped", "err", err)
		os.Exit(1)
	}
}

func pipelineFactory(deps app.Deps) shell.Factory {
	return func(apiKey string, noLLM bool) (shell.Processor, error) {
		p, err := app.NewPipeline(deps, apiKey, noLLM)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func newRouter(deps app.Deps, sh *shell.Shell) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.Config.LLMTimeout+10*time.Second)
	r.Use(httputil.LocalOnly(deps.Log, deps.Config.PanelAddr))

	r.Get("/", indexHandler)
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", stateHandler(sh))
		r.Group(func(r chi.Router) {
			// Non-simple content type: browsers must preflight, and no CORS is granted.
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/show", showHandler(sh))
			r.Post("/close", closeHandler(sh))
			r.Post("/process", processHandler(deps, sh))
			r.Post("/key", keyHandler(deps, sh))
		})
	})
	return r
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func stateHandler(sh *shell.Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, sh.View())
	}
}

func showHandler(sh *shell.Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh.Activate()
		httputil.WriteJSON(w, http.StatusOK, sh.View())
	}
}

func closeHandler(sh *shell.Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh.Close()
		httputil.WriteJSON(w, http.StatusOK, sh.View())
	}
}

func processHandler(deps app.Deps, sh *shell.Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		out, err := sh.Process(r.Context(), req.Text, prompt.Options{
			Intent: req.Intent,
			Style:  req.Style,
			Length: prompt.Length(req.Length),
		}, req.NoLLM)
		if err != nil {
			writeProcessError(deps.Log, w, err)
			return
		}

		resp := map[string]any{
			"result":   out.Result.Text,
			"kind":     out.Result.Classification.Kind,
			"language": out.Result.Language.String(),
			"fallback": out.Result.Fallback,
			"copied":   out.Copied,
		}
		if out.CopyErr != nil {
			resp["warning"] = "result not copied to clipboard: " + out.CopyErr.Error()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func keyHandler(deps app.Deps, sh *shell.Shell) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		sh.SetAPIKey(req.APIKey)
		httputil.WriteJSON(w, http.StatusOK, sh.View())
	}
}

// writeProcessError renders a pipeline failure inline in the panel.
func writeProcessError(log *slog.Logger, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindInput:
		status = http.StatusBadRequest
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindRateLimit:
		status = http.StatusTooManyRequests
	case apperr.KindNetwork, apperr.KindMalformed:
		status = http.StatusBadGateway
	}
	log.Warn("process failed", "err", err, "kind", kind.String())
	httputil.WriteJSON(w, status, map[string]any{
		"error":     err.Error(),
		"kind":      kind.String(),
		"retryable": apperr.IsRetryable(err),
	})
}
