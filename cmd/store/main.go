// cmd/store/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"essentia/internal/adapters/in/http/middleware"
	shared "essentia/internal/platform/di/shared"
	storeDI "essentia/internal/platform/di/store"
)

// atomicHandler allows swapping the underlying handler at runtime safely.
type atomicHandler struct {
	v atomic.Value // stores http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := h.v.Load()
	if cur == nil {
		http.NotFound(w, r)
		return
	}
	cur.(http.Handler).ServeHTTP(w, r)
}

func main() {
	ctx := context.Background()

	// Port resolution: env PORT (Cloud Run) -> 8080
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	// Start listening ASAP with lightweight mux (healthz only)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	switcher := newAtomicHandler(middleware.CORS(middleware.Recover(healthMux)))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      switcher,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var infraHolder atomic.Value // stores *shared.Infra (or nil)
	infraHolder.Store((*shared.Infra)(nil))

	shuttingDown := make(chan struct{})

	// Graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c

		close(shuttingDown)
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}

		if v := infraHolder.Load(); v != nil {
			if infra, ok := v.(*shared.Infra); ok && infra != nil {
				log.Printf("[boot] closing infra resources...")
				if err := infra.Close(); err != nil {
					log.Printf("[boot] infra close error: %v", err)
				}
				infraHolder.Store((*shared.Infra)(nil))
			}
		}

		close(idleConnsClosed)
	}()

	// Start server NOW (Cloud Run startup requirement)
	go func() {
		log.Printf("[boot] listening on :%s (store)", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[boot] server error: %v", err)
		}
	}()

	// Heavy DI init in background; then swap handler to full app mux
	go func() {
		initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		infra, err := shared.NewInfra(initCtx)
		if err != nil {
			log.Printf("[boot] WARN: shared infra init failed: %v (serving /healthz only)", err)
			return
		}
		infraHolder.Store(infra)

		cont, err := storeDI.NewContainer(initCtx, infra)
		if err != nil {
			_ = infra.Close()
			infraHolder.Store((*shared.Infra)(nil))
			log.Printf("[boot] WARN: store di init failed: %v (serving /healthz only)", err)
			return
		}

		select {
		case <-shuttingDown:
			_ = cont.Close()
			_ = infra.Close()
			return
		default:
		}

		fullMux := http.NewServeMux()
		fullMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		storeDI.Register(fullMux, cont)
		log.Printf("[boot] store routes registered")

		switcher.Store(middleware.CORS(middleware.Recover(fullMux)))
		log.Printf("[boot] handler switched to store router")
	}()

	<-idleConnsClosed
	log.Printf("[boot] server stopped")
}
