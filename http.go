package ihkb

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/brutella/hap/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
)

// Router serves a banner, the raw zone config and the client metrics
func Router(c *infinitive.Client, reg *prometheus.Registry) http.Handler {
	router := chi.NewRouter()
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Infinitive HomeKit Bridge"))
	})

	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		s, err := c.FetchState(r.Context())
		if err != nil {
			log.Info.Printf("status: %s", err.Error())
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s); err != nil {
			log.Info.Println(err.Error())
		}
	})

	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return router
}

// HTTPServer runs until ctx is canceled; an empty addr disables it
func HTTPServer(ctx context.Context, addr string, c *infinitive.Client, reg *prometheus.Registry) error {
	if addr == "" {
		return nil
	}

	srv := &http.Server{
		Handler:      Router(c, reg),
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info.Printf("starting http service at %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info.Printf("stopping http service")
	return srv.Shutdown(context.Background())
}
