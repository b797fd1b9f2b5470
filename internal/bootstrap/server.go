package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/api"
	"github.com/parkspot/parkspot/config"
	"github.com/parkspot/parkspot/internal/service/booking"
	"github.com/parkspot/parkspot/internal/service/disputes"
	"github.com/parkspot/parkspot/internal/service/providers"
	"github.com/parkspot/parkspot/internal/service/slots"
	"github.com/parkspot/parkspot/internal/service/stats"
)

type Services struct {
	Slots     slots.SlotUseCase
	Bookings  booking.BookingUseCase
	Stats     stats.StatsUseCase
	Disputes  disputes.DisputeUseCase
	Providers providers.ProviderUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter mounts every handler under /api/v1.
func NewRouter(svc Services) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := engine.Group("/api/v1")
	api.NewSlotHandler(svc.Slots).Register(group)
	api.NewBookingHandler(svc.Bookings).Register(group)
	api.NewStatsHandler(svc.Stats).Register(group)
	api.NewDisputeHandler(svc.Disputes).Register(group)
	api.NewProviderHandler(svc.Providers).Register(group)

	return engine
}
