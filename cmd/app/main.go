package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/config"
	"github.com/parkspot/parkspot/internal/bootstrap"
	"github.com/parkspot/parkspot/internal/cache"
	"github.com/parkspot/parkspot/internal/kafka"
	"github.com/parkspot/parkspot/internal/repository"
	"github.com/parkspot/parkspot/internal/service/booking"
	"github.com/parkspot/parkspot/internal/service/disputes"
	"github.com/parkspot/parkspot/internal/service/providers"
	"github.com/parkspot/parkspot/internal/service/slots"
	"github.com/parkspot/parkspot/internal/service/stats"
	"github.com/parkspot/parkspot/internal/store"
)

type repos struct {
	slots     repository.SlotRepository
	bookings  repository.BookingRepository
	drivers   repository.DriverRepository
	providers repository.ProviderRepository
	disputes  repository.DisputeRepository
	audit     repository.AuditRepository
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var r repos
	switch cfg.Storage.Mode {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		r = repos{
			slots:     repository.NewSlotRepository(pool),
			bookings:  repository.NewBookingRepository(pool),
			drivers:   repository.NewDriverRepository(pool),
			providers: repository.NewProviderRepository(pool),
			disputes:  repository.NewDisputeRepository(pool),
			audit:     repository.NewAuditRepository(pool),
		}
	default:
		mem := store.New()
		if cfg.Storage.SeedDemo {
			if err := store.SeedDemo(ctx, mem); err != nil {
				log.Fatalf("seed demo data: %v", err)
			}
		}
		r = repos{
			slots:     mem.Slots(),
			bookings:  mem.Bookings(),
			drivers:   mem.Drivers(),
			providers: mem.Providers(),
			disputes:  mem.Disputes(),
			audit:     mem.Audit(),
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.StatsCacheTTLSeconds)*time.Second)
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
	}

	var slotOpts []slots.SlotServiceOption
	if redisCache != nil {
		slotOpts = append(slotOpts, slots.WithCache(redisCache))
	}
	if producer != nil {
		slotOpts = append(slotOpts, slots.WithProducer(producer, cfg.Kafka.SlotEventsTopic))
	}
	slotService := slots.NewSlotService(r.slots, r.audit, slotOpts...)

	var bookingOpts []booking.BookingServiceOption
	if redisCache != nil {
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
	}
	if producer != nil {
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
	}
	if !*cfg.Booking.OccupyOnBook {
		bookingOpts = append(bookingOpts, booking.WithHoldWindow())
	}
	if !*cfg.Booking.AllowDebtOnCompletion {
		bookingOpts = append(bookingOpts, booking.WithStrictSettlement())
	}
	bookingService := booking.NewBookingService(
		r.bookings,
		r.drivers,
		r.providers,
		slotService,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		bookingOpts...,
	)

	var statsOpts []stats.StatsServiceOption
	if redisCache != nil {
		statsOpts = append(statsOpts, stats.WithCache(redisCache))
	}
	statsService := stats.NewStatsService(
		r.bookings, r.slots, r.providers, r.drivers, r.disputes, r.audit,
		cfg.Booking.PlatformFeeRate,
		statsOpts...,
	)

	disputeService := disputes.NewDisputeService(r.disputes, r.bookings)
	providerService := providers.NewProviderService(r.providers)

	services := bootstrap.Services{
		Slots:     slotService,
		Bookings:  bookingService,
		Stats:     statsService,
		Disputes:  disputeService,
		Providers: providerService,
	}

	// The standalone worker shares state through Postgres, so with the memory
	// store the hold expiry sweep has to run in-process.
	if cfg.Storage.Mode != "postgres" && !*cfg.Booking.OccupyOnBook {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					expired, err := bookingService.ExpireStaleHolds(ctx)
					if err != nil {
						log.Printf("expire holds error: %v", err)
						continue
					}
					if len(expired) > 0 {
						log.Printf("expired %d stale holds", len(expired))
					}
				}
			}
		}()
	}

	log.Printf("starting http server on %s (storage=%s)", cfg.HTTP.Address, cfg.Storage.Mode)
	if err := bootstrap.Run(ctx, cfg, services); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
