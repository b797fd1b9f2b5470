package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkspot/parkspot/config"
	"github.com/parkspot/parkspot/internal/cache"
	"github.com/parkspot/parkspot/internal/kafka"
	"github.com/parkspot/parkspot/internal/notify"
	"github.com/parkspot/parkspot/internal/repository"
	"github.com/parkspot/parkspot/internal/service/booking"
	"github.com/parkspot/parkspot/internal/service/slots"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker sweeps stale reservation holds and forwards booking events to the
// notification sender. It shares state with the app through Postgres, so it
// only runs against the postgres storage mode.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Mode != "postgres" {
		log.Fatalf("worker requires storage.mode=postgres, got %q", cfg.Storage.Mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	slotRepo := repository.NewSlotRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	driverRepo := repository.NewDriverRepository(pool)
	providerRepo := repository.NewProviderRepository(pool)

	var slotOpts []slots.SlotServiceOption
	var bookingOpts []booking.BookingServiceOption
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.StatsCacheTTLSeconds)*time.Second)
		slotOpts = append(slotOpts, slots.WithCache(redisCache))
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
	}

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		slotOpts = append(slotOpts, slots.WithProducer(producer, cfg.Kafka.SlotEventsTopic))
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
		defer consumer.Close()
	}
	if !*cfg.Booking.OccupyOnBook {
		bookingOpts = append(bookingOpts, booking.WithHoldWindow())
	}
	if !*cfg.Booking.AllowDebtOnCompletion {
		bookingOpts = append(bookingOpts, booking.WithStrictSettlement())
	}

	slotService := slots.NewSlotService(slotRepo, auditRepo, slotOpts...)
	bookingService := booking.NewBookingService(
		bookingRepo,
		driverRepo,
		providerRepo,
		slotService,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		bookingOpts...,
	)

	if consumer != nil {
		sender := notify.NewSender()
		go func() {
			if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
				var event kafka.BookingEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					log.Printf("decode event error: %v", err)
					return nil
				}
				return sender.Send(ctx, event)
			}); err != nil {
				log.Printf("consumer stopped: %v", err)
			}
		}()
	}

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpireStaleHolds(ctx)
			if err != nil {
				log.Printf("expire holds error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d stale holds", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
