// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/minibnb/minibnb/internal/booking"
	"github.com/minibnb/minibnb/internal/config"
	"github.com/minibnb/minibnb/internal/email"
	"github.com/minibnb/minibnb/internal/jobs"
	"github.com/minibnb/minibnb/internal/logging"
	"github.com/minibnb/minibnb/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	db := store.New(pool)

	var sender email.Sender = email.NewSMTPSender(cfg.SMTPAddr, cfg.EmailFrom)
	if cfg.IsDevelopment() {
		sender = email.StdoutSender{}
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		asynq.Config{
			Concurrency: 8,
			Queues: map[string]int{
				"notify":  10,
				"default": 5,
			},
		},
	)
	mux := asynq.NewServeMux()

	mux.HandleFunc(jobs.TaskBookingConfirmed, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.BookingConfirmedPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			log.Error().Err(err).Msg("bad booking confirmation payload")
			return nil // unparseable payloads never succeed; drop
		}
		guestID, err := uuid.Parse(p.GuestID)
		if err != nil {
			log.Error().Str("guest_id", p.GuestID).Msg("bad guest id in payload")
			return nil
		}
		if err := sendBookingConfirmation(ctx, db, sender, p.BookingID, guestID); err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				log.Warn().Int64("booking_id", p.BookingID).Msg("booking vanished before notification, dropping")
				return nil
			}
			return err // retryable
		}
		return nil
	})

	log.Info().Msg("worker running")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}

func sendBookingConfirmation(ctx context.Context, db *store.Store, sender email.Sender, bookingID int64, guestID uuid.UUID) error {
	b, err := db.Booking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load booking %d: %w", bookingID, err)
	}

	guest, err := db.Profile(ctx, guestID)
	if err != nil {
		return fmt.Errorf("load guest %s: %w", guestID, err)
	}

	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your stay is confirmed: %s to %s, %d guest(s), total %.2f.</p>",
		guest.FirstName, b.CheckIn, b.CheckOut, b.GuestCount, b.TotalPrice,
	)
	if err := sender.Send(guest.Email, "Your booking is confirmed", html); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	log.Info().Int64("booking_id", b.ID).Msg("confirmation sent")
	return nil
}
