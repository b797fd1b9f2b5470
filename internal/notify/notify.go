package notify

import (
	"context"
	"log"

	"github.com/parkspot/parkspot/internal/kafka"
)

// Sender delivers booking notifications to drivers. The current sink just
// logs; swapping in mail or push delivery only touches this package.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify driver %s: booking %s %s (slot %s)", event.DriverID, event.BookingID, event.Type, event.SlotCode)
	return nil
}
