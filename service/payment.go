package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gosterim-cli/model"
)

const (
	DefaultPaymentDelay = 2 * time.Second
	transactionIDLength = 9
	declinedCardSuffix  = "0002"
)

// ErrPaymentDeclined is returned when the processor refuses a charge.
var ErrPaymentDeclined = errors.New("payment declined")

// Charge is one payment request.
type Charge struct {
	Total decimal.Decimal
	Card  CardDetails
}

// Processor settles charges. Settle blocks until the charge is settled,
// declined or ctx is done.
type Processor interface {
	Settle(ctx context.Context, charge Charge) (model.Settlement, error)
}

// SimulatedProcessor stands in for a payment gateway: it waits Delay and
// approves every valid card except those ending in 0002.
type SimulatedProcessor struct {
	Delay  time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

func NewSimulatedProcessor(delay time.Duration, logger *slog.Logger) *SimulatedProcessor {
	if delay < 0 {
		delay = 0
	}
	return &SimulatedProcessor{Delay: delay, Now: time.Now, Logger: logger}
}

func (p *SimulatedProcessor) Settle(ctx context.Context, charge Charge) (model.Settlement, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := ValidateCard(charge.Card); err != nil {
		return model.Settlement{}, err
	}
	if !charge.Total.IsPositive() {
		return model.Settlement{}, fmt.Errorf("charge total must be positive, got %s", charge.Total.StringFixed(2))
	}

	suffix := charge.Card.Suffix()
	logger.Info("payment started", "card_suffix", suffix, "total", charge.Total.StringFixed(2))
	if err := sleepContext(ctx, p.Delay); err != nil {
		return model.Settlement{}, err
	}
	if suffix == declinedCardSuffix {
		logger.Warn("payment declined", "card_suffix", suffix)
		return model.Settlement{}, fmt.Errorf("%w: card ending in %s", ErrPaymentDeclined, suffix)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	settlement := model.Settlement{
		CardSuffix:    suffix,
		TransactionId: NewTransactionID(),
		Timestamp:     now().UTC().Truncate(time.Second),
	}
	logger.Info("payment settled", "transaction_id", settlement.TransactionId)
	return settlement, nil
}

// NewTransactionID returns nine lowercase alphanumerics.
func NewTransactionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:transactionIDLength]
}
