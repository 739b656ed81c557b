package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"games-ticketing-platform/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway decision policies
const (
	PolicyAlwaysSuccess = "always_success"
	PolicyAlwaysDecline = "always_decline"
	PolicyFailureRate   = "failure_rate"
	PolicyToken         = "token"
)

// Tokens recognized by the token policy
const (
	TokenDecline = "tok_decline"
	TokenError   = "tok_error"
)

// GatewayResult is the outcome of a charge attempt against the gateway
type GatewayResult struct {
	Status    models.TransactionStatus
	Reference string
	Details   string
}

// Authorized reports whether the charge went through
func (r *GatewayResult) Authorized() bool {
	return r.Status == models.TransactionAuthorized
}

// PaymentGateway abstracts the external payment processor
type PaymentGateway interface {
	Charge(ctx context.Context, amountCents int64, method models.PaymentMethod, token string) (*GatewayResult, error)
}

// SimulatedGateway is a deterministic stand-in for a real payment
// processor. The policy decides every charge's fate, which keeps
// integration tests and demo environments predictable.
type SimulatedGateway struct {
	policy      string
	failureRate float64
	latency     time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedGateway creates a simulated gateway with the given decision policy
func NewSimulatedGateway(policy string, failureRate float64, latency time.Duration, logger *zap.Logger) *SimulatedGateway {
	return &SimulatedGateway{
		policy:      policy,
		failureRate: failureRate,
		latency:     latency,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Charge simulates a charge attempt. It honors context cancellation while
// waiting out the configured latency and never returns a Go error for a
// business decline, only for transport-level failures.
func (g *SimulatedGateway) Charge(ctx context.Context, amountCents int64, method models.PaymentMethod, token string) (*GatewayResult, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %d", amountCents)
	}

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := g.decide(token)
	result.Reference = "sim_" + uuid.New().String()

	g.logger.Debug("simulated charge",
		zap.Int64("amount_cents", amountCents),
		zap.String("method", string(method)),
		zap.String("status", string(result.Status)),
		zap.String("reference", result.Reference))

	return result, nil
}

func (g *SimulatedGateway) decide(token string) *GatewayResult {
	switch g.policy {
	case PolicyAlwaysDecline:
		return &GatewayResult{Status: models.TransactionDeclined, Details: "declined by policy"}
	case PolicyFailureRate:
		if g.roll() < g.failureRate {
			return &GatewayResult{Status: models.TransactionDeclined, Details: "declined by failure rate"}
		}
		return &GatewayResult{Status: models.TransactionAuthorized, Details: "authorized"}
	case PolicyToken:
		switch strings.TrimSpace(token) {
		case TokenDecline:
			return &GatewayResult{Status: models.TransactionDeclined, Details: "card declined"}
		case TokenError:
			return &GatewayResult{Status: models.TransactionError, Details: "processor unavailable"}
		default:
			return &GatewayResult{Status: models.TransactionAuthorized, Details: "authorized"}
		}
	default:
		return &GatewayResult{Status: models.TransactionAuthorized, Details: "authorized"}
	}
}

func (g *SimulatedGateway) roll() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}
