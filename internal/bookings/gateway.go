package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"epicly/internal/shared/config"

	"github.com/google/uuid"
)

// ChargeRequest carries everything a gateway needs to attempt a charge.
type ChargeRequest struct {
	BookingID  uuid.UUID     `json:"booking_id"`
	BookingRef string        `json:"booking_ref"`
	Amount     float64       `json:"amount"`
	Method     PaymentMethod `json:"method"`
}

// ChargeResult is the gateway's verdict. The settlement coordinator
// consumes it as-is; it never contacts the gateway itself.
type ChargeResult struct {
	Outcome        Outcome `json:"outcome"`
	TransactionRef string  `json:"transaction_ref"`
	FailureReason  string  `json:"failure_reason,omitempty"`
}

// PaymentGateway attempts to charge for a booking. Implementations must
// be safe for concurrent use.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// NewGateway selects the gateway implementation from configuration.
func NewGateway(cfg *config.Config) PaymentGateway {
	if cfg.Payment.GatewayMode == "http" && cfg.Payment.GatewayURL != "" {
		return &httpGateway{
			url:    cfg.Payment.GatewayURL,
			client: &http.Client{Timeout: 10 * time.Second},
		}
	}
	return &stubGateway{}
}

// stubGateway approves every charge with a synthetic transaction
// reference. Deterministic: no simulated random failures.
type stubGateway struct{}

func (g *stubGateway) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
	return ChargeResult{
		Outcome:        OutcomeSuccess,
		TransactionRef: fmt.Sprintf("TXN-%s", uuid.New().String()),
	}, nil
}

// httpGateway posts the charge request to an external processor and
// decodes its verdict.
type httpGateway struct {
	url    string
	client *http.Client
}

func (g *httpGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return ChargeResult{}, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ChargeResult{}, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ChargeResult{}, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if !result.Outcome.IsValid() {
		return ChargeResult{}, fmt.Errorf("payment gateway returned unknown outcome %q", result.Outcome)
	}
	return result, nil
}
