package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// CaptureResult is the outcome of a capture attempt
type CaptureResult struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

// Gateway captures payment for a finalized reservation
type Gateway interface {
	Capture(ctx context.Context, amount int64, method string) (*CaptureResult, error)
}

// MockGateway simulates a payment processor. Captures succeed unless
// the method carries a "fail" marker, which the booking flow tests
// use to drive the decline path.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Capture(ctx context.Context, amount int64, method string) (*CaptureResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("capture amount must be positive")
	}

	if strings.Contains(strings.ToLower(method), "fail") {
		return &CaptureResult{
			Success: false,
			Reason:  "card declined",
		}, nil
	}

	return &CaptureResult{
		Success:   true,
		Reference: generateTransactionID(),
	}, nil
}

// generateTransactionID creates a payment reference like TXN_1712345678_a1b2c3d4
func generateTransactionID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return fmt.Sprintf("TXN_%d_%s", time.Now().Unix(), hex.EncodeToString(bytes))
}
