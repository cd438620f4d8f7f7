package services

import (
	"context"
	"fmt"

	"movie-ticketing/models"
	"movie-ticketing/utils"
)

// AutoApproveGateway approves every charge and mints a transaction
// reference. It stands in for a real payment provider in development and
// in tests; production deployments plug their provider in through the
// ChargeGateway interface.
type AutoApproveGateway struct{}

func NewAutoApproveGateway() *AutoApproveGateway { return &AutoApproveGateway{} }

func (g *AutoApproveGateway) Charge(ctx context.Context, session *models.PaymentSession) (string, error) {
	if session.Amount.IsNegative() {
		return "", fmt.Errorf("invalid charge amount %s", session.Amount)
	}
	ref, err := utils.GenerateCode(12)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TX-%s", ref), nil
}
