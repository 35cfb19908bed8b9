// services/pass.go - QR check-in passes for verified teams
package services

import (
	"context"
	"fmt"

	"lanarena/models"

	qrcode "github.com/skip2/go-qrcode"
)

// PassSize is the edge of the generated PNG in pixels.
const PassSize = 256

// PassPayload is the text encoded in a team's check-in QR code.
func PassPayload(reg *models.Registration) string {
	return fmt.Sprintf("LANARENA:%s:%s", reg.ID, reg.TeamName)
}

// CheckInPass renders the PNG pass of a verified registration.
func (s *RegistrationService) CheckInPass(ctx context.Context, id string) ([]byte, *models.Registration, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if reg.Status != models.RegistrationVerified {
		return nil, reg, ErrPassUnavailable
	}
	png, err := qrcode.Encode(PassPayload(reg), qrcode.Medium, PassSize)
	if err != nil {
		return nil, reg, fmt.Errorf("encode pass: %w", err)
	}
	return png, reg, nil
}
