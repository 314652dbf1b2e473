package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
	"github.com/xxxsen/botbase/internal/pkg/jwt"
	"github.com/xxxsen/botbase/internal/pkg/password"
)

// The unlock flow has a single owner account behind one shared access code.
const ownerAccountID = "owner"

type AuthService struct {
	accessCodeHash string
	jwtSecret      []byte
	tokenTTL       time.Duration
}

func NewAuthService(accessCodeHash string, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		accessCodeHash: accessCodeHash,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
	}
}

// Unlock exchanges the shared access code for a bearer token.
func (s *AuthService) Unlock(ctx context.Context, accessCode string) (string, error) {
	if err := password.Compare(s.accessCodeHash, accessCode); err != nil {
		logutil.GetLogger(ctx).Warn("unlock rejected", zap.Error(err))
		return "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(ownerAccountID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", err
	}
	return token, nil
}
