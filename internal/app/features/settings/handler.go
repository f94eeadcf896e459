// internal/app/features/settings/handler.go
package settings

import (
	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"go.uber.org/zap"
)

// Toasts.
const (
	MsgNameUpdated     = "Profil güncellendi"
	MsgPasswordUpdated = "Şifre güncellendi"
)

// Handler owns the signed-in user's account settings.
type Handler struct {
	Identity   *identity.Service
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

// NewHandler constructs a Handler bound to the identity service.
func NewHandler(idSvc *identity.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Identity:   idSvc,
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
	}
}
