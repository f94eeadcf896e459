// internal/app/features/activities/handler.go
package activities

import (
	"time"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Toasts and page messages.
const (
	MsgCreated      = "Aktivite başarıyla eklendi!"
	MsgUpdated      = "Aktivite güncellendi"
	MsgDeleted      = "Aktivite silindi"
	MsgCreateFailed = "Aktivite oluşturulamadı"
	MsgUpdateFailed = "Aktivite güncellenemedi"
	MsgDeleteFailed = "Aktivite silinemedi"
	MsgNotFound     = "Aktivite bulunamadı"
	MsgLoadFailed   = "Aktivite yüklenemedi"
	MsgNotOwner     = "Bu aktiviteyi yalnızca ekleyen kişi değiştirebilir"
)

// Handler serves the signed-in user's activity log.
type Handler struct {
	Activities *activitystore.Store
	Identity   *identity.Service
	Stats      *stats.Service
	SessionMgr *auth.SessionManager
	Loc        *time.Location
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	now func() time.Time
}

// NewHandler builds the handler. Days are read in the stats service's zone.
func NewHandler(
	db *mongo.Database,
	idSvc *identity.Service,
	statsSvc *stats.Service,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Activities: activitystore.New(db),
		Identity:   idSvc,
		Stats:      statsSvc,
		SessionMgr: sessionMgr,
		Loc:        statsSvc.Location(),
		ErrLog:     errLog,
		Log:        logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for date validation.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}
