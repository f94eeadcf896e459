// internal/app/features/students/handler.go
package students

import (
	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Page and toast messages.
const (
	MsgListFailed     = "Stajyerler yüklenirken bir hata oluştu"
	MsgDetailFailed   = "Stajyer bilgileri yüklenirken bir hata oluştu"
	MsgNotFound       = "Stajyer bulunamadı"
	MsgInvalidID      = "Geçersiz stajyer"
	MsgCommentSaved   = "Yorum kaydedildi"
	MsgCommentFailed  = "Yorum kaydedilemedi"
	MsgActivityAbsent = "Aktivite bulunamadı"
)

// DetailTimelineDays is the width of the timeline on the student page.
const DetailTimelineDays = 14

// Handler serves the manager's view of interns.
type Handler struct {
	Activities *activitystore.Store
	Identity   *identity.Service
	Stats      *stats.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

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
		ErrLog:     errLog,
		Log:        logger,
	}
}
