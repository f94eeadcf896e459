// internal/app/system/identity/service.go
package identity

// Terminology: User Identifiers
//   - UserID / userID / user_id: the account _id, shared by the profile, sessions and activities
//   - SessionID / session_id: the _id of a server-side session record

import (
	"context"
	"errors"
	"time"

	accountstore "github.com/dalemusser/stajyerlog/internal/app/store/accounts"
	"github.com/dalemusser/stajyerlog/internal/app/store/sessions"
	userstore "github.com/dalemusser/stajyerlog/internal/app/store/users"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/authutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Client describes the device a session is opened from.
type Client struct {
	IP        string
	UserAgent string
}

// SignedIn is the result of a successful Login or Register.
type SignedIn struct {
	User    models.User
	Session models.Session
}

// Service owns accounts, profiles and server-side sessions.
type Service struct {
	accounts   *accountstore.Store
	users      *userstore.Store
	sessions   *sessions.Store
	sessionTTL time.Duration
	log        *zap.Logger
}

// New builds the service over db. sessionTTL bounds every new session.
func New(db *mongo.Database, sessionTTL time.Duration, logger *zap.Logger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{
		accounts:   accountstore.New(db),
		users:      userstore.New(db),
		sessions:   sessions.New(db),
		sessionTTL: sessionTTL,
		log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sessions                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Login verifies the password, closes every open session of the account and
// opens exactly one new session.
func (s *Service) Login(ctx context.Context, email, password string, client Client) (*SignedIn, error) {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, wrap(ErrLoginFailed, err)
	}
	if !authutil.CheckPassword(password, acct.PasswordHash) {
		return nil, ErrLoginFailed
	}

	u, err := s.users.GetByUserID(ctx, acct.ID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, wrap(ErrLoginFailed, ErrProfileNotFound)
		}
		return nil, wrap(ErrLoginFailed, err)
	}

	sess, err := s.sessions.Create(ctx, acct.ID, client.IP, client.UserAgent, s.sessionTTL)
	if err != nil {
		return nil, wrap(ErrLoginFailed, err)
	}
	return &SignedIn{User: *u, Session: sess}, nil
}

// Register creates the account, opens a session and creates the profile with
// the intern role. A failed profile insert rolls back the account.
func (s *Service) Register(ctx context.Context, email, password, name string, client Client) (*SignedIn, error) {
	email = normalize.Email(email)
	name = normalize.Name(name)
	if email == "" || name == "" {
		return nil, ErrRegisterFailed
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return nil, wrap(ErrRegisterFailed, err)
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return nil, wrap(ErrRegisterFailed, err)
	}

	acct, err := s.accounts.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, accountstore.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, wrap(ErrRegisterFailed, err)
	}

	sess, err := s.sessions.Create(ctx, acct.ID, client.IP, client.UserAgent, s.sessionTTL)
	if err != nil {
		s.rollbackAccount(acct.ID)
		return nil, wrap(ErrRegisterFailed, err)
	}

	u, err := s.users.Create(ctx, models.User{
		UserID: acct.ID,
		Name:   name,
		Email:  email,
		Role:   models.RoleIntern,
	})
	if err != nil {
		_ = s.sessions.Close(ctx, sess.ID, models.EndReasonLogout)
		s.rollbackAccount(acct.ID)
		return nil, wrap(ErrRegisterFailed, err)
	}

	return &SignedIn{User: u, Session: sess}, nil
}

// Logout closes the session. Unknown ids are not an error.
func (s *Service) Logout(ctx context.Context, sessionID primitive.ObjectID) error {
	if err := s.sessions.Close(ctx, sessionID, models.EndReasonLogout); err != nil {
		return wrap(ErrLogoutFailed, err)
	}
	return nil
}

// CurrentUser returns the profile behind an open, unexpired session.
func (s *Service) CurrentUser(ctx context.Context, sessionID, userID primitive.ObjectID) (*models.User, error) {
	sess, err := s.sessions.GetOpen(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, wrap(ErrNoSession, err)
	}

	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, wrap(ErrNoSession, err)
	}

	if err := s.sessions.Touch(ctx, *sess); err != nil {
		s.log.Warn("session touch failed", zap.Error(err), zap.String("session_id", sessionID.Hex()))
	}
	return u, nil
}

// FetchUser resolves cookie ids for the session middleware.
func (s *Service) FetchUser(ctx context.Context, userID, sessionID string) *auth.SessionUser {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	sid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil
	}

	ctx, cancel := timeouts.WithShort(ctx)
	defer cancel()

	u, err := s.CurrentUser(ctx, sid, uid)
	if err != nil {
		if err != ErrNoSession {
			s.log.Warn("session lookup failed", zap.Error(err), zap.String("user_id", userID))
		}
		return nil
	}
	return &auth.SessionUser{
		ID:        userID,
		SessionID: sessionID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Profiles                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// GetUserProfile returns the profile for userID.
func (s *Service) GetUserProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, wrap(ErrProfileNotFound, err)
	}
	return u, nil
}

// UpdateName changes the profile's display name.
func (s *Service) UpdateName(ctx context.Context, userID primitive.ObjectID, name string) error {
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return wrap(ErrUpdateNameFailed, err)
	}
	return nil
}

// UpdatePassword replaces the password after verifying the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	acct, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return wrap(ErrUpdatePassFailed, err)
	}
	if !authutil.CheckPassword(current, acct.PasswordHash) {
		return ErrWrongPassword
	}
	if err := authutil.ValidatePassword(next); err != nil {
		return wrap(ErrUpdatePassFailed, err)
	}
	hash, err := authutil.HashPassword(next)
	if err != nil {
		return wrap(ErrUpdatePassFailed, err)
	}
	if err := s.accounts.SetPasswordHash(ctx, userID, hash); err != nil {
		return wrap(ErrUpdatePassFailed, err)
	}
	return nil
}

// ListInterns returns every intern profile sorted by name.
func (s *Service) ListInterns(ctx context.Context) ([]models.User, error) {
	out, err := s.users.ListByRole(ctx, models.RoleIntern)
	if err != nil {
		return nil, wrap(ErrListInternsFailed, err)
	}
	return out, nil
}

// ProfilesByIDs returns the profiles of ids keyed by user id.
func (s *Service) ProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	return s.users.GetByUserIDs(ctx, ids)
}

// EnsureManager creates a manager account and profile when the email is not
// registered yet. It reports whether anything was created.
func (s *Service) EnsureManager(ctx context.Context, email, password, name string) (bool, error) {
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, accountstore.ErrNotFound) {
		return false, err
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return false, err
	}
	acct, err := s.accounts.Create(ctx, email, hash)
	if err != nil {
		return false, err
	}
	if _, err := s.users.Create(ctx, models.User{
		UserID: acct.ID,
		Name:   name,
		Email:  acct.Email,
		Role:   models.RoleManager,
	}); err != nil {
		s.rollbackAccount(acct.ID)
		return false, err
	}
	return true, nil
}

func (s *Service) rollbackAccount(id primitive.ObjectID) {
	ctx, cancel := timeouts.WithShort(context.Background())
	defer cancel()
	if err := s.accounts.Delete(ctx, id); err != nil {
		s.log.Error("account rollback failed", zap.Error(err), zap.String("user_id", id.Hex()))
	}
}
