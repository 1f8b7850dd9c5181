package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/storage"
)

const confirmationEmailTmpl = "confirmation_code.tmpl"

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type TaskExecutor interface {
	Add(task func())
}

type UserStorage interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error)
	SavePending(ctx context.Context, username, email, code string, now time.Time) (*models.User, error)
	GetCode(ctx context.Context, email string) (*models.ConfirmationCode, error)
	Activate(ctx context.Context, id int64) error
}

type Config struct {
	Secret         string
	AccessTokenTTL time.Duration
	CodeTTL        time.Duration
	CodeLength     int
	// AsyncMail queues confirmation emails on the task executor instead of sending inline.
	AsyncMail bool
}

type AuthService struct {
	log          *slog.Logger
	cfg          Config
	storage      UserStorage
	Mailer       MailProvider
	taskExecutor TaskExecutor
	now          func() time.Time
}

func New(
	log *slog.Logger,
	cfg Config,
	storage UserStorage,
	mailer MailProvider,
	taskExecutor TaskExecutor,
) *AuthService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6
	}
	return &AuthService{
		log:          log,
		cfg:          cfg,
		storage:      storage,
		Mailer:       mailer,
		taskExecutor: taskExecutor,
		now:          time.Now,
	}
}

type Claims struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

type ConfirmationEmail struct {
	Username string
	Code     string
	TTL      time.Duration
}

func generateCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func (a *AuthService) sendConfirmationEmail(email string, data ConfirmationEmail) {
	log := a.log.With("email", email)
	log.Info("sending confirmation email")
	if err := a.Mailer.Send(email, confirmationEmailTmpl, data); err != nil {
		log.Error("Error sending confirmation email", "errMsg", err.Error())
	}
}

// Signup issues a fresh confirmation code for the (username, email) pair and mails it.
// The user is created or renamed and stays inactive until a token is obtained.
func (a *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	const op = "auth.AuthService.Signup"
	log := a.log.With("op", op, "username", username, "email", email)

	existing, err := a.storage.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		log.Error("Error loading users", "errMsg", err.Error())
		return nil, err
	}
	for _, u := range existing {
		if u.Username == username && u.Email != email {
			log.Info("username already taken")
			return nil, validator.NewFieldError("username", msgUsernameTaken)
		}
	}
	for _, u := range existing {
		if u.Email == email && u.Username != username {
			log.Info("email already taken")
			return nil, validator.NewFieldError("email", msgEmailTaken)
		}
	}

	code, err := generateCode(a.cfg.CodeLength)
	if err != nil {
		log.Error("Error generating confirmation code", "errMsg", err.Error())
		return nil, err
	}
	user, err := a.storage.SavePending(ctx, username, email, code, a.now())
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("concurrent signup conflict", "errMsg", err.Error())
			if strings.Contains(err.Error(), "username") {
				return nil, validator.NewFieldError("username", msgUsernameTaken)
			}
			return nil, validator.NewFieldError("email", msgEmailTaken)
		}
		log.Error("Error saving pending user", "errMsg", err.Error())
		return nil, err
	}

	data := ConfirmationEmail{Username: username, Code: code, TTL: a.cfg.CodeTTL}
	if a.cfg.AsyncMail && a.taskExecutor != nil {
		a.taskExecutor.Add(func() {
			a.sendConfirmationEmail(email, data)
		})
	} else {
		a.sendConfirmationEmail(email, data)
	}
	return user, nil
}

// ObtainToken exchanges a valid confirmation code for an access token and activates the user.
// The code stays valid until it expires or is replaced by a new signup.
func (a *AuthService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	const op = "auth.AuthService.ObtainToken"
	log := a.log.With("op", op, "username", username)

	user, err := a.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return "", ErrUserNotFound
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return "", err
	}
	stored, err := a.storage.GetCode(ctx, user.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("no confirmation code stored")
			return "", validator.NewFieldError("confirmation_code", msgCodeMissing)
		}
		log.Error("Error getting confirmation code", "errMsg", err.Error())
		return "", err
	}
	now := a.now()
	if stored.Expired(now, a.cfg.CodeTTL) {
		log.Info("confirmation code expired")
		return "", validator.NewFieldError("confirmation_code", msgCodeExpired)
	}
	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		log.Info("confirmation code mismatch")
		return "", validator.NewFieldError("confirmation_code", msgCodeInvalid)
	}
	if !user.IsActive {
		if err := a.storage.Activate(ctx, user.ID); err != nil {
			log.Error("Error activating user", "errMsg", err.Error())
			return "", err
		}
	}
	token, err := a.issueToken(user, now)
	if err != nil {
		log.Error("Error signing token", "errMsg", err.Error())
		return "", err
	}
	return token, nil
}

func (a *AuthService) issueToken(user *models.User, now time.Time) (string, error) {
	claims := Claims{
		UID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.AccessTokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.Secret))
}

// Authenticate resolves a bearer token into the user it was issued for.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.Authenticate"
	log := a.log.With("op", op)

	var claims Claims
	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			return []byte(a.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		log.Info("token rejected", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
	user, err := a.storage.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("token owner not found", "uid", claims.UID)
			return nil, ErrInvalidToken
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	return user, nil
}
