package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/alert"
	"github.com/yi-nology/showcase/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrNoPendingCode      = errors.New("no pending verification code")
)

// RequestInfo describes the client of an operation for alerting.
type RequestInfo struct {
	IP        string
	UserAgent string
	Path      string
	Method    string
}

// dummyHash is compared against when the username is unknown so both
// rejections cost one bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("showcase-unknown-user"), bcrypt.DefaultCost)

// Login checks the password and, on success, issues a fresh verification code
// mailed to the admin. Any older unconsumed code is superseded.
func (s *Service) Login(ctx context.Context, username, password string, req RequestInfo) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.failedLogin(ctx, username, req)
		return nil, ErrInvalidCredentials
	}

	admin, err := s.logic.GetAdminByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrAdminNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.failedLogin(ctx, username, req)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.failedLogin(ctx, username, req)
		return nil, ErrInvalidCredentials
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	now := s.now()
	challenge := &model.TwoFactor{
		UserID:           admin.ID,
		VerificationCode: code,
		ExpiresAt:        now.Add(s.auth.CodeTTL),
	}
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.logic.twoFactorDAO.SupersedeOutstanding(ctx, tx, admin.ID); err != nil {
			return err
		}
		return s.logic.twoFactorDAO.Create(ctx, tx, challenge)
	})
	if err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}

	msg := mailer.Message{
		To:      admin.Username,
		Subject: "Your Verification Code",
		Body:    fmt.Sprintf("Your verification code is %s.", code),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		hlog.CtxErrorf(ctx, "send verification code to admin %d: %v", admin.ID, err)
	}
	return admin, nil
}

func (s *Service) failedLogin(ctx context.Context, username string, req RequestInfo) {
	hlog.CtxWarnf(ctx, "failed admin login for %q from %s", username, req.IP)
	s.alerter.Fire(ctx, alert.Alert{
		Type:      alert.TypeFailedLogin,
		Details:   fmt.Sprintf("Username: %s\nAction: Password check failed.", username),
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Path:      req.Path,
		Method:    req.Method,
	})
}

// VerifyCode consumes the matching usable challenge of the admin. A wrong
// code leaves every challenge untouched.
func (s *Service) VerifyCode(ctx context.Context, adminID uint, code string) (*model.Admin, error) {
	code = strings.TrimSpace(code)
	if adminID == 0 || code == "" {
		return nil, ErrInvalidCode
	}
	now := s.now()
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		challenge, err := s.logic.twoFactorDAO.FindUsable(ctx, tx, adminID, code, now)
		if err != nil {
			return mapNotFound(err, ErrInvalidCode)
		}
		if err := s.logic.twoFactorDAO.MarkVerified(ctx, tx, challenge.ID, now); err != nil {
			return mapNotFound(err, ErrInvalidCode)
		}
		return s.logic.adminDAO.TouchLastLogin(ctx, tx, adminID, now)
	})
	if err != nil {
		return nil, err
	}
	return s.logic.GetAdmin(ctx, adminID)
}

// CreateAdmin registers an admin with a bcrypt hashed password.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.Admin{Username: username, PasswordHash: string(hash)}
	if err := s.logic.adminDAO.Create(ctx, s.logic.db, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("admin already exists")
		}
		return nil, err
	}
	return admin, nil
}

// PendingCode returns the newest usable verification code of an admin.
func (s *Service) PendingCode(ctx context.Context, username string) (*model.TwoFactor, error) {
	admin, err := s.logic.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	challenge, err := s.logic.twoFactorDAO.LatestUsable(ctx, s.logic.db, admin.ID, s.now())
	return challenge, mapNotFound(err, ErrNoPendingCode)
}

// generateCode returns a uniformly random six digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
