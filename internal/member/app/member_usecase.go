package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat_sync_service/internal/member/domain"
	"chat_sync_service/internal/member/repository"
	"chat_sync_service/pkg/database"
	"chat_sync_service/pkg/encrypt"
	"chat_sync_service/pkg/logger"
	token "chat_sync_service/pkg/token"
)

// MemberUseCase is the identity application service the chat service
// leans on for sign-in
type MemberUseCase interface {
	Register(ctx context.Context, email, nickname, password string) error
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, memberID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error
}

type memberUseCase struct {
	memberRepo repository.MemberRepository
	sessionTTL time.Duration
	redisRepo  database.RedisRepository[domain.MemberSession]
}

// NewMemberUseCase create a MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
) MemberUseCase {
	return &memberUseCase{
		memberRepo: memberRepo,
		sessionTTL: sessionTTL,
		redisRepo:  redisRepo,
	}
}

// Register creates the account after the email is confirmed unused
func (m *memberUseCase) Register(ctx context.Context, email, nickname, password string) error {
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return errors.New("email already exists")
	}

	if err := encrypt.ValidatePasswordStrength(password); err != nil {
		return err
	}
	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return err
	}

	member := domain.Member{
		MemberID: uuid.New().String(),
		Email:    email,
		Nickname: nickname,
		Password: pw,
	}

	logger.Log.Debug("register", zap.String("email", email))

	return m.memberRepo.CreateMember(ctx, &member)
}

// FindMember looks a member up by any MemberQuery condition
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// Login verifies the password, issues the JWT and opens the redis
// session keyed by member id
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		return "", errors.New("member not found")
	}
	if member.Status == domain.MemberStatusBan || member.Status == domain.MemberStatusDelete {
		return "", errors.New("member not allowed to sign in")
	}

	if err = member.IsPasswordMatch(password); err != nil {
		return "", err
	}

	member.Status = domain.MemberStatusOnLine

	t, err := token.GenerateJWTWrapper(member.MemberID, string(token.RoleMember))
	if err != nil {
		return "", err
	}
	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	if err := m.redisRepo.Set(ctx, member.MemberID, session, m.sessionTTL); err != nil {
		logger.Log.Errorf("session store error:", err)
	}

	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return "", err
	}

	return t, nil
}

// Logout drops the session and flips the member offline
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Errorf("logout parse token error:", err)
		return err
	}
	logger.Log.Debug("logout", zap.String("member", tokenInfo.MemberID))

	if err := m.redisRepo.Del(ctx, tokenInfo.MemberID); err != nil {
		logger.Log.Errorf("session delete error:", err)
	}

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: tokenInfo.MemberID,
		Status:   domain.MemberStatusOffLine,
	})
}

// ForceLogout clears every session of the member, admin action
func (m *memberUseCase) ForceLogout(ctx context.Context, memberID string) error {
	if err := m.redisRepo.Del(ctx, memberID); err != nil {
		logger.Log.Errorf("session delete error:", err)
	}

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: memberID,
		Status:   domain.MemberStatusOffLine,
	})
}

// CheckSessionTimeout reports true when the session has expired
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		return true, err
	}
	logger.Log.Debug("check session", zap.String("member", fmt.Sprintf("%v", tokenInfo.MemberID)))

	ttl, err := m.redisRepo.GetTTL(ctx, tokenInfo.MemberID)
	if err != nil {
		return true, err
	}

	return ttl <= 0, nil
}

// ReconnectSession extends the session after a client reconnects, so a
// flaky network does not force a re-login mid-conversation
func (m *memberUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		return err
	}
	logger.Log.Debug("reconnect session", zap.String("member", tokenInfo.MemberID))

	return m.redisRepo.ExtendTTL(ctx, tokenInfo.MemberID, m.sessionTTL)
}
