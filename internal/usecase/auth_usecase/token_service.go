package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"authcore/internal/domain/model"
	"authcore/internal/repository"
)

// リフレッシュトークンの有効期限
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

// 160bit
const refreshTokenBytes = 20

// アクセストークンとリフレッシュトークンの組
type TokenPair struct {
	AccessToken      string    `json:"-"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"-"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// TokenService はトークンの発行とローテーションを担う。
type TokenService struct {
	users      repository.UserRepository
	ledger     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewTokenService(
	users repository.UserRepository,
	ledger repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *TokenService {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenService{
		users:      users,
		ledger:     ledger,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssuePair は新しい組を作る。台帳への保存が終わるまで発行済みとしない。
func (s *TokenService) IssuePair(ctx context.Context, user *model.User) (TokenPair, error) {
	now := s.clock.Now()

	access, accessExp, err := s.issuer.Issue(user, now)
	if err != nil {
		return TokenPair{}, err
	}

	plain, err := generateRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	record := &model.RefreshToken{
		ID:        s.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: HashRefreshToken(plain),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.ledger.Create(ctx, record); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     plain,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// Rotate は提示されたトークンを消費して新しい組を返す。
// 不明・使用済み・偽造はすべて ErrInvalidToken（区別しない）。
// 台帳から消えた時点でそのセッションは終わっている。
func (s *TokenService) Rotate(ctx context.Context, presented string) (TokenPair, *model.User, error) {
	record, err := s.ledger.Consume(ctx, HashRefreshToken(presented))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return TokenPair{}, nil, ErrInvalidToken
		}
		return TokenPair{}, nil, err
	}

	if record.ExpiredAt(s.clock.Now()) {
		return TokenPair{}, nil, ErrTokenExpired
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, nil, ErrUnauthorized
		}
		return TokenPair{}, nil, err
	}
	if !user.IsActive {
		return TokenPair{}, nil, ErrUnauthorized
	}

	pair, err := s.IssuePair(ctx, user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return pair, user, nil
}

// PruneExpired は期限切れの行を消す。
func (s *TokenService) PruneExpired(ctx context.Context) (int64, error) {
	return s.ledger.DeleteExpired(ctx, s.clock.Now())
}

// 台帳にはハッシュだけを置く
func HashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func generateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
