package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"washtrack-backend/internal/config"
	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
)

type AuthService struct {
	Config   config.Config
	Users    repository.UserRepository
	Branches repository.BranchRepository
}

// Principal is the identity decoded from a session credential: who is
// calling, with what role, scoped to which branch (if any).
type Principal struct {
	UserID     int64
	Name       string
	Email      string
	Role       domain.Role
	BranchID   *int64
	BranchSlug string
	BranchName string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

func (s AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	p := Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
	if user.BranchID != nil {
		branch, err := s.Branches.GetByID(ctx, *user.BranchID)
		if err != nil {
			return nil, fmt.Errorf("load branch scope: %w", err)
		}
		p.BranchID = &branch.ID
		p.BranchSlug = branch.Slug
		p.BranchName = branch.Name
	}

	token, expiresAt, err := s.issueSession(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Principal: p}, nil
}

func (s AuthService) issueSession(p Principal) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.Config.SessionTTL)

	claims := jwt.MapClaims{
		"sub":         strconv.FormatInt(p.UserID, 10),
		"name":        p.Name,
		"email":       p.Email,
		"role":        string(p.Role),
		"branch_slug": p.BranchSlug,
		"branch_name": p.BranchName,
		"token_type":  "session",
		"exp":         expiresAt.Unix(),
		"iat":         now.Unix(),
	}
	if p.BranchID != nil {
		claims["branch_id"] = strconv.FormatInt(*p.BranchID, 10)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.SessionSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// VerifySession decodes and checks a session credential. It never panics and
// never distinguishes failure modes to the caller; an invalid, expired or
// malformed token is simply no principal.
func VerifySession(tokenStr, secret string) (*Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "session" {
		return nil, ErrInvalidSession
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidSession
	}

	roleStr, _ := claims["role"].(string)
	role := domain.Role(roleStr)
	if role != domain.RoleSuperAdmin && role != domain.RoleBranchAdmin {
		return nil, ErrInvalidSession
	}

	p := Principal{
		UserID: userID,
		Role:   role,
	}
	p.Name, _ = claims["name"].(string)
	p.Email, _ = claims["email"].(string)
	p.BranchSlug, _ = claims["branch_slug"].(string)
	p.BranchName, _ = claims["branch_name"].(string)
	if raw, ok := claims["branch_id"].(string); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.BranchID = &id
		}
	}
	return &p, nil
}
