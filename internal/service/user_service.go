package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/EsnatJahan/E-Commerce/internal/auth"
	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/user"
)

var (
	// ErrInvalidCredentials 登录失败统一返回，不区分“用户不存在”与“密码错误”，
	// 避免泄露账号是否注册过
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSignup      = errors.New("name, email and password are required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup 注册：邮箱小写唯一，密码只存 bcrypt 哈希，成功即签发令牌
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*user.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, "", ErrInvalidSignup
	}
	if len(password) < 6 {
		return nil, "", ErrPasswordTooShort
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, "", user.ErrEmailExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &user.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     user.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(s.jwt, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login 校验密码并签发令牌
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	email = normalizeEmail(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Profile 查询当前用户信息
func (s *UserService) Profile(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ProfileUpdate 可选字段请求，nil 表示该字段不修改
type ProfileUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// UpdateProfile 只覆盖请求中出现的字段，其余保持不变
func (s *UserService) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil {
		u.Email = normalizeEmail(*upd.Email)
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
