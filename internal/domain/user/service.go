package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. 注册、登录、密码校验属于身份提供方
// 2. 反向引用列表的维护方法由交易协调器调用
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, email, password string, p Profile) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error

	// Get 用户资料（含两个反向引用列表）
	Get(ctx context.Context, id uint) (*User, error)

	// UpdateAccountDetails 修改姓名、地址、联系电话、简介，四项都不能为空
	UpdateAccountDetails(ctx context.Context, id uint, d AccountDetails) (*User, error)

	AddBookToSell(ctx context.Context, userID, bookID uint) error
	RemoveBookToSell(ctx context.Context, userID, bookID uint) error
	AddPurchasedBook(ctx context.Context, userID, bookID uint) error
	RemovePurchasedBook(ctx context.Context, userID, bookID uint) error
}

// bcryptCost 平衡安全性与性能（cost每+1，耗时翻倍）
const bcryptCost = 12

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 用户名2-50个字符，姓名不能为空
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password string, p Profile) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	p.Username = strings.TrimSpace(p.Username)
	if n := len([]rune(p.Username)); n < 2 || n > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为2-50个字符")
	}
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "姓名不能为空")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(email, string(hashed), p)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}
	return u, nil
}

// Login 邮箱不存在与密码错误返回同一个错误，避免探测已注册邮箱
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uint) (*User, error) {
	if id == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateAccountDetails(ctx context.Context, id uint, d AccountDetails) (*User, error) {
	d = AccountDetails{
		FullName:      strings.TrimSpace(d.FullName),
		Address:       strings.TrimSpace(d.Address),
		ContactNumber: strings.TrimSpace(d.ContactNumber),
		Description:   strings.TrimSpace(d.Description),
	}
	for _, f := range []struct{ name, value string }{
		{"姓名", d.FullName},
		{"地址", d.Address},
		{"联系电话", d.ContactNumber},
		{"简介", d.Description},
	} {
		if f.value == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, f.name+"不能为空")
		}
	}
	if id == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return s.repo.UpdateAccountDetails(ctx, id, d)
}

func (s *service) AddBookToSell(ctx context.Context, userID, bookID uint) error {
	return s.repo.AddBookToSell(ctx, userID, bookID)
}

func (s *service) RemoveBookToSell(ctx context.Context, userID, bookID uint) error {
	return s.repo.RemoveBookToSell(ctx, userID, bookID)
}

func (s *service) AddPurchasedBook(ctx context.Context, userID, bookID uint) error {
	return s.repo.AddPurchasedBook(ctx, userID, bookID)
}

func (s *service) RemovePurchasedBook(ctx context.Context, userID, bookID uint) error {
	return s.repo.RemovePurchasedBook(ctx, userID, bookID)
}

// validatePasswordStrength 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
