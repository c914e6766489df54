package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookswap/internal/domain/user"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// userRepository 用户仓储的MySQL实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateCreateError(err, apperrors.ErrEmailDuplicate)
	}
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户，同时加载两个反向引用列表
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return r.withRefs(ctx, &model)
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return r.withRefs(ctx, &model)
}

// UpdateAccountDetails 单条UPDATE，未命中时区分用户不存在
func (r *userRepository) UpdateAccountDetails(ctx context.Context, id uint, d user.AccountDetails) (*user.User, error) {
	db := r.db.WithContext(ctx)
	err := db.Model(&UserModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"full_name":      d.FullName,
		"address":        d.Address,
		"contact_number": d.ContactNumber,
		"description":    d.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	// RowsAffected在内容未变时为0，以重新读取为准
	return r.FindByID(ctx, id)
}

func (r *userRepository) AddBookToSell(ctx context.Context, userID, bookID uint) error {
	return r.addRef(ctx, userID, bookID, refSelling)
}

func (r *userRepository) RemoveBookToSell(ctx context.Context, userID, bookID uint) error {
	return r.removeRef(ctx, userID, bookID, refSelling)
}

func (r *userRepository) AddPurchasedBook(ctx context.Context, userID, bookID uint) error {
	return r.addRef(ctx, userID, bookID, refPurchased)
}

func (r *userRepository) RemovePurchasedBook(ctx context.Context, userID, bookID uint) error {
	return r.removeRef(ctx, userID, bookID, refPurchased)
}

// addRef 已存在时由唯一索引吸收（ON DUPLICATE KEY UPDATE id=id）
func (r *userRepository) addRef(ctx context.Context, userID, bookID uint, kind int) error {
	db := r.db.WithContext(ctx)
	if err := r.ensureUser(db, userID); err != nil {
		return err
	}
	ref := &UserBookRefModel{UserID: userID, BookID: bookID, Kind: kind}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(ref).Error
}

func (r *userRepository) removeRef(ctx context.Context, userID, bookID uint, kind int) error {
	db := r.db.WithContext(ctx)
	if err := r.ensureUser(db, userID); err != nil {
		return err
	}
	return db.Where("user_id = ? AND book_id = ? AND kind = ?", userID, bookID, kind).
		Delete(&UserBookRefModel{}).Error
}

func (r *userRepository) ensureUser(db *gorm.DB, userID uint) error {
	var count int64
	if err := db.Model(&UserModel{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) withRefs(ctx context.Context, model *UserModel) (*user.User, error) {
	var refs []UserBookRefModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", model.ID).
		Order("id ASC").
		Find(&refs).Error
	if err != nil {
		return nil, err
	}

	u := toUserEntity(model)
	for _, ref := range refs {
		switch ref.Kind {
		case refSelling:
			u.BooksToSell = append(u.BooksToSell, ref.BookID)
		case refPurchased:
			u.BooksPurchased = append(u.BooksPurchased, ref.BookID)
		}
	}
	return u, nil
}

// =========================================
// 辅助函数：Entity ↔ Model 转换
// =========================================

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Username:      u.Username,
		FullName:      u.FullName,
		Avatar:        u.Avatar,
		Address:       u.Address,
		ContactNumber: u.ContactNumber,
		Description:   u.Description,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:             m.ID,
		Email:          m.Email,
		Password:       m.Password,
		Username:       m.Username,
		FullName:       m.FullName,
		Avatar:         m.Avatar,
		Address:        m.Address,
		ContactNumber:  m.ContactNumber,
		Description:    m.Description,
		BooksToSell:    []uint{},
		BooksPurchased: []uint{},
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
