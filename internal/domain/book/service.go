package book

import (
	"context"
	"errors"
	"strings"
)

// Service 图书领域服务接口(BookLedger)
// 设计说明:
// 1. 图书是否可售的唯一权威,所有状态变更都经过这里
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 卖家/买家的反向引用列表由应用层协调器维护,这里只处理图书本身
type Service interface {
	// Create 发布图书
	// 业务规则:
	// - 书名、学段、年级/专业、学校、品相不能为空,描述可为空
	// - 价格必须>0,至少一张图片
	Create(ctx context.Context, sellerID uint, d Details, images []string) (*Book, error)

	// Get 不存在返回ErrBookNotFound
	Get(ctx context.Context, id uint) (*Book, error)

	// ListBySeller 结果为空返回ErrNoListings
	ListBySeller(ctx context.Context, sellerID uint) ([]*Book, error)

	// ListAvailable 在售图书及卖家信息,结果为空返回ErrNoListings
	ListAvailable(ctx context.Context) ([]*Listing, error)

	// ListSold 结果为空返回ErrNoListings
	ListSold(ctx context.Context) ([]*Book, error)

	// MarkSold 标记售出
	// 业务规则:买家不能是卖家(ErrSelfPurchase),图书必须在售(ErrBookNotAvailable)
	MarkSold(ctx context.Context, id, buyerID uint) (*Book, error)

	// RevertToAvailable 回到在售,幂等,只用于订单取消
	RevertToAvailable(ctx context.Context, id uint) (*Book, error)

	// UpdateDetails 修改图书信息
	// 业务规则:所有文本字段(含描述)不能为空,价格可以为0但不能为负,只有卖家可以修改
	UpdateDetails(ctx context.Context, id, requesterID uint, d Details) (*Book, error)

	// Delete 下架图书
	// 业务规则:只有卖家可以删除,已售出的图书不能删除(ErrBookSold)
	Delete(ctx context.Context, id, requesterID uint) (*Book, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, sellerID uint, d Details, images []string) (*Book, error) {
	if sellerID == 0 {
		return nil, ErrForbidden
	}
	if err := validateForCreate(d, images); err != nil {
		return nil, err
	}

	book := NewBook(sellerID, d, images)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListBySeller(ctx context.Context, sellerID uint) ([]*Book, error) {
	books, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNoListings
	}
	return books, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]*Listing, error) {
	listings, err := s.repo.ListAvailableWithSeller(ctx)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	return listings, nil
}

func (s *service) ListSold(ctx context.Context) ([]*Book, error) {
	books, err := s.repo.ListByStatus(ctx, StatusSold)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNoListings
	}
	return books, nil
}

func (s *service) MarkSold(ctx context.Context, id, buyerID uint) (*Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	book, err := s.repo.MarkSold(ctx, id, buyerID)
	if errors.Is(err, ErrPreconditionFailed) {
		return nil, s.classify(ctx, id, func(cur *Book) error {
			if cur.IsOwnedBy(buyerID) {
				return ErrSelfPurchase
			}
			return ErrBookNotAvailable
		})
	}
	return book, err
}

func (s *service) RevertToAvailable(ctx context.Context, id uint) (*Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	return s.repo.MarkAvailable(ctx, id)
}

func (s *service) UpdateDetails(ctx context.Context, id, requesterID uint, d Details) (*Book, error) {
	if err := validateForUpdate(d); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, ErrBookNotFound
	}

	book, err := s.repo.UpdateDetails(ctx, id, requesterID, d)
	if errors.Is(err, ErrPreconditionFailed) {
		return nil, s.classify(ctx, id, func(cur *Book) error {
			return ErrForbidden
		})
	}
	return book, err
}

func (s *service) Delete(ctx context.Context, id, requesterID uint) (*Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	book, err := s.repo.DeleteAvailable(ctx, id, requesterID)
	if errors.Is(err, ErrPreconditionFailed) {
		return nil, s.classify(ctx, id, func(cur *Book) error {
			if !cur.IsOwnedBy(requesterID) {
				return ErrForbidden
			}
			return ErrBookSold
		})
	}
	return book, err
}

// classify 条件更新未命中后重新读取,区分不存在/无权限/状态冲突
func (s *service) classify(ctx context.Context, id uint, rule func(cur *Book) error) error {
	cur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return rule(cur)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

func validateForCreate(d Details, images []string) error {
	if err := requireText(d, false); err != nil {
		return err
	}
	if d.Price <= 0 {
		return ErrInvalidPrice
	}
	if len(images) == 0 {
		return ErrNoImages
	}
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			return ErrNoImages
		}
	}
	return nil
}

// validateForUpdate 修改时描述也必填,价格只要求非负
func validateForUpdate(d Details) error {
	if err := requireText(d, true); err != nil {
		return err
	}
	if d.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

func requireText(d Details, withDescription bool) error {
	fields := []struct {
		name  string
		value string
	}{
		{"书名", d.Title},
		{"学段", string(d.Level)},
		{"年级/专业", d.Standard},
		{"学校", d.Institute},
		{"品相", string(d.Condition)},
	}
	if withDescription {
		fields = append(fields, struct {
			name  string
			value string
		}{"描述", d.Description})
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errRequired(f.name)
		}
	}

	if !d.Level.Valid() {
		return ErrInvalidLevel
	}
	if !d.Condition.Valid() {
		return ErrInvalidCondition
	}
	return nil
}
