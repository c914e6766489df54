package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookswap/internal/domain/book"
)

// bookRepository 图书仓储的MySQL实现
type bookRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBookRepository 创建图书仓储实例
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, err
	}
	return toBookEntity(&model), nil
}

// ListBySeller 卖家发布的全部图书
func (r *bookRepository) ListBySeller(ctx context.Context, sellerID uint) ([]*book.Book, error) {
	var models []BookModel
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toBookEntities(models), nil
}

// ListByStatus 指定状态的全部图书
func (r *bookRepository) ListByStatus(ctx context.Context, status book.Status) ([]*book.Book, error) {
	var models []BookModel
	err := r.db.WithContext(ctx).
		Where("status = ?", int(status)).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toBookEntities(models), nil
}

// listingRow 在售列表的JOIN结果
type listingRow struct {
	BookModel      `gorm:"embedded"`
	SellerUsername string
	SellerFullName string
	SellerAvatar   string
}

// ListAvailableWithSeller 在售图书关联卖家信息
// 使用LEFT JOIN：卖家记录缺失时图书仍然展示，卖家字段为空
func (r *bookRepository) ListAvailableWithSeller(ctx context.Context) ([]*book.Listing, error) {
	var rows []listingRow
	err := r.db.WithContext(ctx).
		Table("books").
		Select("books.*, users.username AS seller_username, users.full_name AS seller_full_name, users.avatar AS seller_avatar").
		Joins("LEFT JOIN users ON users.id = books.seller_id AND users.deleted_at IS NULL").
		Where("books.status = ?", int(book.StatusAvailable)).
		Order("books.created_at DESC, books.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	listings := make([]*book.Listing, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		listings = append(listings, &book.Listing{
			Book: toBookEntity(&row.BookModel),
			Seller: book.SellerSummary{
				ID:       row.SellerID,
				Username: row.SellerUsername,
				FullName: row.SellerFullName,
				Avatar:   row.SellerAvatar,
			},
		})
	}
	return listings, nil
}

// UpdateDetails 修改图书信息
// 条件：seller_id = sellerID，非卖家或不存在都不会命中
func (r *bookRepository) UpdateDetails(ctx context.Context, id, sellerID uint, d book.Details) (*book.Book, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Updates(map[string]interface{}{
			"title":             d.Title,
			"education_level":   string(d.Level),
			"specific_standard": d.Standard,
			"institute_name":    d.Institute,
			"book_condition":    string(d.Condition),
			"description":       d.Description,
			"price":             d.Price,
			"updated_at":        r.now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// 内容与updated_at都未变化时MySQL同样返回0，以回读结果为准
		cur, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !cur.IsOwnedBy(sellerID) {
			return nil, book.ErrPreconditionFailed
		}
		return cur, nil
	}
	return r.FindByID(ctx, id)
}

// MarkSold 标记售出
// 关键：WHERE status = 在售 AND seller_id <> buyerID
// 并发购买时数据库行锁保证只有一个UPDATE命中，其余RowsAffected为0
func (r *bookRepository) MarkSold(ctx context.Context, id, buyerID uint) (*book.Book, error) {
	result := r.db.WithContext(ctx).Model(&BookModel{}).
		Where("id = ? AND status = ? AND seller_id <> ?", id, int(book.StatusAvailable), buyerID).
		Updates(map[string]interface{}{
			"status":       int(book.StatusSold),
			"purchaser_id": buyerID,
			"updated_at":   r.now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, book.ErrPreconditionFailed
	}
	return r.FindByID(ctx, id)
}

// MarkAvailable 回到在售并清空购买者
func (r *bookRepository) MarkAvailable(ctx context.Context, id uint) (*book.Book, error) {
	result := r.db.WithContext(ctx).Model(&BookModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       int(book.StatusAvailable),
			"purchaser_id": gorm.Expr("NULL"),
			"updated_at":   r.now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	// 0行时可能是不存在，FindByID负责区分
	return r.FindByID(ctx, id)
}

// DeleteAvailable 删除在售图书
// 先读出快照用于返回，再执行带条件的DELETE
func (r *bookRepository) DeleteAvailable(ctx context.Context, id, sellerID uint) (*book.Book, error) {
	db := r.db.WithContext(ctx)

	var model BookModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrPreconditionFailed
		}
		return nil, err
	}

	result := db.Where("id = ? AND seller_id = ? AND status = ?", id, sellerID, int(book.StatusAvailable)).
		Delete(&BookModel{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, book.ErrPreconditionFailed
	}
	return toBookEntity(&model), nil
}

// =========================================
// 辅助函数：Entity ↔ Model 转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:               b.ID,
		SellerID:         b.SellerID,
		Title:            b.Title,
		EducationLevel:   string(b.Level),
		SpecificStandard: b.Standard,
		InstituteName:    b.Institute,
		Condition:        string(b.Condition),
		Description:      b.Description,
		Images:           append([]string(nil), b.Images...),
		Price:            b.Price,
		Status:           int(b.Status),
		PurchaserID:      b.PurchaserID,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Title:       m.Title,
		Level:       book.EducationLevel(m.EducationLevel),
		Standard:    m.SpecificStandard,
		Institute:   m.InstituteName,
		Condition:   book.Condition(m.Condition),
		Description: m.Description,
		Images:      append([]string(nil), m.Images...),
		Price:       m.Price,
		Status:      book.Status(m.Status),
		PurchaserID: m.PurchaserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, 0, len(models))
	for i := range models {
		books = append(books, toBookEntity(&models[i]))
	}
	return books
}
