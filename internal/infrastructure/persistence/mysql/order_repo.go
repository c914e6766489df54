package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookswap/internal/domain/order"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// errDuplicateOrderNo 订单号由ULID生成，冲突只可能来自时钟或熵源异常
var errDuplicateOrderNo = apperrors.New(apperrors.ErrCodeInternal, "订单号重复")

// orderRepository 订单仓储的MySQL实现
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateCreateError(err, errDuplicateOrderNo)
	}
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderEntity(&model), nil
}

// ListByBook 引用指定图书的全部订单
func (r *orderRepository) ListByBook(ctx context.Context, bookID uint) ([]*order.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrderEntity(&models[i]))
	}
	return orders, nil
}

// UpdateStatus 更新订单状态
// 关键：WHERE status = from，保证并发取消只有一个命中
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, from, to order.OrderStatus) (*order.Order, error) {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, int(from)).
		Updates(map[string]interface{}{
			"status":     int(to),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, order.ErrPreconditionFailed
	}
	return r.FindByID(ctx, id)
}

// orderLineRow 订单报表的JOIN结果
// 图书被删除后books相关列为NULL
type orderLineRow struct {
	OrderID        uint
	OrderNo        string
	Status         int
	CreatedAt      time.Time
	BookID         *uint
	BookTitle      *string
	BookPrice      *int64
	SellerID       *uint
	SellerFullName *string
}

// ListForBuyer 买家全部订单，关联图书与卖家
func (r *orderRepository) ListForBuyer(ctx context.Context, buyerID uint) ([]*order.Line, error) {
	var rows []orderLineRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.id AS order_id, orders.order_no, orders.status, orders.created_at, " +
			"books.id AS book_id, books.title AS book_title, books.price AS book_price, " +
			"users.id AS seller_id, users.full_name AS seller_full_name").
		Joins("LEFT JOIN books ON books.id = orders.book_id").
		Joins("LEFT JOIN users ON users.id = books.seller_id").
		Where("orders.buyer_id = ?", buyerID).
		Order("orders.created_at DESC, orders.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]*order.Line, 0, len(rows))
	for _, row := range rows {
		line := &order.Line{
			OrderID:   row.OrderID,
			OrderNo:   row.OrderNo,
			Status:    order.OrderStatus(row.Status),
			CreatedAt: row.CreatedAt,
		}
		if row.BookID != nil {
			line.Book = order.LineBook{ID: *row.BookID, Title: deref(row.BookTitle), Price: derefInt64(row.BookPrice)}
		}
		if row.SellerID != nil {
			line.Seller = order.LineSeller{ID: *row.SellerID, FullName: deref(row.SellerFullName)}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// =========================================
// 辅助函数：Entity ↔ Model 转换
// =========================================

func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		BuyerID:   o.BuyerID,
		BookID:    o.BookID,
		Status:    int(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	return &order.Order{
		ID:        m.ID,
		OrderNo:   m.OrderNo,
		BuyerID:   m.BuyerID,
		BookID:    m.BookID,
		Status:    order.OrderStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
