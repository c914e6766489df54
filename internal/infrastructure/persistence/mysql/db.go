package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookswap/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 时间统一使用UTC，订单报表按UTC自然日分组
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	// 生产环境应使用版本化的迁移脚本
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}
	return db, nil
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&UserBookRefModel{},
		&BookModel{},
		&OrderModel{},
	)
}

// UserModel GORM用户模型
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. 两个反向引用列表存在user_book_refs表中，不放在users表的JSON列里，
//    这样添加/删除都是单条INSERT/DELETE，并发写互不覆盖
type UserModel struct {
	ID            uint           `gorm:"primaryKey"`
	Email         string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password      string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Username      string         `gorm:"size:50;not null;comment:用户名"`
	FullName      string         `gorm:"size:100;not null;comment:姓名"`
	Avatar        string         `gorm:"size:500;comment:头像URL"`
	Address       string         `gorm:"size:255;comment:地址"`
	ContactNumber string         `gorm:"size:30;comment:联系电话"`
	Description   string         `gorm:"type:text;comment:个人简介"`
	CreatedAt     time.Time      `gorm:"comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// 反向引用类型
const (
	refSelling   = 1 // 在售
	refPurchased = 2 // 已购买
)

// UserBookRefModel 用户与图书的反向引用
// (user_id, book_id, kind)唯一，重复添加由唯一索引吸收
type UserBookRefModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_user_book_kind;not null;comment:用户ID"`
	BookID    uint      `gorm:"uniqueIndex:uk_user_book_kind;index;not null;comment:图书ID"`
	Kind      int       `gorm:"uniqueIndex:uk_user_book_kind;type:tinyint;not null;comment:类型(1在售2已购买)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (UserBookRefModel) TableName() string {
	return "user_book_refs"
}

// BookModel GORM图书模型
// 1. 价格使用int64存储"分"为单位
// 2. condition是MySQL保留字，列名使用book_condition
// 3. 图片URL列表以JSON存储
// 4. 下架是物理删除：只有在售图书可以删除，已售图书永远保留
type BookModel struct {
	ID               uint      `gorm:"primaryKey"`
	SellerID         uint      `gorm:"index;not null;comment:卖家用户ID"`
	Title            string    `gorm:"size:200;not null;comment:书名"`
	EducationLevel   string    `gorm:"size:30;not null;comment:学段"`
	SpecificStandard string    `gorm:"size:100;not null;comment:年级/专业"`
	InstituteName    string    `gorm:"size:200;not null;comment:学校"`
	Condition        string    `gorm:"column:book_condition;size:20;not null;comment:品相"`
	Description      string    `gorm:"type:text;comment:描述"`
	Images           []string  `gorm:"serializer:json;type:json;comment:图片URL列表"`
	Price            int64     `gorm:"not null;comment:价格(分)"`
	Status           int       `gorm:"index:idx_status_created;type:tinyint;not null;default:1;comment:状态(1在售2已售)"`
	PurchaserID      *uint     `gorm:"index;comment:购买者用户ID"`
	CreatedAt        time.Time `gorm:"index:idx_status_created;comment:创建时间"`
	UpdatedAt        time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型
// Status使用int存储(1待处理2已发货3已送达4已取消)
type OrderModel struct {
	ID        uint      `gorm:"primaryKey"`
	OrderNo   string    `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	BuyerID   uint      `gorm:"index:idx_buyer_created;not null;comment:买家用户ID"`
	BookID    uint      `gorm:"index;not null;comment:图书ID"`
	Status    int       `gorm:"index;type:tinyint;default:1;comment:订单状态"`
	CreatedAt time.Time `gorm:"index:idx_buyer_created;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}
