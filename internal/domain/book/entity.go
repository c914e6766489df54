package book

import (
	"strings"
	"time"
)

// Status 图书状态
// 状态机：Available→Sold（购买/下单），Sold→Available（仅订单取消）
type Status int

const (
	StatusAvailable Status = 1 // 在售
	StatusSold      Status = 2 // 已售出
)

// String 实现Stringer接口，同时作为接口返回值
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusSold:
		return "Sold"
	default:
		return "Unknown"
	}
}

var transitions = map[Status][]Status{
	StatusAvailable: {StatusSold},
	StatusSold:      {StatusAvailable},
}

// EducationLevel 适用学段
type EducationLevel string

const (
	LevelElementary    EducationLevel = "Elementary"
	LevelMiddleSchool  EducationLevel = "Middle School"
	LevelHighSchool    EducationLevel = "High School"
	LevelUndergraduate EducationLevel = "Undergraduate"
	LevelPostgraduate  EducationLevel = "Postgraduate"
)

// Valid 是否为已知学段
func (l EducationLevel) Valid() bool {
	switch l {
	case LevelElementary, LevelMiddleSchool, LevelHighSchool, LevelUndergraduate, LevelPostgraduate:
		return true
	}
	return false
}

// Condition 品相
type Condition string

const (
	ConditionMint     Condition = "Mint"
	ConditionLikeNew  Condition = "Like New"
	ConditionNearFine Condition = "Near Fine"
	ConditionFine     Condition = "Fine"
	ConditionVeryGood Condition = "Very Good"
	ConditionGood     Condition = "Good"
	ConditionFair     Condition = "Fair"
	ConditionPoor     Condition = "Poor"
)

// Valid 是否为已知品相
func (c Condition) Valid() bool {
	switch c {
	case ConditionMint, ConditionLikeNew, ConditionNearFine, ConditionFine,
		ConditionVeryGood, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Book 图书实体(聚合根)
// 1. 价格使用int64存储"分"为单位
// 2. Status=Sold 当且仅当 PurchaserID非空
// 3. SellerID永远不等于PurchaserID
type Book struct {
	ID          uint
	SellerID    uint
	Title       string
	Level       EducationLevel
	Standard    string // 年级/专业，如"高二"、"计算机科学"
	Institute   string // 学校名称
	Condition   Condition
	Description string
	Images      []string // 图片URL，至少一张
	Price       int64    // 价格(分)
	Status      Status
	PurchaserID *uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Details 卖家可编辑的字段
type Details struct {
	Title       string
	Level       EducationLevel
	Standard    string
	Institute   string
	Condition   Condition
	Description string
	Price       int64
}

// NewBook 创建在售图书(工厂方法)，调用方需先校验details
func NewBook(sellerID uint, d Details, images []string) *Book {
	now := time.Now().UTC()
	b := &Book{
		SellerID:  sellerID,
		Images:    append([]string(nil), images...),
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.apply(d)
	return b
}

func (b *Book) apply(d Details) {
	b.Title = strings.TrimSpace(d.Title)
	b.Level = d.Level
	b.Standard = strings.TrimSpace(d.Standard)
	b.Institute = strings.TrimSpace(d.Institute)
	b.Condition = d.Condition
	b.Description = strings.TrimSpace(d.Description)
	b.Price = d.Price
}

// Details 当前可编辑字段的快照
func (b *Book) Details() Details {
	return Details{
		Title:       b.Title,
		Level:       b.Level,
		Standard:    b.Standard,
		Institute:   b.Institute,
		Condition:   b.Condition,
		Description: b.Description,
		Price:       b.Price,
	}
}

// UpdateDetails 覆盖可编辑字段，调用方需先校验details
func (b *Book) UpdateDetails(d Details) {
	b.apply(d)
	b.UpdatedAt = time.Now().UTC()
}

// CanTransitionTo 检查状态转换是否合法
func (b *Book) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[b.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// MarkSold Available→Sold
func (b *Book) MarkSold(buyerID uint) error {
	if b.IsOwnedBy(buyerID) {
		return ErrSelfPurchase
	}
	if !b.CanTransitionTo(StatusSold) {
		return ErrBookNotAvailable
	}
	b.Status = StatusSold
	b.PurchaserID = &buyerID
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Revert 回到在售状态，已在售时无变化
func (b *Book) Revert() {
	if b.Status == StatusAvailable && b.PurchaserID == nil {
		return
	}
	b.Status = StatusAvailable
	b.PurchaserID = nil
	b.UpdatedAt = time.Now().UTC()
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.SellerID == userID
}

// IsAvailable 是否在售
func (b *Book) IsAvailable() bool {
	return b.Status == StatusAvailable
}

// CheckInvariant 校验售出状态与购买者的一致性
func (b *Book) CheckInvariant() error {
	if (b.Status == StatusSold) != (b.PurchaserID != nil) {
		return ErrInconsistentState
	}
	if b.PurchaserID != nil && *b.PurchaserID == b.SellerID {
		return ErrInconsistentState
	}
	return nil
}

// Clone 深拷贝
func (b *Book) Clone() *Book {
	c := *b
	c.Images = append([]string(nil), b.Images...)
	if b.PurchaserID != nil {
		p := *b.PurchaserID
		c.PurchaserID = &p
	}
	return &c
}

// SellerSummary 在售列表中附带的卖家信息
type SellerSummary struct {
	ID       uint
	Username string
	FullName string
	Avatar   string
}

// Listing 在售图书及其卖家
type Listing struct {
	Book   *Book
	Seller SellerSummary
}
