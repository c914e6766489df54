package user

import (
	"time"
)

// User 用户实体（聚合根）
// 1. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 2. BooksToSell、BooksPurchased是两个反向引用列表（集合语义），
//    只作为图书/订单变更的副作用由交易协调器写入
type User struct {
	ID             uint
	Email          string
	Password       string // bcrypt哈希值
	Username       string
	FullName       string
	Avatar         string // 头像URL
	Address        string
	ContactNumber  string
	Description    string
	BooksToSell    []uint
	BooksPurchased []uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile 注册时填写的资料
type Profile struct {
	Username      string
	FullName      string
	Avatar        string
	Address       string
	ContactNumber string
	Description   string
}

// AccountDetails 用户可修改的资料，四项都必填
type AccountDetails struct {
	FullName      string
	Address       string
	ContactNumber string
	Description   string
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword string, p Profile) *User {
	now := time.Now().UTC()
	return &User{
		Email:          email,
		Password:       hashedPassword,
		Username:       p.Username,
		FullName:       p.FullName,
		Avatar:         p.Avatar,
		Address:        p.Address,
		ContactNumber:  p.ContactNumber,
		Description:    p.Description,
		BooksToSell:    []uint{},
		BooksPurchased: []uint{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyAccountDetails 覆盖可修改的资料
func (u *User) ApplyAccountDetails(d AccountDetails) {
	u.FullName = d.FullName
	u.Address = d.Address
	u.ContactNumber = d.ContactNumber
	u.Description = d.Description
}

// IsSelling 是否在卖家列表中
func (u *User) IsSelling(bookID uint) bool {
	return containsID(u.BooksToSell, bookID)
}

// HasPurchased 是否在购买列表中
func (u *User) HasPurchased(bookID uint) bool {
	return containsID(u.BooksPurchased, bookID)
}

// Clone 深拷贝
func (u *User) Clone() *User {
	c := *u
	c.BooksToSell = append([]uint{}, u.BooksToSell...)
	c.BooksPurchased = append([]uint{}, u.BooksPurchased...)
	return &c
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID 集合添加,已存在时原样返回
func AddID(ids []uint, id uint) []uint {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID 集合删除,不存在时原样返回
func RemoveID(ids []uint, id uint) []uint {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
