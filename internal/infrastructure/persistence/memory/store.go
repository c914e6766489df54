// Package memory 进程内存储
//
// 实现全部仓储接口,用于单元测试和storage.driver=memory的本地演示。
// 整个Store由一把互斥锁保护,每次调用都是一个临界区,
// 对应MySQL中单条语句的原子性:条件更新的"检查+修改"不可分割。
// 读写都做深拷贝,调用方拿到的实体与存储互不影响。
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/xiebiao/bookswap/internal/domain/book"
	"github.com/xiebiao/bookswap/internal/domain/cart"
	"github.com/xiebiao/bookswap/internal/domain/order"
	"github.com/xiebiao/bookswap/internal/domain/user"
)

// Store 全部内存数据
type Store struct {
	mu sync.Mutex

	books  map[uint]*book.Book
	orders map[uint]*order.Order
	users  map[uint]*user.User
	emails map[string]uint
	carts  map[uint]*cart.Cart

	sessions  map[uint]session
	blacklist map[string]time.Time

	nextBookID  uint
	nextOrderID uint
	nextUserID  uint

	now func() time.Time
}

type session struct {
	data     map[string]string
	expireAt time.Time
}

// NewStore 创建空Store
func NewStore() *Store {
	return &Store{
		books:     make(map[uint]*book.Book),
		orders:    make(map[uint]*order.Order),
		users:     make(map[uint]*user.User),
		emails:    make(map[string]uint),
		carts:     make(map[uint]*cart.Cart),
		sessions:  make(map[uint]session),
		blacklist: make(map[string]time.Time),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// sortBooks 按创建时间倒序,同一时刻按ID倒序
func sortBooks(books []*book.Book) {
	sort.Slice(books, func(i, j int) bool {
		if books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].ID > books[j].ID
		}
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
}
