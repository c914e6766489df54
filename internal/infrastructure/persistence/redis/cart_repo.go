package redis

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookswap/internal/domain/cart"
	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

//go:embed add_to_cart.lua
var addToCartLua string

//go:embed remove_from_cart.lua
var removeFromCartLua string

//go:embed clear_cart.lua
var clearCartLua string

// CartRepository 购物车的Redis实现
//
// Key设计：
//   - cart:{user_id}:books：图书ID集合（SET）
//   - cart:{user_id}:meta：created_at/updated_at（HASH）
//
// 每个写操作是一段Lua脚本，集合与时间戳在Redis中原子更新
type CartRepository struct {
	client *redis.Client

	addScript    *redis.Script
	removeScript *redis.Script
	clearScript  *redis.Script
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(client *redis.Client) cart.Repository {
	return &CartRepository{
		client:       client,
		addScript:    redis.NewScript(addToCartLua),
		removeScript: redis.NewScript(removeFromCartLua),
		clearScript:  redis.NewScript(clearCartLua),
	}
}

func (r *CartRepository) booksKey(userID uint) string {
	return fmt.Sprintf("cart:%d:books", userID)
}

func (r *CartRepository) metaKey(userID uint) string {
	return fmt.Sprintf("cart:%d:meta", userID)
}

// Find 读取购物车，meta不存在视为购物车不存在
func (r *CartRepository) Find(ctx context.Context, userID uint) (*cart.Cart, error) {
	var (
		membersCmd *redis.StringSliceCmd
		metaCmd    *redis.MapStringStringCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		membersCmd = pipe.SMembers(ctx, r.booksKey(userID))
		metaCmd = pipe.HGetAll(ctx, r.metaKey(userID))
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "读取购物车失败")
	}

	meta := metaCmd.Val()
	if len(meta) == 0 {
		return nil, nil
	}

	ids, err := parseIDs(membersCmd.Val())
	if err != nil {
		return nil, err
	}
	return &cart.Cart{
		UserID:    userID,
		BookIDs:   ids,
		CreatedAt: parseNano(meta["created_at"]),
		UpdatedAt: parseNano(meta["updated_at"]),
	}, nil
}

// AddBook 添加图书，SADD保证集合语义
func (r *CartRepository) AddBook(ctx context.Context, userID, bookID uint) (*cart.Cart, error) {
	keys := []string{r.booksKey(userID), r.metaKey(userID)}
	if err := r.addScript.Run(ctx, r.client, keys, bookID, nowNano()).Err(); err != nil {
		return nil, apperrors.Wrap(err, "添加购物车失败")
	}
	return r.Find(ctx, userID)
}

// RemoveBook 移除图书，不在购物车中返回ErrCartItemNotFound
func (r *CartRepository) RemoveBook(ctx context.Context, userID, bookID uint) (*cart.Cart, error) {
	keys := []string{r.booksKey(userID), r.metaKey(userID)}
	removed, err := r.removeScript.Run(ctx, r.client, keys, bookID, nowNano()).Int()
	if err != nil {
		return nil, apperrors.Wrap(err, "移除购物车图书失败")
	}
	if removed == 0 {
		return nil, cart.ErrCartItemNotFound
	}

	c, err := r.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartItemNotFound
	}
	return c, nil
}

// Clear 清空购物车，返回清空前的数量
func (r *CartRepository) Clear(ctx context.Context, userID uint) (int, error) {
	keys := []string{r.booksKey(userID), r.metaKey(userID)}
	n, err := r.clearScript.Run(ctx, r.client, keys, nowNano()).Int()
	if err != nil {
		return 0, apperrors.Wrap(err, "清空购物车失败")
	}
	return n, nil
}

func parseIDs(members []string) ([]uint, error) {
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("购物车图书ID非法 %q: %w", m, err)
		}
		ids = append(ids, uint(id))
	}
	// SET无序，按ID排序保证输出稳定
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func nowNano() int64 {
	return time.Now().UTC().UnixNano()
}

func parseNano(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
