package order

import (
	"sort"
	"time"
)

// dayLayout 按UTC自然日分组
const dayLayout = "2006-01-02"

// Line 买家订单报表中的一行
type Line struct {
	OrderID   uint
	OrderNo   string
	Status    OrderStatus
	CreatedAt time.Time
	Book      LineBook
	Seller    LineSeller
}

// LineBook 订单关联的图书;图书被卖家删除后ID为0
type LineBook struct {
	ID    uint
	Title string
	Price int64
}

// LineSeller 订单关联的卖家
type LineSeller struct {
	ID       uint
	FullName string
}

// DayGroup 同一天的订单
type DayGroup struct {
	Day    string  // YYYY-MM-DD (UTC)
	Total  int64   // 当天订单的图书价格之和(分)
	Orders []*Line // 按创建时间倒序
}

// GroupByDay 按UTC日期分组,日期倒序
func GroupByDay(lines []*Line) []*DayGroup {
	groups := make([]*DayGroup, 0)
	index := make(map[string]*DayGroup)

	for _, l := range lines {
		day := l.CreatedAt.UTC().Format(dayLayout)
		g, ok := index[day]
		if !ok {
			g = &DayGroup{Day: day}
			index[day] = g
			groups = append(groups, g)
		}
		g.Total += l.Book.Price
		g.Orders = append(g.Orders, l)
	}

	// YYYY-MM-DD字典序即时间顺序
	sort.Slice(groups, func(i, j int) bool { return groups[i].Day > groups[j].Day })
	for _, g := range groups {
		sort.SliceStable(g.Orders, func(i, j int) bool {
			return g.Orders[i].CreatedAt.After(g.Orders[j].CreatedAt)
		})
	}
	return groups
}
