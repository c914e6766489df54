package order

import (
	"github.com/oklog/ulid/v2"
)

// GenerateOrderNo 生成订单号
// 格式:ORD + ULID(26位,Crockford Base32)
// ULID前48位是毫秒时间戳,同一毫秒内单调递增,全局唯一且按时间有序
func GenerateOrderNo() string {
	return "ORD" + ulid.Make().String()
}
