package book

import (
	"fmt"

	"github.com/xiebiao/bookswap/internal/domain/book"
)

// TimeLayout 接口返回的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// BookView 图书详情DTO
type BookView struct {
	ID               uint     `json:"id"`
	SellerID         uint     `json:"seller_id"`
	Title            string   `json:"title"`
	EducationLevel   string   `json:"education_level"`
	SpecificStandard string   `json:"specific_standard"`
	InstituteName    string   `json:"institute_name"`
	Condition        string   `json:"condition"`
	Description      string   `json:"description"`
	Images           []string `json:"images"`
	Price            int64    `json:"price"`      // 价格(分)
	PriceYuan        string   `json:"price_yuan"` // 价格(元),方便前端显示
	Status           string   `json:"status"`
	PurchaserID      *uint    `json:"purchaser_id"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// SellerView 在售列表附带的卖家信息
type SellerView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// ListingView 在售图书及卖家
type ListingView struct {
	BookView
	Seller SellerView `json:"seller"`
}

// NewBookView 领域实体 → DTO
func NewBookView(b *book.Book) BookView {
	return BookView{
		ID:               b.ID,
		SellerID:         b.SellerID,
		Title:            b.Title,
		EducationLevel:   string(b.Level),
		SpecificStandard: b.Standard,
		InstituteName:    b.Institute,
		Condition:        string(b.Condition),
		Description:      b.Description,
		Images:           append([]string{}, b.Images...),
		Price:            b.Price,
		PriceYuan:        FormatYuan(b.Price),
		Status:           b.Status.String(),
		PurchaserID:      b.PurchaserID,
		CreatedAt:        b.CreatedAt.Format(TimeLayout),
		UpdatedAt:        b.UpdatedAt.Format(TimeLayout),
	}
}

func newBookViews(books []*book.Book) []BookView {
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, NewBookView(b))
	}
	return views
}

// FormatYuan 分 → "元.角分"
func FormatYuan(fen int64) string {
	sign := ""
	if fen < 0 {
		sign, fen = "-", -fen
	}
	return fmt.Sprintf("%s%d.%02d", sign, fen/100, fen%100)
}
