package book

import (
	"context"

	"github.com/xiebiao/bookswap/internal/application/market"
	"github.com/xiebiao/bookswap/internal/domain/book"
)

// PublishBookUseCase 发布图书用例
// 图书写入成功即发布成功；加入卖家在售列表由协调器尽力完成
type PublishBookUseCase struct {
	coordinator *market.Coordinator
}

// NewPublishBookUseCase 创建发布用例
func NewPublishBookUseCase(coordinator *market.Coordinator) *PublishBookUseCase {
	return &PublishBookUseCase{coordinator: coordinator}
}

// PublishBookRequest 发布请求DTO
type PublishBookRequest struct {
	SellerID         uint // 从认证中间件获取
	Title            string
	EducationLevel   string
	SpecificStandard string
	InstituteName    string
	Condition        string
	Description      string
	Price            int64 // 价格(分)
	Images           []string
}

// Details 请求 → 领域可编辑字段
func (r PublishBookRequest) Details() book.Details {
	return book.Details{
		Title:       r.Title,
		Level:       book.EducationLevel(r.EducationLevel),
		Standard:    r.SpecificStandard,
		Institute:   r.InstituteName,
		Condition:   book.Condition(r.Condition),
		Description: r.Description,
		Price:       r.Price,
	}
}

// Execute 执行发布
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookView, error) {
	b, err := uc.coordinator.ListBook(ctx, req.SellerID, req.Details(), req.Images)
	if err != nil {
		return nil, err
	}
	view := NewBookView(b)
	return &view, nil
}
