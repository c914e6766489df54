package dto

// PublishBookRequest HTTP发布图书请求
// 取值校验(学段/品相枚举、价格)在领域层完成，这里只做格式校验
type PublishBookRequest struct {
	Title            string   `json:"title" binding:"required,max=200" example:"高中物理必修一"`
	EducationLevel   string   `json:"education_level" binding:"required" example:"High School"`
	SpecificStandard string   `json:"specific_standard" binding:"required,max=100" example:"高一"`
	InstituteName    string   `json:"institute_name" binding:"required,max=200" example:"北京四中"`
	Condition        string   `json:"condition" binding:"required" example:"Like New"`
	Description      string   `json:"description" binding:"max=5000" example:"有少量笔记"`
	Price            int64    `json:"price" binding:"required,min=1,max=99999999" example:"2500"` // 价格(分),25.00元
	Images           []string `json:"images" binding:"required,min=1,dive,required,max=500" example:"https://example.com/cover.jpg"`
}

// UpdateBookRequest HTTP修改图书请求
// 所有文本字段都必填；价格可以为0
type UpdateBookRequest struct {
	Title            string `json:"title" binding:"required,max=200" example:"高中物理必修一"`
	EducationLevel   string `json:"education_level" binding:"required" example:"High School"`
	SpecificStandard string `json:"specific_standard" binding:"required,max=100" example:"高一"`
	InstituteName    string `json:"institute_name" binding:"required,max=200" example:"北京四中"`
	Condition        string `json:"condition" binding:"required" example:"Good"`
	Description      string `json:"description" binding:"required,max=5000" example:"封面有折痕"`
	Price            *int64 `json:"price" binding:"required,min=0,max=99999999" example:"2000"`
}
