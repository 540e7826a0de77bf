package common

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page,omitempty"`
	Size  int   `json:"size,omitempty"`
}

type SearchResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func NewSearchResponse(data interface{}, total int64, page, size int) *SearchResponse {
	return &SearchResponse{
		Data: data,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Size:  size,
		},
	}
}

// PageQuery is bound from ?page=&size=. Size 0 returns every row.
type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
	Size int `form:"size" binding:"omitempty,min=1,max=500"`
}
