package core

// page sizes offered by the list views
var PageSizes = []int{5, 10, 20}

const DefaultPageSize = 5

type PageRequest struct {
	Page     int `query:"page" json:"page"`           // 1-based
	PageSize int `query:"page_size" json:"pageSize"` // one of PageSizes
}

// Clean resets out of range values to their defaults.
func (pr *PageRequest) Clean() {
	if pr.Page < 1 {
		pr.Page = 1
	}
	valid := false
	for _, size := range PageSizes {
		if pr.PageSize == size {
			valid = true
			break
		}
	}
	if !valid {
		pr.PageSize = DefaultPageSize
	}
}

type Page struct {
	Data       interface{} `json:"data"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func NewPage(data interface{}, total int, req PageRequest) Page {
	return Page{
		Data:       data,
		TotalCount: total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: TotalPages(total, req.PageSize),
	}
}

func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageBounds returns the [start, end) slice bounds of the requested page over n items.
func PageBounds(n int, req PageRequest) (int, int) {
	if req.Page < 1 || req.PageSize < 1 || req.Page-1 > n/req.PageSize {
		return n, n
	}
	start := (req.Page - 1) * req.PageSize
	if start > n {
		start = n
	}
	end := start + req.PageSize
	if end > n {
		end = n
	}
	return start, end
}
