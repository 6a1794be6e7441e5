package domain

// BusClass selects a seat layout and unit price.
type BusClass string

const (
	ClassEconomy  BusClass = "economy"
	ClassBusiness BusClass = "business"
	ClassLuxury   BusClass = "luxury"
)

func (c BusClass) Valid() bool {
	switch c {
	case ClassEconomy, ClassBusiness, ClassLuxury:
		return true
	default:
		return false
	}
}

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
	Pages    int `json:"pages,omitempty"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}
	pages := (total + pageSize - 1) / pageSize
	return Pagination{Page: page, PageSize: pageSize, Total: total, Pages: pages}
}

// Window returns the slice bounds of the current page within total items.
func (p Pagination) Window() (start, end int) {
	start = (p.Page - 1) * p.PageSize
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// DateWindow is the "today/week/month" filter shared by profile and admin.
type DateWindow string

const (
	WindowAny   DateWindow = ""
	WindowToday DateWindow = "today"
	WindowWeek  DateWindow = "week"
	WindowMonth DateWindow = "month"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}
