package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// LimitRequest binds the optional ?limit= query parameter of list endpoints.
type LimitRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LimitOrDefault returns the requested limit, or def when none was sent.
func (r *LimitRequest) LimitOrDefault(def int) int {
	if r.Limit == 0 {
		return def
	}
	return r.Limit
}
