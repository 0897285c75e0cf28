package types

// SearchRequest 关键字检索请求 (vendor / title / file name)
type SearchRequest struct {
	Query string `form:"q" binding:"required"`
}

// KeyDateRange 日历视图的查询区间，闭区间
type KeyDateRange struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// AgreementDocument is the shape mirrored into the search index.
type AgreementDocument struct {
	ID             string   `json:"agreement_id"`
	Vendor         string   `json:"vendor"`
	Title          string   `json:"title"`
	SourceFileName string   `json:"source_file_name"`
	EffectiveDate  string   `json:"effective_on,omitempty"`
	EndDate        string   `json:"end_on,omitempty"`
	AutoRenews     bool     `json:"auto_renews"`
	NoticeDays     int      `json:"notice_days"`
	KeyDateKinds   []string `json:"key_date_kinds,omitempty"`
}
