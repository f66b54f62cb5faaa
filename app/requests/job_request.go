package requests

// JobSearchRequest request tìm job
type JobSearchRequest struct {
	SearchTerm    string `json:"searchTerm"`
	Location      string `json:"location,omitempty"`
	ResultsWanted *int   `json:"resultsWanted,omitempty" binding:"omitempty,min=1"`
	HoursOld      *int   `json:"hoursOld,omitempty" binding:"omitempty,min=0"` // 0: mốc thời gian là hiện tại
	ForceExternal bool   `json:"forceExternal,omitempty"`
}

// HeatmapRequest request lấy điểm heatmap; mọi field đều tùy chọn
type HeatmapRequest struct {
	SearchTerm string   `json:"searchTerm,omitempty"`
	Location   string   `json:"location,omitempty"`
	HoursOld   *float64 `json:"hoursOld,omitempty"`
}
