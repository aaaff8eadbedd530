package leave

type ApplyLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type ProcessLeaveRequest struct {
	Action  string  `json:"action" binding:"required,oneof=approve reject"`
	Remarks *string `json:"remarks"`
}

type ListLeavesQuery struct {
	Status        string `form:"status"`
	ApplicantType string `form:"applicant_type"`
	Mine          bool   `form:"mine"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	SchoolID        string  `json:"school_id"`
	ApplicantID     string  `json:"applicant_id"`
	ApplicantType   string  `json:"applicant_type"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	NumberOfDays    int     `json:"number_of_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApprovalRemarks *string `json:"approval_remarks,omitempty"`
	ProcessedBy     *string `json:"processed_by,omitempty"`
	ProcessedAt     *string `json:"processed_at,omitempty"`
}

type LeaveSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type LeaveListResponse struct {
	Leaves  []LeaveResponse `json:"leaves"`
	Summary LeaveSummary    `json:"summary"`
}
