package attendance

import (
	"go-school/internal/roster"
	"go-school/internal/school"
)

type ScopeQuery struct {
	ClassID   string  `form:"class_id" json:"class_id" binding:"required"`
	SectionID *string `form:"section_id" json:"section_id"`
	Date      string  `form:"date" json:"date" binding:"required"`
	Period    int     `form:"period" json:"period" binding:"min=0"`
}

type RecordInput struct {
	StudentID string  `json:"student_id" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	Remarks   *string `json:"remarks"`
}

type SaveAttendanceRequest struct {
	ScopeQuery
	Records []RecordInput `json:"records" binding:"dive"`
}

type SheetResponse struct {
	ClassID    string           `json:"class_id"`
	SectionID  *string          `json:"section_id,omitempty"`
	Date       string           `json:"date"`
	Period     int              `json:"period"`
	Route      school.Route     `json:"route"`
	Students   []roster.Student `json:"students"`
	Records    []roster.Record  `json:"records"`
	Summary    roster.Summary   `json:"summary"`
	Percentage float64          `json:"percentage"`
}

type HistoryQuery struct {
	StudentID string `form:"student_id"`
	Month     string `form:"month"`
}

type HistoryEntry struct {
	Date    string        `json:"date"`
	Period  int           `json:"period"`
	Status  roster.Status `json:"status"`
	Remarks *string       `json:"remarks,omitempty"`
}

type HistoryResponse struct {
	StudentID  string         `json:"student_id"`
	Month      string         `json:"month"`
	Records    []HistoryEntry `json:"records"`
	Summary    roster.Summary `json:"summary"`
	Percentage float64        `json:"percentage"`
}
