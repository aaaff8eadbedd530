package student

type ListStudentsQuery struct {
	ClassID   string  `form:"class_id" binding:"required"`
	SectionID *string `form:"section_id"`
}

type StudentResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RollNumber string  `json:"roll_number"`
	ClassID    string  `json:"class_id"`
	SectionID  *string `json:"section_id,omitempty"`
}
