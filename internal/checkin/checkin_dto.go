package checkin

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
}

type HistoryQuery struct {
	TeacherID string `form:"teacher_id"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// CheckInStateResponse is the authoritative state of a teacher for one day.
type CheckInStateResponse struct {
	TeacherID      string   `json:"teacher_id"`
	Date           string   `json:"date"`
	State          State    `json:"state"`
	Status         string   `json:"status,omitempty"`
	CheckInTime    *string  `json:"check_in_time,omitempty"`
	CheckOutTime   *string  `json:"check_out_time,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}
