package attendance

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Scope identifies one marking session. Period is 0 outside period-wise mode.
type Scope struct {
	SchoolID  string
	ClassID   string
	SectionID *string
	Date      time.Time
	Period    int
}

func (s Scope) Key() string {
	section := ""
	if s.SectionID != nil {
		section = *s.SectionID
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d", s.SchoolID, s.ClassID, section, s.Date.Format(dateLayout), s.Period)
}
