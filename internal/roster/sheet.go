package roster

import "sync"

// Sheet is the editable attendance state of exactly one scope. Beginning a new scope discards
// everything, and loads that were started for an earlier scope are rejected.
type Sheet struct {
	mu       sync.Mutex
	scope    string
	token    uint64
	students map[string]Student
	order    []Student
	records  Records
}

func NewSheet() *Sheet {
	return &Sheet{
		students: map[string]Student{},
		records:  Records{},
	}
}

type Token struct {
	scope string
	gen   uint64
}

// Begin switches the sheet to scope and clears all roster and record state.
func (s *Sheet) Begin(scope string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.scope = scope
	s.students = map[string]Student{}
	s.order = nil
	s.records = Records{}
	return Token{scope: scope, gen: s.token}
}

// Load installs the roster and reconciled snapshot fetched for the scope identified by t.
func (s *Sheet) Load(t Token, roster []Student, snapshot []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.gen != s.token || t.scope != s.scope {
		return ErrStaleScope
	}

	s.students = make(map[string]Student, len(roster))
	s.order = make([]Student, 0, len(roster))
	for _, st := range roster {
		if _, dup := s.students[st.ID]; dup {
			continue
		}
		s.students[st.ID] = st
		s.order = append(s.order, st)
	}
	s.records = Reconcile(roster, snapshot)
	return nil
}

func (s *Sheet) Scope() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Students returns the roster in load order.
func (s *Sheet) Students() []Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Student, len(s.order))
	copy(out, s.order)
	return out
}

// SetStatus marks one student, keeping existing remarks.
func (s *Sheet) SetStatus(studentID string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[studentID]; !ok {
		return ErrUnknownStudent
	}
	r := s.records[studentID]
	r.StudentID = studentID
	r.Status = status
	s.records[studentID] = r
	return nil
}

// SetRemarks sets or clears the remarks of a student who has already been marked.
func (s *Sheet) SetRemarks(studentID string, remarks *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[studentID]; !ok {
		return ErrUnknownStudent
	}
	r, ok := s.records[studentID]
	if !ok {
		return ErrNotMarked
	}
	r.Remarks = nil
	if remarks != nil {
		v := *remarks
		r.Remarks = &v
	}
	s.records[studentID] = r
	return nil
}

// SetAllStatus marks every roster student with status.
func (s *Sheet) SetAllStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.order {
		r := s.records[st.ID]
		r.StudentID = st.ID
		r.Status = status
		s.records[st.ID] = r
	}
	return nil
}

// Records returns a copy of the current record set.
func (s *Sheet) Records() Records {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Records, len(s.records))
	for id, r := range s.records {
		out[id] = cloneRecord(r)
	}
	return out
}

// List returns the marked records in roster order.
func (s *Sheet) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, st := range s.order {
		if r, ok := s.records[st.ID]; ok {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

func (s *Sheet) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.records)
}
