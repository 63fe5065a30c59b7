package models

import "time"

// Student identifies a learner by a short memorable code
type Student struct {
	ID          int64     `json:"id"`
	TeacherID   *int64    `json:"teacherId,omitempty"`
	Name        string    `json:"name"`
	StudentCode string    `json:"studentCode"`
	CreatedAt   time.Time `json:"createdAt"`
}
