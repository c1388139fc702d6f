package entities

import (
	"time"

	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
)

// Course is a published offering. Students is the active roster in
// enrollment order; Graduates holds identities that completed the course.
type Course struct {
	CourseID      uint64
	Title         string
	Description   string
	Instructor    Identity
	Duration      uint64
	SkillLevel    string
	Prerequisites []string
	Price         uint64
	Students      []Identity
	Graduates     []Identity
	CreatedAt     time.Time
}

func (c Course) HasStudent(identity Identity) bool {
	return containsIdentity(c.Students, identity)
}

func (c Course) HasGraduate(identity Identity) bool {
	return containsIdentity(c.Graduates, identity)
}

// Enroll appends the student to the roster. The instructor can never be a
// student of their own course and an identity appears at most once.
func (c *Course) Enroll(student Identity) error {
	if student == c.Instructor {
		return domainerrors.ErrSelfEnrollment
	}
	if c.HasStudent(student) {
		return domainerrors.ErrAlreadyEnrolled
	}
	c.Students = append(c.Students, student)
	return nil
}

// Complete removes the student from the roster, keeping the order of the
// remaining entries, and records the completion.
func (c *Course) Complete(student Identity) error {
	index := -1
	for i, item := range c.Students {
		if item == student {
			index = i
			break
		}
	}
	if index < 0 {
		return domainerrors.ErrNotEnrolled
	}

	remaining := make([]Identity, 0, len(c.Students)-1)
	remaining = append(remaining, c.Students[:index]...)
	remaining = append(remaining, c.Students[index+1:]...)
	c.Students = remaining

	if !c.HasGraduate(student) {
		c.Graduates = append(c.Graduates, student)
	}
	return nil
}

// Clone returns a deep copy so callers never alias registry state.
func (c Course) Clone() Course {
	out := c
	out.Prerequisites = cloneStrings(c.Prerequisites)
	out.Students = cloneIdentities(c.Students)
	out.Graduates = cloneIdentities(c.Graduates)
	return out
}

func containsIdentity(items []Identity, identity Identity) bool {
	for _, item := range items {
		if item == identity {
			return true
		}
	}
	return false
}

func cloneIdentities(items []Identity) []Identity {
	if items == nil {
		return nil
	}
	return append([]Identity(nil), items...)
}

func cloneStrings(items []string) []string {
	if items == nil {
		return nil
	}
	return append([]string(nil), items...)
}
