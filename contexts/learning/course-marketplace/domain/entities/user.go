package entities

import (
	"strings"
	"time"

	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
)

// Identity is the opaque principal supplied by the identity context.
type Identity string

func (i Identity) String() string {
	return string(i)
}

func (i Identity) IsZero() bool {
	return strings.TrimSpace(string(i)) == ""
}

type User struct {
	Identity         Identity
	Username         string
	Bio              string
	Skills           []string
	EnrolledCourses  []uint64
	CompletedCourses []uint64
	PurchasedCourses []uint64
	RegisteredAt     time.Time
}

func NewUser(identity Identity, username string, bio string, skills []string, registeredAt time.Time) (User, error) {
	if identity.IsZero() {
		return User{}, domainerrors.ErrMissingIdentity
	}
	return User{
		Identity:         identity,
		Username:         username,
		Bio:              bio,
		Skills:           cloneStrings(skills),
		EnrolledCourses:  []uint64{},
		CompletedCourses: []uint64{},
		PurchasedCourses: []uint64{},
		RegisteredAt:     registeredAt.UTC(),
	}, nil
}

func (u User) HasPurchased(courseID uint64) bool {
	return containsCourse(u.PurchasedCourses, courseID)
}

func (u User) IsEnrolledIn(courseID uint64) bool {
	return containsCourse(u.EnrolledCourses, courseID)
}

func (u *User) RecordPurchase(courseID uint64) error {
	if u.HasPurchased(courseID) {
		return domainerrors.ErrAlreadyPurchased
	}
	u.PurchasedCourses = append(u.PurchasedCourses, courseID)
	return nil
}

// RecordEnrollment and RecordCompletion have set semantics: repeating them
// leaves the user unchanged.
func (u *User) RecordEnrollment(courseID uint64) {
	if !u.IsEnrolledIn(courseID) {
		u.EnrolledCourses = append(u.EnrolledCourses, courseID)
	}
}

func (u *User) RecordCompletion(courseID uint64) {
	u.EnrolledCourses = removeCourse(u.EnrolledCourses, courseID)
	if !containsCourse(u.CompletedCourses, courseID) {
		u.CompletedCourses = append(u.CompletedCourses, courseID)
	}
}

func (u User) Clone() User {
	out := u
	out.Skills = cloneStrings(u.Skills)
	out.EnrolledCourses = cloneCourses(u.EnrolledCourses)
	out.CompletedCourses = cloneCourses(u.CompletedCourses)
	out.PurchasedCourses = cloneCourses(u.PurchasedCourses)
	return out
}

func containsCourse(items []uint64, courseID uint64) bool {
	for _, item := range items {
		if item == courseID {
			return true
		}
	}
	return false
}

func removeCourse(items []uint64, courseID uint64) []uint64 {
	out := make([]uint64, 0, len(items))
	for _, item := range items {
		if item != courseID {
			out = append(out, item)
		}
	}
	return out
}

func cloneCourses(items []uint64) []uint64 {
	if items == nil {
		return nil
	}
	return append([]uint64(nil), items...)
}
