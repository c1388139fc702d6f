package services

import (
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
)

// EvaluatePurchase runs the checks that must pass before any payment is
// attempted. Enrollment state is deliberately ignored: buying and enrolling
// are independent.
func EvaluatePurchase(course entities.Course, buyer entities.User) error {
	if buyer.Identity.IsZero() {
		return domainerrors.ErrMissingIdentity
	}
	if buyer.HasPurchased(course.CourseID) {
		return domainerrors.ErrAlreadyPurchased
	}
	return nil
}
