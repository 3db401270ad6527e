package lifecycle

import (
	"time"

	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/storage"
)

var validStatuses = map[string]bool{
	storage.AssignmentAssigned:   true,
	storage.AssignmentInProgress: true,
	storage.AssignmentCompleted:  true,
	storage.AssignmentOnHold:     true,
	storage.AssignmentCancelled:  true,
}

func ValidStatus(s string) bool {
	return validStatuses[s]
}

// Apply переводит наряд в новый статус.
//
// Граф переходов намеренно не ограничен (assigned → completed напрямую —
// легальный переход, реальные цеха так работают). Условны только отметки
// времени: startDate ставится один раз при первом входе в in_progress,
// actualCompletionDate — один раз при первом входе в completed.
func Apply(a *storage.Assignment, next string, now time.Time) error {
	if !ValidStatus(next) {
		return apperror.Newf(apperror.Validation, "invalid status %q", next)
	}

	if next == storage.AssignmentInProgress && a.StartDate == nil {
		t := now
		a.StartDate = &t
	}
	if next == storage.AssignmentCompleted && a.ActualCompletionDate == nil {
		t := now
		a.ActualCompletionDate = &t
	}

	a.Status = next
	return nil
}
