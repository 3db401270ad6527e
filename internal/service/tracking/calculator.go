package tracking

import (
	"jobwork-backend/internal/storage"
)

// Recompute пересчитывает производные поля строки материала.
// Единственное место, где живёт эта формула — вызывается на каждом
// создании/изменении строки, чтобы производные не разъезжались.
//
// remaining = max(0, given - used - returned - wasted)
// totalValue = rate * given, если rate задан; иначе сбрасывается.
//
// Отрицательные исходные количества здесь не исправляются — это
// ошибка валидации на границе, не тут.
func Recompute(e storage.MaterialEntry) storage.MaterialEntry {
	remaining := e.QuantityGiven - e.QuantityUsed - e.QuantityReturned - e.QuantityWasted
	if remaining < 0 {
		remaining = 0
	}
	e.QuantityRemaining = remaining

	if e.Rate != nil {
		v := *e.Rate * e.QuantityGiven
		e.TotalValue = &v
	} else {
		e.TotalValue = nil
	}

	return e
}

func RecomputeAll(entries []storage.MaterialEntry) []storage.MaterialEntry {
	out := make([]storage.MaterialEntry, len(entries))
	for i, e := range entries {
		out[i] = Recompute(e)
	}
	return out
}

// RecomputeFinance пересчитывает balanceAmount и paymentStatus наряда.
func RecomputeFinance(a *storage.Assignment) {
	if a.TotalAmount != nil {
		balance := *a.TotalAmount - a.AdvancePaid
		if balance < 0 {
			balance = 0
		}
		a.BalanceAmount = balance
	} else {
		a.BalanceAmount = 0
	}

	switch {
	case a.AdvancePaid == 0:
		a.PaymentStatus = storage.PaymentPending
	case a.TotalAmount != nil && a.AdvancePaid >= *a.TotalAmount:
		a.PaymentStatus = storage.PaymentPaid
	default:
		a.PaymentStatus = storage.PaymentPartial
	}
}
