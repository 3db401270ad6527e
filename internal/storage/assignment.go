package storage

import "time"

const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentOnHold     = "on_hold"
	AssignmentCancelled  = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// MaterialEntry — строка материального учёта внутри наряда.
// Живёт только внутри своего Assignment, адресуется индексом.
type MaterialEntry struct {
	ItemID            int64    `json:"itemId"`
	ItemName          string   `json:"itemName"`
	Unit              string   `json:"unit"`
	QuantityGiven     float64  `json:"quantityGiven"`
	QuantityUsed      float64  `json:"quantityUsed"`
	QuantityReturned  float64  `json:"quantityReturned"`
	QuantityWasted    float64  `json:"quantityWasted"`
	QuantityRemaining float64  `json:"quantityRemaining"`
	Rate              *float64 `json:"rate,omitempty"`
	TotalValue        *float64 `json:"totalValue,omitempty"`
}

type Assignment struct {
	ID               int64  `json:"id"`
	CompanyID        int64  `json:"companyId"`
	WorkerID         int64  `json:"workerId"`
	WorkerName       string `json:"workerName"`
	WorkerCode       string `json:"workerCode"`
	AssignmentNumber string `json:"assignmentNumber"`
	JobType          string `json:"jobType"`
	JobDescription   string `json:"jobDescription,omitempty"`
	Status           string `json:"status"`

	AssignedDate           time.Time  `json:"assignedDate"`
	StartDate              *time.Time `json:"startDate,omitempty"`
	ExpectedCompletionDate *time.Time `json:"expectedCompletionDate,omitempty"`
	ActualCompletionDate   *time.Time `json:"actualCompletionDate,omitempty"`

	Materials []MaterialEntry `json:"materials"`

	JobRate       *float64 `json:"jobRate,omitempty"`
	TotalAmount   *float64 `json:"totalAmount,omitempty"`
	AdvancePaid   float64  `json:"advancePaid"`
	BalanceAmount float64  `json:"balanceAmount"`
	PaymentStatus string   `json:"paymentStatus"`

	QualityRating *float64 `json:"qualityRating,omitempty"`
	Remarks       string   `json:"remarks,omitempty"`

	CreatedBy int64     `json:"createdBy"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateMaterialEntry struct {
	ItemID           int64    `json:"itemId" validate:"required"`
	ItemName         string   `json:"itemName" validate:"required"`
	Unit             string   `json:"unit" validate:"required"`
	QuantityGiven    float64  `json:"quantityGiven" validate:"min=0"`
	QuantityUsed     float64  `json:"quantityUsed" validate:"min=0"`
	QuantityReturned float64  `json:"quantityReturned" validate:"min=0"`
	QuantityWasted   float64  `json:"quantityWasted" validate:"min=0"`
	Rate             *float64 `json:"rate" validate:"omitempty,min=0"`
}

func (c CreateMaterialEntry) Entry() MaterialEntry {
	return MaterialEntry{
		ItemID:           c.ItemID,
		ItemName:         c.ItemName,
		Unit:             c.Unit,
		QuantityGiven:    c.QuantityGiven,
		QuantityUsed:     c.QuantityUsed,
		QuantityReturned: c.QuantityReturned,
		QuantityWasted:   c.QuantityWasted,
		Rate:             c.Rate,
	}
}

// MaterialPatch — частичное обновление строки материала.
type MaterialPatch struct {
	ItemName         *string  `json:"itemName"`
	Unit             *string  `json:"unit"`
	QuantityGiven    *float64 `json:"quantityGiven" validate:"omitempty,min=0"`
	QuantityUsed     *float64 `json:"quantityUsed" validate:"omitempty,min=0"`
	QuantityReturned *float64 `json:"quantityReturned" validate:"omitempty,min=0"`
	QuantityWasted   *float64 `json:"quantityWasted" validate:"omitempty,min=0"`
	Rate             *float64 `json:"rate" validate:"omitempty,min=0"`
}

type CreateAssignment struct {
	WorkerID               int64                 `json:"workerId" validate:"required"`
	AssignmentNumber       string                `json:"assignmentNumber"`
	JobType                string                `json:"jobType" validate:"required"`
	JobDescription         string                `json:"jobDescription"`
	AssignedDate           *time.Time            `json:"assignedDate"`
	ExpectedCompletionDate *time.Time            `json:"expectedCompletionDate"`
	Materials              []CreateMaterialEntry `json:"materials" validate:"dive"`
	JobRate                *float64              `json:"jobRate" validate:"omitempty,min=0"`
	TotalAmount            *float64              `json:"totalAmount" validate:"omitempty,min=0"`
	AdvancePaid            float64               `json:"advancePaid" validate:"min=0"`
	Remarks                string                `json:"remarks"`
}

type UpdateAssignment struct {
	JobType                *string                `json:"jobType"`
	JobDescription         *string                `json:"jobDescription"`
	ExpectedCompletionDate *time.Time             `json:"expectedCompletionDate"`
	Materials              *[]CreateMaterialEntry `json:"materials" validate:"omitempty,dive"`
	JobRate                *float64               `json:"jobRate" validate:"omitempty,min=0"`
	TotalAmount            *float64               `json:"totalAmount" validate:"omitempty,min=0"`
	AdvancePaid            *float64               `json:"advancePaid" validate:"omitempty,min=0"`
	QualityRating          *float64               `json:"qualityRating" validate:"omitempty,min=0,max=5"`
	Remarks                *string                `json:"remarks"`

	// Если клиент прислал версию — проверяем optimistic lock.
	Version *int64 `json:"version"`
}

type AssignmentFilter struct {
	CompanyID int64
	WorkerID  int64
	Status    string
	JobType   string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
}

type AssignmentList struct {
	Items []*Assignment `json:"items"`
	Total int64         `json:"total"`
}
