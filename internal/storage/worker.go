package storage

import "time"

const (
	WorkerStatusActive    = "active"
	WorkerStatusInactive  = "inactive"
	WorkerStatusSuspended = "suspended"
)

type Worker struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"companyId"`
	WorkerCode     string    `json:"workerCode"`
	Name           string    `json:"name"`
	PhoneNumber    string    `json:"phoneNumber"`
	Specialization []string  `json:"specialization"`
	SkillLevel     string    `json:"skillLevel,omitempty"`
	PerDayRate     *float64  `json:"perDayRate,omitempty"`
	PerPieceRate   *float64  `json:"perPieceRate,omitempty"`
	Status         string    `json:"status"`
	IsActive       bool      `json:"isActive"`
	Address        string    `json:"address,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      int64     `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateWorker struct {
	WorkerCode     string   `json:"workerCode"`
	Name           string   `json:"name" validate:"required"`
	PhoneNumber    string   `json:"phoneNumber" validate:"required"`
	Specialization []string `json:"specialization"`
	SkillLevel     string   `json:"skillLevel" validate:"omitempty,oneof=beginner intermediate expert"`
	PerDayRate     *float64 `json:"perDayRate" validate:"omitempty,min=0"`
	PerPieceRate   *float64 `json:"perPieceRate" validate:"omitempty,min=0"`
	Address        string   `json:"address"`
	Notes          string   `json:"notes"`
}

// UpdateWorker: nil-поле не трогаем.
type UpdateWorker struct {
	Name           *string   `json:"name"`
	PhoneNumber    *string   `json:"phoneNumber"`
	Specialization *[]string `json:"specialization"`
	SkillLevel     *string   `json:"skillLevel" validate:"omitempty,oneof=beginner intermediate expert"`
	PerDayRate     *float64  `json:"perDayRate" validate:"omitempty,min=0"`
	PerPieceRate   *float64  `json:"perPieceRate" validate:"omitempty,min=0"`
	Status         *string   `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Address        *string   `json:"address"`
	Notes          *string   `json:"notes"`
}

type WorkerFilter struct {
	CompanyID      int64
	Status         string
	IsActive       *bool
	Specialization string
	Search         string
	Page           int
	Limit          int
	SortBy         string
	SortOrder      string
}

type WorkerList struct {
	Items      []*Worker `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// WorkerSummary — агрегаты по всем нарядам работника.
type WorkerSummary struct {
	TotalAssignments   int            `json:"totalAssignments"`
	AssignmentsByState map[string]int `json:"assignmentsByStatus"`

	TotalEarned  float64 `json:"totalEarned"`
	TotalAdvance float64 `json:"totalAdvancePaid"`
	TotalPending float64 `json:"totalPendingAmount"`

	QuantityGiven     float64 `json:"quantityGiven"`
	QuantityUsed      float64 `json:"quantityUsed"`
	QuantityReturned  float64 `json:"quantityReturned"`
	QuantityWasted    float64 `json:"quantityWasted"`
	QuantityRemaining float64 `json:"quantityRemaining"`
	MaterialValue     float64 `json:"materialValue"`
}

type WorkerWithSummary struct {
	Worker  *Worker        `json:"worker"`
	Summary *WorkerSummary `json:"summary"`
}
