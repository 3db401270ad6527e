package mysql

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"limit capped", 2, 500, 2, 100},
		{"limit at cap", 1, 100, 1, 100},
		{"passthrough", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := normalizePaging(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 100, 1},
		{101, 100, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, totalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestDuplicateKey(t *testing.T) {
	phoneErr := &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry '1-+79990001122' for key 'jw_workers.uq_workers_company_phone'",
	}
	codeErr := &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry '1-WRK0001' for key 'jw_workers.uq_workers_company_code'",
	}

	assert.True(t, isDuplicate(phoneErr))
	assert.Equal(t, "jw_workers.uq_workers_company_phone", duplicateKey(phoneErr))
	assert.Equal(t, "jw_workers.uq_workers_company_code", duplicateKey(codeErr))

	assert.False(t, isDuplicate(errors.New("connection refused")))
	assert.Empty(t, duplicateKey(errors.New("connection refused")))
	assert.Empty(t, duplicateKey(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
}

func TestSequenceNumbers(t *testing.T) {
	assert.Equal(t, "JOB00001", sequenceAssignmentNumber(1))
	assert.Equal(t, "JOB00042", sequenceAssignmentNumber(42))
	assert.Equal(t, "WRK0001", sequenceWorkerCode(1))
	assert.Equal(t, "WRK0042", sequenceWorkerCode(42))
}

func TestFallbackNumbers(t *testing.T) {
	// две компании считают свои последовательности независимо и получают
	// одинаковую строку — фоллбек обязан дать другой номер
	now := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	fb := fallbackAssignmentNumber(now)

	assert.NotEqual(t, sequenceAssignmentNumber(1), fb)
	assert.Contains(t, fb, "JOB")

	later := fallbackAssignmentNumber(now.Add(time.Nanosecond))
	assert.NotEqual(t, fb, later)

	assert.NotEqual(t, sequenceWorkerCode(1), fallbackWorkerCode(now))
	assert.NotEqual(t, fallbackWorkerCode(now), fallbackWorkerCode(now.Add(time.Nanosecond)))
}
