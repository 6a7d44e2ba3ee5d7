package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"online-voting-backend/apperrors"
	"online-voting-backend/models"
)

func testElection(status models.ElectionStatus) *models.Election {
	e := &models.Election{
		Title:     "Test Election",
		StartDate: "2024-10-10",
		StartTime: "9:00 AM",
		EndDate:   "2024-10-10",
		EndTime:   "5:00 PM",
		Timezone:  "UTC",
		Status:    status,
	}
	e.ID = 1
	return e
}

func TestTryActivate_NotDue(t *testing.T) {
	e := testElection(models.StatusPending)
	now := time.Date(2024, 10, 10, 8, 59, 59, 0, time.UTC)

	tr, err := TryActivate(e, now)
	assert.NoError(t, err)
	assert.False(t, tr.Applied)
	assert.Equal(t, ReasonNotDue, tr.Reason)
}

func TestTryActivate_Due(t *testing.T) {
	e := testElection(models.StatusPending)

	// 恰好到达开始时间点也算到期
	now := time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC)
	tr, err := TryActivate(e, now)
	assert.NoError(t, err)
	assert.True(t, tr.Applied)
	assert.Equal(t, models.StatusPending, tr.From)
	assert.Equal(t, models.StatusActive, tr.To)
}

func TestTryActivate_WrongStatus(t *testing.T) {
	for _, status := range []models.ElectionStatus{models.StatusActive, models.StatusFinished, models.StatusClosed} {
		e := testElection(status)
		_, err := TryActivate(e, time.Now())
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestTryFinish(t *testing.T) {
	e := testElection(models.StatusActive)

	tr, err := TryFinish(e, time.Date(2024, 10, 10, 16, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.False(t, tr.Applied)

	tr, err = TryFinish(e, time.Date(2024, 10, 10, 17, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.True(t, tr.Applied)
	assert.Equal(t, models.StatusFinished, tr.To)
}

func TestTryFinish_WrongStatus(t *testing.T) {
	e := testElection(models.StatusPending)
	_, err := TryFinish(e, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestClose(t *testing.T) {
	for _, status := range []models.ElectionStatus{models.StatusPending, models.StatusActive, models.StatusFinished} {
		e := testElection(status)
		tr, err := Close(e)
		assert.NoError(t, err)
		assert.True(t, tr.Applied)
		assert.Equal(t, status, tr.From)
		assert.Equal(t, models.StatusClosed, tr.To)
	}
}

func TestClose_AlreadyClosed(t *testing.T) {
	e := testElection(models.StatusClosed)
	_, err := Close(e)
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestTryActivate_BadSchedule(t *testing.T) {
	e := testElection(models.StatusPending)
	e.StartTime = "9:00"

	_, err := TryActivate(e, time.Now())
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestValidateSchedule(t *testing.T) {
	e := testElection(models.StatusPending)
	assert.NoError(t, ValidateSchedule(e))

	// 开始与结束相同的时间点无效
	e.EndTime = e.StartTime
	err := ValidateSchedule(e)
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// 时区参与解析：同一墙上时间在更靠西的时区更晚
	e = testElection(models.StatusPending)
	e.Timezone = "America/New_York"
	assert.NoError(t, ValidateSchedule(e))
}
