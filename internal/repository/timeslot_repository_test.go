package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solve-api/internal/models"
)

func TestTimeslotRepositoryListAllUsesWeekdayOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeslotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "day", "index", "start_time", "end_time"}).
		AddRow(int64(1), "MON", 0, "07:00", "07:45").
		AddRow(int64(2), "MON", 1, "07:45", "08:30").
		AddRow(int64(3), "TUE", 0, "07:00", "07:45")
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY CASE day WHEN 'MON' THEN 1 WHEN 'TUE' THEN 2 WHEN 'WED' THEN 3 WHEN 'THU' THEN 4 WHEN 'FRI' THEN 5 ELSE 6 END, "index" ASC`)).
		WillReturnRows(rows)

	slots, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "MON", slots[0].Day)
	assert.Equal(t, 1, slots[1].Index)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeslotRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeslotRepository(db)

	mock.ExpectQuery("INSERT INTO timeslots").
		WithArgs("WED", 2, "08:30", "09:15").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(13)))

	slot := &models.Timeslot{Day: "WED", Index: 2, StartTime: "08:30", EndTime: "09:15"}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.Equal(t, int64(13), slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
