package store

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-ticketing/models"
	"movie-ticketing/status"
)

func openTestStore(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seats.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testRecord(showtimeID string) *models.SeatRecord {
	return &models.SeatRecord{
		ShowtimeID: showtimeID,
		TotalSeats: 2,
		Seats: []models.Seat{
			{Label: "A1", Status: models.SeatFree, Price: decimal.NewFromInt(10)},
			{Label: "A2", Status: models.SeatBooked, HolderToken: "tok", Price: decimal.NewFromInt(12)},
		},
	}
}

func TestBoltStore_SaveLoadRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	rec := testRecord("show-1")
	require.NoError(t, s.Save("show-1", rec))

	loaded, err := s.Load("show-1")
	require.NoError(t, err)
	assert.Equal(t, "show-1", loaded.ShowtimeID)
	assert.Equal(t, 2, loaded.TotalSeats)
	assert.Equal(t, "A1", loaded.Seats[0].Label)
	assert.Equal(t, models.SeatBooked, loaded.Seats[1].Status)
	assert.Equal(t, "tok", loaded.Seats[1].HolderToken)
	assert.True(t, loaded.Seats[0].Price.Equal(decimal.NewFromInt(10)))
}

func TestBoltStore_LoadMissing(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.Load("nope")
	assert.ErrorIs(t, err, status.ErrShowtimeNotFound)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seats.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("show-1", testRecord("show-1")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load("show-1")
	require.NoError(t, err)
	assert.Equal(t, models.SeatBooked, loaded.Seats[1].Status)
}

func TestBoltStore_ShowtimeIDs(t *testing.T) {
	s, _ := openTestStore(t)

	ids, err := s.ShowtimeIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.Save("show-2", testRecord("show-2")))
	require.NoError(t, s.Save("show-1", testRecord("show-1")))

	ids, err = s.ShowtimeIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"show-1", "show-2"}, ids) // bolt keys are sorted
}

func TestBoltStore_CorruptSeatCount(t *testing.T) {
	s, _ := openTestStore(t)

	rec := testRecord("show-1")
	rec.TotalSeats = 5
	require.NoError(t, s.Save("show-1", rec))

	_, err := s.Load("show-1")
	var corrupt *status.StoreCorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "show-1", corrupt.ShowtimeID)
	assert.Contains(t, corrupt.Reason, "seat count mismatch")
}

func TestBoltStore_CorruptStatusToken(t *testing.T) {
	s, _ := openTestStore(t)

	rec := testRecord("show-1")
	rec.Seats[0].Status = "SQUATTED"
	require.NoError(t, s.Save("show-1", rec))

	_, err := s.Load("show-1")
	var corrupt *status.StoreCorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Reason, "unknown status")
}

func TestBoltStore_CorruptShowtimeMismatch(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.Save("show-2", testRecord("show-1")))

	_, err := s.Load("show-2")
	var corrupt *status.StoreCorruptError
	require.ErrorAs(t, err, &corrupt)
}
