package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatRecord_JSONRoundTrip(t *testing.T) {
	expiry := time.Now().UTC().Add(5 * time.Minute)
	rec := SeatRecord{
		ShowtimeID: "show-1",
		TotalSeats: 2,
		Seats: []Seat{
			{Label: "A1", Status: SeatFree, Price: decimal.NewFromInt(10)},
			{Label: "A2", Status: SeatHeld, HolderToken: "tok", ExpiresAt: &expiry, Price: decimal.RequireFromString("12.50")},
		},
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded SeatRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, rec.ShowtimeID, decoded.ShowtimeID)
	assert.Equal(t, rec.TotalSeats, decoded.TotalSeats)
	require.Len(t, decoded.Seats, 2)
	assert.Equal(t, SeatHeld, decoded.Seats[1].Status)
	assert.Equal(t, "tok", decoded.Seats[1].HolderToken)
	require.NotNil(t, decoded.Seats[1].ExpiresAt)
	assert.WithinDuration(t, expiry, *decoded.Seats[1].ExpiresAt, time.Second)
	assert.True(t, decoded.Seats[1].Price.Equal(decimal.RequireFromString("12.50")))
}

func TestSeatRecord_CloneIsDeep(t *testing.T) {
	expiry := time.Now().UTC()
	rec := &SeatRecord{
		ShowtimeID: "show-1",
		TotalSeats: 1,
		Seats:      []Seat{{Label: "A1", Status: SeatHeld, HolderToken: "tok", ExpiresAt: &expiry}},
	}

	clone := rec.Clone()
	clone.Seats[0].Status = SeatFree
	clone.Seats[0].HolderToken = ""
	*clone.Seats[0].ExpiresAt = expiry.Add(time.Hour)

	assert.Equal(t, SeatHeld, rec.Seats[0].Status)
	assert.Equal(t, "tok", rec.Seats[0].HolderToken)
	assert.Equal(t, expiry, *rec.Seats[0].ExpiresAt)
}

func TestValidSeatStatus(t *testing.T) {
	assert.True(t, ValidSeatStatus(SeatFree))
	assert.True(t, ValidSeatStatus(SeatHeld))
	assert.True(t, ValidSeatStatus(SeatBooked))
	assert.False(t, ValidSeatStatus("RESERVED"))
	assert.False(t, ValidSeatStatus(""))
}

func TestHold_Expired(t *testing.T) {
	now := time.Now().UTC()
	h := Hold{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, h.Expired(now))
	assert.True(t, h.Expired(now.Add(time.Minute)))
	assert.True(t, h.Expired(now.Add(2*time.Minute)))
}
