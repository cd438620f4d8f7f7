package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatHandler_InitAndGetSeats(t *testing.T) {
	env := newTestEnv(t)
	h := NewSeatHandler(env.ledger)

	c, rec := env.request(t, `{"seats":[{"label":"B1","price":"12.50"},{"label":"B2","price":"12.50"}]}`, "show-2")
	require.NoError(t, h.InitShowtime(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = env.request(t, "", "show-2")
	require.NoError(t, h.GetSeats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["total_seats"])
	assert.EqualValues(t, 2, body["available_seats"])
}

func TestSeatHandler_InitIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	h := NewSeatHandler(env.ledger)

	// show-1 already exists with 2 seats; re-init with a different
	// layout must not clobber it.
	c, rec := env.request(t, `{"seats":[{"label":"Z1","price":"1"}]}`, "show-1")
	require.NoError(t, h.InitShowtime(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	seats, err := env.ledger.Snapshot("show-1")
	require.NoError(t, err)
	assert.Len(t, seats, 2)
	assert.Equal(t, "A1", seats[0].Label)
}

func TestSeatHandler_GetSeatsUnknownShowtime(t *testing.T) {
	env := newTestEnv(t)
	h := NewSeatHandler(env.ledger)

	c, rec := env.request(t, "", "missing")
	require.NoError(t, h.GetSeats(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeatHandler_InitValidation(t *testing.T) {
	env := newTestEnv(t)
	h := NewSeatHandler(env.ledger)

	c, rec := env.request(t, `{"seats":[]}`, "show-3")
	require.NoError(t, h.InitShowtime(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
