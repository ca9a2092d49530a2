package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrust/internal/domain"
)

func TestEncodeDecode(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	sh := domain.Shift{
		ID:        uuid.New(),
		WorkerID:  uuid.New(),
		Start:     start,
		Workplace: "Harbor Cafe",
	}

	tok, err := Encode(sh, start)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	payload, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, sh.ID, payload.ShiftID)
	assert.Equal(t, sh.WorkerID, payload.WorkerID)
	assert.Equal(t, sh.Workplace, payload.Workplace)
	assert.True(t, payload.StartTime.Equal(start))
	assert.True(t, payload.IssuedAt.Equal(start))
}

func TestEncodeIsDeterministic(t *testing.T) {
	sh := domain.Shift{
		ID:        uuid.New(),
		WorkerID:  uuid.New(),
		Start:     time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Workplace: "Harbor Cafe",
	}
	issued := sh.Start
	first, err := Encode(sh, issued)
	require.NoError(t, err)
	second, err := Encode(sh, issued)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	sh := domain.Shift{
		ID:        uuid.New(),
		WorkerID:  uuid.New(),
		Start:     time.Date(2025, 6, 10, 14, 0, 0, 0, loc),
		Workplace: "Harbor Cafe",
	}
	tok, err := Encode(sh, sh.Start)
	require.NoError(t, err)
	payload, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, payload.StartTime.Location())
	assert.True(t, payload.StartTime.Equal(sh.Start))
}

func TestDecodeMalformed(t *testing.T) {
	validJSON := func(mutate func(*Payload)) string {
		p := Payload{
			ShiftID:   uuid.New(),
			WorkerID:  uuid.New(),
			Workplace: "Harbor Cafe",
			StartTime: time.Now().UTC(),
			IssuedAt:  time.Now().UTC(),
		}
		mutate(&p)
		sh := domain.Shift{ID: p.ShiftID, WorkerID: p.WorkerID, Start: p.StartTime, Workplace: p.Workplace}
		tok, err := Encode(sh, p.IssuedAt)
		require.NoError(t, err)
		return tok
	}

	cases := map[string]string{
		"empty string":       "",
		"not base64":         "%%%not-base64%%%",
		"base64 of not json": base64.StdEncoding.EncodeToString([]byte("plain text")),
		"json but wrong shape": base64.StdEncoding.EncodeToString(
			[]byte(`{"shift_id": 42}`)),
		"missing shift id": validJSON(func(p *Payload) { p.ShiftID = uuid.Nil }),
		"missing worker":   validJSON(func(p *Payload) { p.WorkerID = uuid.Nil }),
		"empty workplace":  validJSON(func(p *Payload) { p.Workplace = "" }),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(tok)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
