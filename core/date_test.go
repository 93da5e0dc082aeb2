package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateIn(t *testing.T) {
	now := time.Date(2024, time.March, 16, 3, 30, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, NewDate(2024, time.March, 15), DateIn(now, ny))
	assert.Equal(t, NewDate(2024, time.March, 16), DateIn(now, time.UTC))
	assert.True(t, DateIn(now, ny) == NewDate(2024, time.March, 15), "same days compare equal")
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	assert.Equal(t, NewDate(2024, time.February, 29), d.AddDays(-1))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.True(t, d.After(d.AddDays(-7)))
	assert.Equal(t, "2024-03-01", d.String())
	assert.Equal(t, "", Date{}.String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 15), d)

	for _, s := range []string{"", "15/03/2024", "2024-13-01", "2024-03-15T10:00:00Z"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}

	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "date", in: `{"date": "2024-03-15"}`, want: NewDate(2024, time.March, 15)},
		{name: "timestamp keeps its day", in: `{"date": "2024-03-15T23:30:00-05:00"}`, want: NewDate(2024, time.March, 15)},
		{name: "null", in: `{"date": null}`},
		{name: "empty", in: `{"date": ""}`},
		{name: "missing", in: `{}`},
		{name: "invalid", in: `{"date": "yesterday"}`, wantErr: true},
		{name: "not a string", in: `{"date": 20240315}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload.Date = Date{}
			err := json.Unmarshal([]byte(tt.in), &payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.Date)
		})
	}

	payload.Date = NewDate(2024, time.March, 15)
	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date": "2024-03-15"}`, string(out))

	out, err = json.Marshal(struct{ Date Date }{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Date": null}`, string(out))
}

func TestDate_SQL(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, time.March, 15), d)

	require.NoError(t, d.Scan([]byte("2024-03-14T00:00:00Z")))
	assert.Equal(t, NewDate(2024, time.March, 14), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, time.March, 15).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
