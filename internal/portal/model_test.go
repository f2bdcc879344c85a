package portal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfDropsClock(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := DateOf(time.Date(2026, 3, 21, 1, 30, 0, 0, ist))
	assert.Equal(t, "2026-03-21", d.String())
	assert.Equal(t, time.UTC, d.Location())
	assert.Zero(t, d.Hour())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", d.AddDays(1).String())

	_, err = ParseDate("31-12-2026")
	assert.Error(t, err)
	_, err = ParseDate("2026-02-30")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(Event{ID: 1, Deadline: Date{time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"deadline":"2026-03-20"`)

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-04-01"`), &d))
	assert.Equal(t, "2026-04-01", d.String())
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-20", d.String())
	require.NoError(t, d.Scan("2026-03-21"))
	assert.Equal(t, "2026-03-21", d.String())
	require.NoError(t, d.Scan([]byte("2026-03-22")))
	assert.Equal(t, "2026-03-22", d.String())
	assert.Error(t, d.Scan(42))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-22", v)
}

func TestUserHidesPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@svkm.ac.in", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-hash")
}
