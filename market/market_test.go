package market

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want Interval
		ok   bool
	}{
		{"5", 5, true},
		{"5m", 5, true},
		{"15m", 15, true},
		{"1h", 60, true},
		{"1d", 1440, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
	}

	for _, c := range cases {
		iv, err := ParseInterval(c.in)
		if c.ok {
			require.NoError(t, err, c.in)
			assert.Equal(t, c.want, iv, c.in)
		} else {
			assert.Error(t, err, c.in)
		}
	}
}

func TestBarsPerDay(t *testing.T) {
	iv := Interval(5)
	// A 240-minute futures session holds 48 five-minute bars.
	assert.Equal(t, 48, iv.BarsPerDay(240))
	assert.Equal(t, 0, iv.BarsPerDay(0))
}

func TestReadCSV(t *testing.T) {
	data := `datetime,open,high,low,close,volume
2024-03-01 09:00:00,100,101,99,100.5,1200
2024-03-01 09:05:00,100.5,102,100,101.5,900
`
	bars, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 900.0, bars[1].Volume)
	assert.True(t, bars[1].Time.After(bars[0].Time))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("datetime,open,high,low,close,volume\n"))
	assert.ErrorIs(t, err, ErrNoBars)
}

func TestReadCSVOutOfOrder(t *testing.T) {
	data := `2024-03-01 09:05:00,100,101,99,100,1
2024-03-01 09:00:00,100,101,99,100,1
`
	_, err := ReadCSV(strings.NewReader(data))
	assert.Error(t, err)
}

func TestFilterRange(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Time: base, Close: 1},
		{Time: base.Add(5 * time.Minute), Close: 2},
		{Time: base.Add(10 * time.Minute), Close: 3},
	}

	got := FilterRange(bars, base.Add(5*time.Minute), time.Time{})
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Close)

	got = FilterRange(bars, time.Time{}, base.Add(5*time.Minute))
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[1].Close)
}

func TestValidateBars(t *testing.T) {
	bad := []Bar{{Time: time.Now(), Open: -1}}
	assert.Error(t, ValidateBars(bad))
}
