package chart_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
)

func TestAlignWrapsAcrossMidnight(t *testing.T) {
	labels, err := chart.Align(2, 5, 24)
	require.NoError(t, err)
	require.Equal(t, []int{22, 23, 0, 1, 2}, labels)
}

func TestAlignLastLabelIsWindowEnd(t *testing.T) {
	for _, modulus := range []int{24, 60} {
		for end := 0; end < modulus; end++ {
			for length := 1; length <= modulus; length++ {
				labels, err := chart.Align(end, length, modulus)
				require.NoError(t, err)
				require.Len(t, labels, length)
				require.Equal(t, end, labels[length-1], "end=%d length=%d modulus=%d", end, length, modulus)
			}
		}
	}
}

func TestAlignRepeatsLongWindows(t *testing.T) {
	const modulus = 24
	labels, err := chart.Align(5, 8*24+3, modulus)
	require.NoError(t, err)
	require.Equal(t, 5, labels[len(labels)-1])
	for i := 0; i+modulus < len(labels); i++ {
		require.Equal(t, labels[i], labels[i+modulus], "index %d", i)
	}
}

func TestAlignEmptyWindow(t *testing.T) {
	labels, err := chart.Align(13, 0, 60)
	require.NoError(t, err)
	require.Empty(t, labels)
}

func TestAlignRejectsBadInput(t *testing.T) {
	cases := []struct {
		name                 string
		end, length, modulus int
	}{
		{"zero modulus", 0, 3, 0},
		{"negative length", 1, -1, 24},
		{"end past modulus", 24, 3, 24},
		{"negative end", -1, 3, 24},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := chart.Align(tc.end, tc.length, tc.modulus)
			require.True(t, errors.Is(err, chart.ErrMalformedInput), "got %v", err)
		})
	}
}

func TestResolutionModulus(t *testing.T) {
	m, err := chart.ResolutionHour.Modulus()
	require.NoError(t, err)
	require.Equal(t, 24, m)

	m, err = chart.ResolutionMinute.Modulus()
	require.NoError(t, err)
	require.Equal(t, 60, m)

	_, err = chart.Resolution("week").Modulus()
	require.ErrorIs(t, err, chart.ErrMalformedInput)
}
