package allegro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateShippingCost(t *testing.T) {
	cases := []struct {
		name      string
		method    string
		value     int64
		cost      int64
		threshold int
		matched   string
	}{
		{"inpost lowest band", "Allegro Paczkomaty InPost", 3500, 159, 0, "allegro paczkomaty inpost"},
		{"inpost top band", "Allegro Paczkomaty InPost", 20000, 999, 4, "allegro paczkomaty inpost"},
		{"dhl box mid band", "Allegro Automat DHL BOX", 7000, 359, 2, "allegro automat dhl box"},
		{"dpd courier", "Allegro Kurier DPD", 11000, 909, 3, "allegro kurier dpd"},
		{"diacritics normalized", "Allegro Odbiór w Punkcie DHL", 5000, 189, 1, "allegro odbior w punkcie dhl"},
		{"substring fallback", "Przesyłka Allegro Kurier DHL Standard", 5000, 369, 1, "allegro kurier dhl"},
		{"unknown method uses default", "Golebie pocztowe", 5000, 309, 1, "default"},
		{"below first band clamps down", "Allegro Paczkomaty InPost", 1000, 159, 0, "allegro paczkomaty inpost"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimateShippingCost(tc.method, tc.value)
			require.Equal(t, tc.cost, got.CostGrosz)
			require.Equal(t, tc.threshold, got.ThresholdIndex)
			require.Equal(t, tc.matched, got.MethodMatched)
		})
	}
}

func TestNormalizeDeliveryMethod(t *testing.T) {
	require.Equal(t, "allegro odbior w punkcie pocztex",
		normalizeDeliveryMethod("  Allegro Odbiór w Punkcie Pocztex "))
	require.Equal(t, "kurier dpd", normalizeDeliveryMethod("KURIER DPD"))
	require.Equal(t, "", normalizeDeliveryMethod(""))
}

func TestThresholdIndex(t *testing.T) {
	require.Equal(t, 0, thresholdIndex(0))
	require.Equal(t, 0, thresholdIndex(3000))
	require.Equal(t, 0, thresholdIndex(4499))
	require.Equal(t, 1, thresholdIndex(4500))
	require.Equal(t, 2, thresholdIndex(6500))
	require.Equal(t, 3, thresholdIndex(14999))
	require.Equal(t, 4, thresholdIndex(15000))
	require.Equal(t, 4, thresholdIndex(100_000_000))
}
