package vitals

import (
	"testing"
	"time"

	"healthguard-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestIsAlert_Boundaries(t *testing.T) {
	threshold := Threshold{Low: 50, High: 110}

	tests := []struct {
		name  string
		value *float64
		want  bool
	}{
		{"absent value never alerts", nil, false},
		{"exactly low is not alert", f(50), false},
		{"exactly high is not alert", f(110), false},
		{"one below low is alert", f(49), true},
		{"one above high is alert", f(111), true},
		{"inside range", f(72), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAlert(tt.value, threshold))
		})
	}
}

func TestTrendOf_Deadband(t *testing.T) {
	tests := []struct {
		name     string
		current  *float64
		previous *float64
		want     Trend
	}{
		{"absent current", nil, f(50), TrendNone},
		{"absent previous", f(50), nil, TrendNone},
		{"just beyond deadband is up", f(51), f(50.4999), TrendUp},
		{"exactly deadband is stable", f(51), f(50.5), TrendStable},
		{"beyond deadband up", f(51), f(50.49), TrendUp},
		{"equal is stable", f(50), f(50), TrendStable},
		{"exactly deadband down is stable", f(50), f(50.5), TrendStable},
		{"beyond deadband down", f(50), f(50.51), TrendDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendOf(tt.current, tt.previous))
		})
	}
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "1h 1m", FormatUptime(3661))
	assert.Equal(t, "0h 0m", FormatUptime(59))
	assert.Equal(t, "0h 1m", FormatUptime(60))
	assert.Equal(t, "24h 0m", FormatUptime(86400))
	// 秒数截断不四舍五入
	assert.Equal(t, "0h 0m", FormatUptime(59.9))
}

func TestEvaluate(t *testing.T) {
	thresholds := DefaultThresholds()
	now := time.Now()

	reading := models.VitalReading{
		Timestamp:       now,
		HeartRate:       f(120), // 高于 110：报警
		SpO2:            f(95),
		RespiratoryRate: nil, // 缺失
	}
	previous := &models.VitalReading{
		HeartRate: f(118),
		SpO2:      f(96),
	}

	snap := Evaluate(reading, previous, thresholds)

	assert.Equal(t, now, snap.Timestamp)
	assert.True(t, snap.HeartRate.Alert)
	assert.Equal(t, TrendUp, snap.HeartRate.Trend)
	assert.False(t, snap.SpO2.Alert)
	assert.Equal(t, TrendDown, snap.SpO2.Trend)
	assert.False(t, snap.RespiratoryRate.Alert)
	assert.Equal(t, TrendNone, snap.RespiratoryRate.Trend)
	assert.Equal(t, 1, snap.AlertCount())
}

func TestEvaluate_NoPrevious(t *testing.T) {
	snap := Evaluate(models.VitalReading{HeartRate: f(72)}, nil, DefaultThresholds())
	assert.Equal(t, TrendNone, snap.HeartRate.Trend)
	assert.False(t, snap.HeartRate.Alert)
	assert.Equal(t, 0, snap.AlertCount())
}

func TestDefaultThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	require.Equal(t, 50.0, thresholds.HeartRate.Low)
	require.Equal(t, 110.0, thresholds.HeartRate.High)
	require.Equal(t, 92.0, thresholds.SpO2.Low)
}
