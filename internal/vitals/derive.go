package vitals

import (
	"fmt"
	"time"

	"healthguard-console/internal/models"
)

// Threshold 单项体征的安全范围
type Threshold struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Thresholds 各体征的报警阈值（来自配置，不持久化）
type Thresholds struct {
	HeartRate        Threshold `yaml:"heart_rate"`
	SpO2             Threshold `yaml:"spo2"`
	Temperature      Threshold `yaml:"temperature"`
	BloodPressureSys Threshold `yaml:"blood_pressure_sys"`
	BloodPressureDia Threshold `yaml:"blood_pressure_dia"`
	RespiratoryRate  Threshold `yaml:"respiratory_rate"`
}

// DefaultThresholds 临床默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRate:        Threshold{Low: 50, High: 110},
		SpO2:             Threshold{Low: 92, High: 100},
		Temperature:      Threshold{Low: 35.5, High: 38.0},
		BloodPressureSys: Threshold{Low: 90, High: 150},
		BloodPressureDia: Threshold{Low: 55, High: 95},
		RespiratoryRate:  Threshold{Low: 10, High: 22},
	}
}

// IsAlert 测量值是否越界
// 缺失值不报警；恰好等于边界不报警
func IsAlert(value *float64, t Threshold) bool {
	if value == nil {
		return false
	}
	return *value < t.Low || *value > t.High
}

// Trend 相邻读数的趋势
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
	TrendNone   Trend = "" // 任一输入缺失
)

// trendDeadband 趋势判定死区，抑制噪声引起的抖动。固定常量，不从数据推导
const trendDeadband = 0.5

// TrendOf 比较当前值与上一个值
// 差值超出死区才算变化，恰好等于死区为 stable
func TrendOf(current, previous *float64) Trend {
	if current == nil || previous == nil {
		return TrendNone
	}
	switch {
	case *current > *previous+trendDeadband:
		return TrendUp
	case *current < *previous-trendDeadband:
		return TrendDown
	default:
		return TrendStable
	}
}

// FormatUptime 运行时长格式化为 "{h}h {m}m"，秒数截断不四舍五入
func FormatUptime(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%dh %dm", total/3600, total%3600/60)
}

// Sign 单项体征的派生状态
type Sign struct {
	Value *float64
	Alert bool
	Trend Trend
}

// Snapshot 一条读数的完整派生状态，交给展示层消费
type Snapshot struct {
	Timestamp        time.Time
	HeartRate        Sign
	SpO2             Sign
	Temperature      Sign
	BloodPressureSys Sign
	BloodPressureDia Sign
	RespiratoryRate  Sign
}

// AlertCount 越界体征数量
func (s Snapshot) AlertCount() int {
	n := 0
	for _, sign := range []Sign{
		s.HeartRate, s.SpO2, s.Temperature,
		s.BloodPressureSys, s.BloodPressureDia, s.RespiratoryRate,
	} {
		if sign.Alert {
			n++
		}
	}
	return n
}

// Evaluate 由原始读数 + 阈值 + 上一条读数派生状态。纯函数，无 I/O
func Evaluate(reading models.VitalReading, previous *models.VitalReading, t Thresholds) Snapshot {
	snap := Snapshot{Timestamp: reading.Timestamp}

	prev := func(pick func(*models.VitalReading) *float64) *float64 {
		if previous == nil {
			return nil
		}
		return pick(previous)
	}

	snap.HeartRate = Sign{
		Value: reading.HeartRate,
		Alert: IsAlert(reading.HeartRate, t.HeartRate),
		Trend: TrendOf(reading.HeartRate, prev(func(r *models.VitalReading) *float64 { return r.HeartRate })),
	}
	snap.SpO2 = Sign{
		Value: reading.SpO2,
		Alert: IsAlert(reading.SpO2, t.SpO2),
		Trend: TrendOf(reading.SpO2, prev(func(r *models.VitalReading) *float64 { return r.SpO2 })),
	}
	snap.Temperature = Sign{
		Value: reading.Temperature,
		Alert: IsAlert(reading.Temperature, t.Temperature),
		Trend: TrendOf(reading.Temperature, prev(func(r *models.VitalReading) *float64 { return r.Temperature })),
	}
	snap.BloodPressureSys = Sign{
		Value: reading.BloodPressureSys,
		Alert: IsAlert(reading.BloodPressureSys, t.BloodPressureSys),
		Trend: TrendOf(reading.BloodPressureSys, prev(func(r *models.VitalReading) *float64 { return r.BloodPressureSys })),
	}
	snap.BloodPressureDia = Sign{
		Value: reading.BloodPressureDia,
		Alert: IsAlert(reading.BloodPressureDia, t.BloodPressureDia),
		Trend: TrendOf(reading.BloodPressureDia, prev(func(r *models.VitalReading) *float64 { return r.BloodPressureDia })),
	}
	snap.RespiratoryRate = Sign{
		Value: reading.RespiratoryRate,
		Alert: IsAlert(reading.RespiratoryRate, t.RespiratoryRate),
		Trend: TrendOf(reading.RespiratoryRate, prev(func(r *models.VitalReading) *float64 { return r.RespiratoryRate })),
	}

	return snap
}
