package models

import "time"

// VitalReading 单条生命体征读数（后端 /api/vitals 返回格式）
// 所有测量值均为可选：设备可能只上报部分体征
type VitalReading struct {
	ID               int       `json:"id"`
	UUID             string    `json:"uuid"`
	Timestamp        time.Time `json:"timestamp"`
	HeartRate        *float64  `json:"heart_rate"`         // bpm
	SpO2             *float64  `json:"spo2"`               // %
	Temperature      *float64  `json:"temperature"`        // °C
	BloodPressureSys *float64  `json:"blood_pressure_sys"` // mmHg
	BloodPressureDia *float64  `json:"blood_pressure_dia"` // mmHg
	RespiratoryRate  *float64  `json:"respiratory_rate"`   // 次/分
	Synced           bool      `json:"synced"`
}

// VitalsPage 分页的历史读数列表（GET /api/vitals）
type VitalsPage struct {
	Items    []VitalReading `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Pages    int            `json:"pages"`
}

// VitalStats 聚合统计（GET /api/vitals/stats）
// 透传后端结果，本客户端不做二次计算
type VitalStats struct {
	PeriodStart         time.Time `json:"period_start"`
	PeriodEnd           time.Time `json:"period_end"`
	TotalReadings       int       `json:"total_readings"`
	HeartRateAvg        *float64  `json:"heart_rate_avg"`
	HeartRateMin        *float64  `json:"heart_rate_min"`
	HeartRateMax        *float64  `json:"heart_rate_max"`
	SpO2Avg             *float64  `json:"spo2_avg"`
	SpO2Min             *float64  `json:"spo2_min"`
	SpO2Max             *float64  `json:"spo2_max"`
	TemperatureAvg      *float64  `json:"temperature_avg"`
	BloodPressureSysAvg *float64  `json:"blood_pressure_sys_avg"`
	BloodPressureDiaAvg *float64  `json:"blood_pressure_dia_avg"`
	RespiratoryRateAvg  *float64  `json:"respiratory_rate_avg"`
}
