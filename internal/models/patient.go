package models

import "time"

// Patient 患者档案（GET /api/patient，单患者边缘节点）
type Patient struct {
	ID               int       `json:"id"`
	UUID             string    `json:"uuid"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	DateOfBirth      *string   `json:"date_of_birth"`
	MedicalID        *string   `json:"medical_id"`
	BloodType        *string   `json:"blood_type"`
	EmergencyContact *string   `json:"emergency_contact"`
	Notes            *string   `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PatientUpdate 患者档案更新请求体（PUT /api/patient）
// 只序列化显式设置的字段
type PatientUpdate struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	DateOfBirth      *string `json:"date_of_birth,omitempty"`
	MedicalID        *string `json:"medical_id,omitempty"`
	BloodType        *string `json:"blood_type,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}
