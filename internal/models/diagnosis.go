package models

// VehicleType distinguishes cars from motorcycles in diagnosis prompts.
type VehicleType string

const (
	VehicleCar        VehicleType = "Auto"
	VehicleMotorcycle VehicleType = "Moto"
)

// DiagnosisRequest is the symptom form submitted by the client.
type DiagnosisRequest struct {
	VehicleType VehicleType `json:"vehicle_type"`
	Vehicle     string      `json:"vehicle"`
	Symptoms    string      `json:"symptoms"`
	Provider    string      `json:"provider,omitempty"`
}

// DiagnosisResponse carries the completion split into display lines.
type DiagnosisResponse struct {
	Provider  string   `json:"provider"`
	Lines     []string `json:"lines"`
	Simulated bool     `json:"simulated"`
}
