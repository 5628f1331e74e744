package domain

import "time"

// Location is a GPS fix.
type Location struct {
	Latitude  float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Accuracy  float64   `json:"accuracy,omitempty" validate:"gte=0"`
	Address   string    `json:"address,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Duty is the shift state of a driver.
type Duty struct {
	OnDuty       bool       `json:"on_duty"`
	OnBreak      bool       `json:"on_break"`
	Availability string     `json:"availability"`
	ClockInTime  *time.Time `json:"clock_in_time,omitempty"`
}

// Label returns the human-readable duty state.
func (d Duty) Label() string {
	switch {
	case !d.OnDuty:
		return "Off Duty"
	case d.OnBreak:
		return "On Break"
	case d.Availability == "available":
		return "Available"
	default:
		return "Busy"
	}
}

// Driver is the authenticated driver's profile.
type Driver struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Role             string    `json:"role"`
	VehicleType      string    `json:"vehicle_type,omitempty"`
	VehicleNumber    string    `json:"vehicle_number,omitempty"`
	LicenseNumber    string    `json:"license_number,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	Duty             Duty      `json:"duty"`
	CurrentLocation  *Location `json:"current_location,omitempty"`
}

// ProfileUpdate is the editable part of a driver profile.
type ProfileUpdate struct {
	Name             string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone            string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	VehicleType      string `json:"vehicleType,omitempty" validate:"omitempty,max=50"`
	VehicleNumber    string `json:"vehicleNumber,omitempty" validate:"omitempty,max=30"`
	LicenseNumber    string `json:"licenseNumber,omitempty" validate:"omitempty,max=50"`
	EmergencyContact string `json:"emergencyContact,omitempty" validate:"omitempty,max=100"`
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token        string
	RefreshToken string
	Driver       Driver
	// DriverPayload is the raw driver document, persisted with the session.
	DriverPayload []byte
}
