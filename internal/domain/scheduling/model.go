package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// DayAvailability is one weekday entry of a doctor's weekly template. When
// Available is false the start/end times carry no meaning for slot
// generation.
type DayAvailability struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// WeeklyAvailability maps weekday names (Monday through Sunday, all seven
// keys) to working hours. Stored as a single JSONB document.
type WeeklyAvailability map[string]DayAvailability

// Weekdays lists the required template keys in calendar order.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	Name         string             `db:"name" json:"name"`
	Specialty    string             `db:"specialty" json:"specialty"`
	Image        string             `db:"image" json:"image"`
	Bio          string             `db:"bio" json:"bio"`
	Availability WeeklyAvailability `db:"availability" json:"availability"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}

// Appointment statuses. Nothing transitions to completed; the value exists
// for parity with the stored status set.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validAppointmentStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
}

// Appointment maps to the appointment table. Doctor and patient names are
// denormalized at booking time and never re-synced.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	Date        string    `db:"date" json:"date"` // YYYY-MM-DD
	Time        string    `db:"time" json:"time"` // HH:MM
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimeSlot is derived, never persisted: one bookable hourly interval for a
// doctor on a given date.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
