package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("time slot is already booked")
)

const dateLayout = "2006-01-02"

type Service struct {
	doctors      DoctorRepository
	appointments AppointmentRepository
}

func NewService(doctors DoctorRepository, appointments AppointmentRepository) *Service {
	return &Service{doctors: doctors, appointments: appointments}
}

// -- Doctors --

func (s *Service) AddDoctor(ctx context.Context, d *Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(d.Specialty) == "" {
		return fmt.Errorf("specialty is required")
	}
	for _, day := range Weekdays {
		if _, ok := d.Availability[day]; !ok {
			return fmt.Errorf("availability template is missing %s", day)
		}
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// -- Slot availability --

// AvailableTimeSlots derives the bookable hourly slots for a doctor on a
// calendar date. An unknown doctor, a day the template marks unavailable, or
// a weekday missing from the template all yield an empty sequence, not an
// error. Only the whole-hour component of the template's start and end times
// is used; slots cover the half-open interval [startHour, endHour).
func (s *Service) AvailableTimeSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]TimeSlot, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	weekday := day.Weekday().String()

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return []TimeSlot{}, nil
		}
		return nil, err
	}

	entry, ok := doctor.Availability[weekday]
	if !ok || !entry.Available {
		return []TimeSlot{}, nil
	}

	startHour, okStart := hourOf(entry.Start)
	endHour, okEnd := hourOf(entry.End)
	if !okStart || !okEnd {
		return []TimeSlot{}, nil
	}

	booked, err := s.appointments.ListByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, 0, max(endHour-startHour, 0))
	for hour := startHour; hour < endHour; hour++ {
		label := fmt.Sprintf("%02d:00", hour)
		taken := false
		for _, a := range booked {
			if a.Time == label && a.Status != StatusCancelled {
				taken = true
				break
			}
		}
		slots = append(slots, TimeSlot{Time: label, Available: !taken})
	}
	return slots, nil
}

// hourOf truncates an "HH:MM" label to its whole-hour component. Minutes are
// discarded: a 09:30 start generates slots from 09:00.
func hourOf(label string) (int, bool) {
	head, _, _ := strings.Cut(label, ":")
	hour, err := strconv.Atoi(head)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// -- Appointments --

// Book creates a scheduled appointment, denormalizing the doctor and patient
// names at booking time. The requested slot must currently be offered as
// available; the storage layer's uniqueness constraint backstops concurrent
// bookings of the same slot.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if _, err := time.Parse(dateLayout, a.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", a.Date)
	}
	if _, ok := hourOf(a.Time); !ok {
		return fmt.Errorf("invalid time %q: expected HH:MM", a.Time)
	}

	doctor, err := s.doctors.GetByID(ctx, a.DoctorID)
	if err != nil {
		return err
	}
	a.DoctorName = doctor.Name
	a.Status = StatusScheduled

	slots, err := s.AvailableTimeSlots(ctx, a.DoctorID, a.Date)
	if err != nil {
		return err
	}
	offered := false
	for _, slot := range slots {
		if slot.Time == a.Time {
			if !slot.Available {
				return ErrSlotTaken
			}
			offered = true
			break
		}
	}
	if !offered {
		return fmt.Errorf("doctor is not available at %s on %s", a.Time, a.Date)
	}

	return s.appointments.Create(ctx, a)
}

// Cancel marks an appointment cancelled. Unknown IDs are a no-op, and
// cancelling twice leaves the status cancelled both times.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	err := s.appointments.UpdateStatus(ctx, id, StatusCancelled)
	if errors.Is(err, ErrAppointmentNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}

func (s *Service) AllAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListAll(ctx, limit, offset)
}
