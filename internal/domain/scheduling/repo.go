package scheduling

import (
	"context"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
