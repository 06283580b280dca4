// Package seed loads a small demo dataset so a fresh environment has
// something to click through: a demo patient and admin, three doctors with
// weekly availability templates, one scheduled appointment, and a starter
// medicine catalog.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carebook/carebook/internal/domain/identity"
	"github.com/carebook/carebook/internal/domain/pharmacy"
	"github.com/carebook/carebook/internal/domain/scheduling"
	"github.com/carebook/carebook/internal/platform/auth"
)

type Seeder struct {
	identity   *identity.Service
	scheduling *scheduling.Service
	pharmacy   *pharmacy.Service
}

func NewSeeder(id *identity.Service, sched *scheduling.Service, pharm *pharmacy.Service) *Seeder {
	return &Seeder{identity: id, scheduling: sched, pharmacy: pharm}
}

// Result counts what a seeding run created.
type Result struct {
	Users        int
	Doctors      int
	Appointments int
	Medicines    int
}

func workweek(start, end string, saturday scheduling.DayAvailability, overrides map[string]scheduling.DayAvailability) scheduling.WeeklyAvailability {
	tmpl := scheduling.WeeklyAvailability{
		"Monday":    {Start: start, End: end, Available: true},
		"Tuesday":   {Start: start, End: end, Available: true},
		"Wednesday": {Start: start, End: end, Available: true},
		"Thursday":  {Start: start, End: end, Available: true},
		"Friday":    {Start: start, End: end, Available: true},
		"Saturday":  saturday,
		"Sunday":    {Start: "00:00", End: "00:00", Available: false},
	}
	for day, entry := range overrides {
		tmpl[day] = entry
	}
	return tmpl
}

func (s *Seeder) seedDoctors(ctx context.Context) ([]*scheduling.Doctor, error) {
	doctors := []*scheduling.Doctor{
		{
			Name:      "Dr. Jane Smith",
			Specialty: "Cardiologist",
			Image:     "/placeholder.svg",
			Bio:       "Dr. Smith is a board-certified cardiologist with over 15 years of experience in treating heart conditions.",
			Availability: workweek("09:00", "17:00",
				scheduling.DayAvailability{Start: "10:00", End: "14:00", Available: false},
				map[string]scheduling.DayAvailability{
					"Friday": {Start: "09:00", End: "15:00", Available: true},
				}),
		},
		{
			Name:      "Dr. Robert Chen",
			Specialty: "Dermatologist",
			Image:     "/placeholder.svg",
			Bio:       "Dr. Chen specializes in treating skin conditions and has a special interest in pediatric dermatology.",
			Availability: workweek("08:00", "16:00",
				scheduling.DayAvailability{Start: "09:00", End: "13:00", Available: true},
				map[string]scheduling.DayAvailability{
					"Wednesday": {Start: "08:00", End: "16:00", Available: false},
				}),
		},
		{
			Name:      "Dr. Maria Garcia",
			Specialty: "Pediatrician",
			Image:     "/placeholder.svg",
			Bio:       "Dr. Garcia has been practicing pediatric medicine for 10 years and is passionate about child healthcare.",
			Availability: workweek("09:00", "17:00",
				scheduling.DayAvailability{Start: "09:00", End: "13:00", Available: false},
				map[string]scheduling.DayAvailability{
					"Thursday": {Start: "09:00", End: "17:00", Available: false},
				}),
		},
	}
	for _, d := range doctors {
		if err := s.scheduling.AddDoctor(ctx, d); err != nil {
			return nil, fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
	}
	return doctors, nil
}

func (s *Seeder) seedMedicines(ctx context.Context) (int, error) {
	desc := func(text string) *string { return &text }
	medicines := []*pharmacy.Medicine{
		{Name: "Paracetamol 500mg", Description: desc("Pain reliever and fever reducer."), Price: decimal.RequireFromString("5.99"), Stock: 250},
		{Name: "Ibuprofen 200mg", Description: desc("Non-steroidal anti-inflammatory."), Price: decimal.RequireFromString("7.49"), Stock: 180},
		{Name: "Cetirizine 10mg", Description: desc("Antihistamine for allergy relief."), Price: decimal.RequireFromString("9.25"), Stock: 120},
		{Name: "Amoxicillin 250mg", Description: desc("Broad-spectrum antibiotic capsules."), Price: decimal.RequireFromString("12.80"), Stock: 60},
		{Name: "Vitamin D3 1000IU", Description: desc("Daily vitamin D supplement."), Price: decimal.RequireFromString("14.50"), Stock: 300},
	}
	for _, m := range medicines {
		if err := s.pharmacy.AddMedicine(ctx, m); err != nil {
			return 0, fmt.Errorf("seed medicine %s: %w", m.Name, err)
		}
	}
	return len(medicines), nil
}

// Run loads the demo dataset. It is not idempotent; run it against an empty
// database.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	admin, _, err := s.identity.Register(ctx, "admin@carebook.local", "Admin User", "admin12345", auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	patient, _, err := s.identity.Register(ctx, "patient@carebook.local", "Patient User", "patient12345", auth.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("seed patient: %w", err)
	}
	res.Users = 2
	log.Info().Str("admin", admin.Email).Str("patient", patient.Email).Msg("seeded demo accounts")

	doctors, err := s.seedDoctors(ctx)
	if err != nil {
		return nil, err
	}
	res.Doctors = len(doctors)

	// One scheduled appointment next Monday at 10:00 with the first doctor.
	nextMonday := time.Now()
	for nextMonday.Weekday() != time.Monday {
		nextMonday = nextMonday.AddDate(0, 0, 1)
	}
	appt := &scheduling.Appointment{
		DoctorID:    doctors[0].ID,
		PatientID:   patient.ID,
		PatientName: patient.Name,
		Date:        nextMonday.Format("2006-01-02"),
		Time:        "10:00",
	}
	if err := s.scheduling.Book(ctx, appt); err != nil {
		return nil, fmt.Errorf("seed appointment: %w", err)
	}
	res.Appointments = 1

	res.Medicines, err = s.seedMedicines(ctx)
	if err != nil {
		return nil, err
	}

	return res, nil
}
