package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"epicly/internal/catalog"
	"epicly/internal/inventory"
	"epicly/internal/shared/config"
	"epicly/internal/shared/database"
	"epicly/internal/users"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Epicly Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	pg := s.db.GetPostgreSQL()
	tables := []string{
		"payments",
		"booking_seats",
		"bookings",
		"schedule_seat_state",
		"schedules",
		"seats",
		"sections",
		"events",
		"venues",
		"users",
	}
	for _, table := range tables {
		if err := pg.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	if err := s.seedUsers(); err != nil {
		return err
	}
	venues, err := s.seedVenues()
	if err != nil {
		return err
	}
	sections, err := s.seedSections(venues)
	if err != nil {
		return err
	}
	if err := s.seedSeats(sections); err != nil {
		return err
	}
	events, err := s.seedEvents()
	if err != nil {
		return err
	}
	schedules, err := s.seedSchedules(events, venues, sections)
	if err != nil {
		return err
	}
	return s.seedScheduleSeatStates(schedules)
}

func (s *Seeder) seedUsers() error {
	demo := []users.User{
		{Name: "John Doe", Email: "john@example.com", Phone: "9876543210", Role: users.RoleUser},
		{Name: "Jane Smith", Email: "jane@example.com", Phone: "9876543211", Role: users.RoleUser},
		{Name: "Bob Johnson", Email: "bob@example.com", Phone: "9876543212", Role: users.RoleAdmin},
	}
	if err := s.db.GetPostgreSQL().Create(&demo).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	fmt.Printf("  - %d users\n", len(demo))
	return nil
}

func (s *Seeder) seedVenues() ([]catalog.Venue, error) {
	venues := []catalog.Venue{
		{
			Name:     "PVR Cinemas Phoenix Mall",
			Location: "Phoenix Mall, Whitefield",
			Capacity: 200,
			Address:  "Phoenix Marketcity, Whitefield Road, Bangalore",
			City:     "Bangalore",
			State:    "Karnataka",
		},
		{
			Name:     "Inox Forum Mall",
			Location: "Forum Mall, Koramangala",
			Capacity: 150,
			Address:  "Forum Mall, Koramangala, Bangalore",
			City:     "Bangalore",
			State:    "Karnataka",
		},
		{
			Name:     "Kanteerava Stadium",
			Location: "Kanteerava Stadium",
			Capacity: 25000,
			Address:  "Kanteerava Stadium, Bangalore",
			City:     "Bangalore",
			State:    "Karnataka",
		},
		{
			Name:     "Palace Grounds",
			Location: "Palace Grounds",
			Capacity: 50000,
			Address:  "Palace Grounds, Bangalore",
			City:     "Bangalore",
			State:    "Karnataka",
		},
	}
	if err := s.db.GetPostgreSQL().Create(&venues).Error; err != nil {
		return nil, fmt.Errorf("failed to seed venues: %w", err)
	}
	fmt.Printf("  - %d venues\n", len(venues))
	return venues, nil
}

func (s *Seeder) seedSections(venues []catalog.Venue) ([]catalog.Section, error) {
	var sections []catalog.Section

	// Cinema screens
	for _, venue := range venues[:2] {
		sections = append(sections,
			catalog.Section{VenueID: venue.ID, Name: "Screen 1", Capacity: 100},
			catalog.Section{VenueID: venue.ID, Name: "Screen 2", Capacity: 100},
		)
	}

	// Stadium stands
	sections = append(sections,
		catalog.Section{VenueID: venues[2].ID, Name: "East Stand", Capacity: 8000},
		catalog.Section{VenueID: venues[2].ID, Name: "West Stand", Capacity: 8000},
		catalog.Section{VenueID: venues[2].ID, Name: "North Stand", Capacity: 4500},
		catalog.Section{VenueID: venues[2].ID, Name: "South Stand", Capacity: 4500},
	)

	// Concert grounds
	sections = append(sections,
		catalog.Section{VenueID: venues[3].ID, Name: "VIP Section", Capacity: 5000},
		catalog.Section{VenueID: venues[3].ID, Name: "General Section", Capacity: 45000},
	)

	if err := s.db.GetPostgreSQL().Create(&sections).Error; err != nil {
		return nil, fmt.Errorf("failed to seed sections: %w", err)
	}
	fmt.Printf("  - %d sections\n", len(sections))
	return sections, nil
}

func (s *Seeder) seedSeats(sections []catalog.Section) error {
	var seats []catalog.Seat

	// Cinema seats: rows A-E, premium in the front two rows
	for _, section := range sections[:4] {
		for _, row := range []string{"A", "B", "C", "D", "E"} {
			for num := 1; num <= 20; num++ {
				seatType := catalog.SeatTypeRegular
				price := 200.00
				if row == "A" || row == "B" {
					seatType = catalog.SeatTypePremium
					price = 300.00
				}
				seats = append(seats, catalog.Seat{
					SectionID:  section.ID,
					RowLabel:   row,
					SeatNumber: num,
					SeatType:   seatType,
					BasePrice:  price,
				})
			}
		}
	}

	// Stadium seats: numeric rows, general admission pricing
	for _, section := range sections[4:8] {
		for row := 1; row <= 20; row++ {
			for num := 1; num <= 20; num++ {
				seats = append(seats, catalog.Seat{
					SectionID:  section.ID,
					RowLabel:   fmt.Sprintf("%d", row),
					SeatNumber: num,
					SeatType:   catalog.SeatTypeGeneral,
					BasePrice:  500.00,
				})
			}
		}
	}

	// Concert seats
	for _, section := range sections[8:] {
		seatType := catalog.SeatTypeGeneral
		price := 1000.00
		if section.Name == "VIP Section" {
			seatType = catalog.SeatTypeVIP
			price = 2000.00
		}
		for row := 1; row <= 10; row++ {
			for num := 1; num <= 50; num++ {
				seats = append(seats, catalog.Seat{
					SectionID:  section.ID,
					RowLabel:   fmt.Sprintf("%d", row),
					SeatNumber: num,
					SeatType:   seatType,
					BasePrice:  price,
				})
			}
		}
	}

	if err := s.db.GetPostgreSQL().CreateInBatches(&seats, 1000).Error; err != nil {
		return fmt.Errorf("failed to seed seats: %w", err)
	}
	fmt.Printf("  - %d seats\n", len(seats))
	return nil
}

func (s *Seeder) seedEvents() ([]catalog.Event, error) {
	events := []catalog.Event{
		{
			Title:       "Avengers: Endgame",
			EventType:   catalog.EventTypeMovie,
			Description: "The epic conclusion to the Infinity Saga",
			Language:    "English",
			Genre:       "Action/Adventure",
			DurationMin: 181,
		},
		{
			Title:       "RRR",
			EventType:   catalog.EventTypeMovie,
			Description: "A fictional story about two legendary revolutionaries",
			Language:    "Telugu",
			Genre:       "Action/Drama",
			DurationMin: 187,
		},
		{
			Title:       "Spider-Man: No Way Home",
			EventType:   catalog.EventTypeMovie,
			Description: "Spider-Man's identity is revealed",
			Language:    "English",
			Genre:       "Action/Adventure",
			DurationMin: 148,
		},
		{
			Title:       "Zakir Khan Live",
			EventType:   catalog.EventTypeComedyShow,
			Description: "Stand-up comedy by Zakir Khan",
			Language:    "Hindi",
			Genre:       "Comedy",
			DurationMin: 90,
		},
		{
			Title:       "Bangalore FC vs Mumbai City FC",
			EventType:   catalog.EventTypeSports,
			Description: "ISL Football Match",
			Language:    "English",
			Genre:       "Football",
			DurationMin: 120,
		},
		{
			Title:       "AR Rahman Live Concert",
			EventType:   catalog.EventTypeConcert,
			Description: "Live concert by the Mozart of Madras",
			Language:    "Multi-language",
			Genre:       "Music",
			DurationMin: 180,
		},
	}
	if err := s.db.GetPostgreSQL().Create(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to seed events: %w", err)
	}
	fmt.Printf("  - %d events\n", len(events))
	return events, nil
}

func (s *Seeder) seedSchedules(events []catalog.Event, venues []catalog.Venue, sections []catalog.Section) ([]catalog.Schedule, error) {
	var schedules []catalog.Schedule
	baseTime := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)

	// Movies: multiple shows per day for a week
	for i, event := range events[:3] {
		for dayOffset := 0; dayOffset < 7; dayOffset++ {
			for _, showHour := range []int{10, 14, 18, 21} {
				start := baseTime.Add(time.Duration(dayOffset)*24*time.Hour + time.Duration(showHour)*time.Hour)
				end := start.Add(time.Duration(event.DurationMin+30) * time.Minute)

				venueIdx := i % 2
				sectionIdx := (i * 2) % 4
				if dayOffset%2 == 1 {
					sectionIdx = (sectionIdx + 1) % 4
				}

				schedules = append(schedules, catalog.Schedule{
					EventID:   event.ID,
					VenueID:   venues[venueIdx].ID,
					SectionID: sections[sectionIdx].ID,
					StartTime: start,
					EndTime:   end,
				})
			}
		}
	}

	// Comedy show: three evening slots
	comedy := events[3]
	for _, dayOffset := range []int{5, 12, 19} {
		start := baseTime.Add(time.Duration(dayOffset)*24*time.Hour + 20*time.Hour)
		schedules = append(schedules, catalog.Schedule{
			EventID:   comedy.ID,
			VenueID:   venues[0].ID,
			SectionID: sections[0].ID,
			StartTime: start,
			EndTime:   start.Add(time.Duration(comedy.DurationMin) * time.Minute),
		})
	}

	// Football match in the East Stand
	sports := events[4]
	start := baseTime.Add(10*24*time.Hour + 19*time.Hour)
	schedules = append(schedules, catalog.Schedule{
		EventID:   sports.ID,
		VenueID:   venues[2].ID,
		SectionID: sections[4].ID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(sports.DurationMin) * time.Minute),
	})

	// Concert in the VIP section
	concert := events[5]
	start = baseTime.Add(15*24*time.Hour + 19*time.Hour)
	schedules = append(schedules, catalog.Schedule{
		EventID:   concert.ID,
		VenueID:   venues[3].ID,
		SectionID: sections[8].ID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(concert.DurationMin) * time.Minute),
	})

	if err := s.db.GetPostgreSQL().Create(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to seed schedules: %w", err)
	}
	fmt.Printf("  - %d schedules\n", len(schedules))
	return schedules, nil
}

// seedScheduleSeatStates publishes every schedule: one AVAILABLE state
// row per seat in the schedule's section.
func (s *Seeder) seedScheduleSeatStates(schedules []catalog.Schedule) error {
	ctx := context.Background()
	inventoryRepo := inventory.NewRepository(s.db.GetPostgreSQL())
	catalogRepo := catalog.NewRepository(s.db.GetPostgreSQL())

	total := 0
	for _, schedule := range schedules {
		seats, err := catalogRepo.GetSeatsBySectionID(ctx, schedule.SectionID)
		if err != nil {
			return fmt.Errorf("failed to load seats for section %s: %w", schedule.SectionID, err)
		}

		states := make([]inventory.ScheduleSeatState, 0, len(seats))
		for _, seat := range seats {
			states = append(states, inventory.ScheduleSeatState{
				ScheduleID: schedule.ID,
				SeatID:     seat.ID,
				Status:     inventory.SeatAvailable,
			})
		}
		if err := inventoryRepo.CreateStates(ctx, states); err != nil {
			return fmt.Errorf("failed to seed seat states for schedule %s: %w", schedule.ID, err)
		}
		total += len(states)
	}
	fmt.Printf("  - %d schedule seat states\n", total)
	return nil
}
