package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medwatch/slot-monitor/internal/adapters/database"
	"github.com/medwatch/slot-monitor/internal/adapters/providers/upstream"
	"github.com/medwatch/slot-monitor/internal/application/services"
	"github.com/medwatch/slot-monitor/internal/domain/entities"
	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/postgres"
	"github.com/medwatch/slot-monitor/pkg/config"
)

// One-shot check tool. Three modes:
//
//	-user <id>      run a full tracked check for a stored subscriber
//	-number/-birthday with -snapshot  print current availability, no history
//	-number/-birthday without flags   run a global tracked sweep
func main() {
	var userID int64
	var number string
	var birthday string
	var snapshot bool

	flag.Int64Var(&userID, "user", 0, "Stored subscriber ID to check")
	flag.StringVar(&number, "number", "", "Patient number (policy or card)")
	flag.StringVar(&birthday, "birthday", "", "Patient birthday, YYYY-MM-DD")
	flag.BoolVar(&snapshot, "snapshot", false, "Print live availability without recording state")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup DB
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	// Setup repos and provider. No cache: a one-shot run should always hit
	// the upstream.
	scheduleAdapter := database.NewScheduleAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)
	provider := upstream.NewScheduleProvider(&cfg.Upstream, nil)

	extractor := services.NewAppointmentExtractor(cfg.Monitor.AllowedDoctors, cfg.Monitor.ExcludedPositions)
	tracker := services.NewAppointmentTracker(provider, extractor, scheduleAdapter, cfg.Monitor.DepartmentIDs)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	switch {
	case userID != 0:
		user, err := userAdapter.GetByID(ctx, userID)
		if err != nil {
			log.Fatalf("Failed to load user %d: %v", userID, err)
		}
		if !user.Credentials().Complete() {
			log.Fatalf("User %d has no stored credentials", userID)
		}

		candidates, err := tracker.CheckUser(ctx, user)
		if err != nil {
			log.Fatalf("Check failed: %v", err)
		}
		printCandidates(candidates)
		if err := userAdapter.TouchLastCheck(ctx, userID, time.Now()); err != nil {
			log.Printf("Failed to record check time: %v", err)
		}

	case snapshot:
		creds := credentials(number, birthday)
		result := tracker.LiveSnapshot(ctx, creds)
		log.Printf("Departments polled: %d, appointments available: %d", len(result.Departments), result.Total)
		for _, dept := range result.Departments {
			if !dept.OK {
				log.Printf("Department %d: unavailable", dept.DepartmentID)
				continue
			}
			log.Printf("Department %d: %d candidates", dept.DepartmentID, len(dept.Candidates))
			printCandidates(dept.Candidates)
		}

	default:
		creds := credentials(number, birthday)
		candidates, err := tracker.CheckAll(ctx, creds)
		if err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		printCandidates(candidates)
	}

	log.Printf("Done in %s", time.Since(start))
}

func credentials(number, birthday string) entities.PatientCredentials {
	creds := entities.PatientCredentials{Number: number, Birthday: birthday}
	if !creds.Complete() {
		log.Fatal("Both -number and -birthday are required")
	}
	return creds
}

func printCandidates(candidates []*entities.AppointmentCandidate) {
	if len(candidates) == 0 {
		log.Println("No new appointments")
		return
	}
	for _, c := range candidates {
		log.Printf("%s (%s) on %s at %s, tickets: %d",
			c.DisplayName, c.Position, c.DateString(), c.TimeFrom, c.TicketCount)
	}
}
