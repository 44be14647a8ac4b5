package main

import (
	"context"
	"log"
	"os"

	"github.com/medwatch/slot-monitor/internal/infrastructure/clients/postgres"
	"github.com/medwatch/slot-monitor/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping tables before migrating")
		_, err := pgClient.DB().ExecContext(ctx, `
			DROP TABLE IF EXISTS
				notifications,
				schedule_state,
				doctors,
				user_schedules
			CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_schedules (
			user_id                BIGINT PRIMARY KEY,
			username               TEXT NOT NULL DEFAULT '',
			first_name             TEXT NOT NULL DEFAULT '',
			last_name              TEXT NOT NULL DEFAULT '',
			patient_number         TEXT NOT NULL DEFAULT '',
			patient_birthday       TEXT NOT NULL DEFAULT '',
			check_interval_minutes INTEGER NOT NULL DEFAULT 60,
			filter_period_days     INTEGER NOT NULL DEFAULT 14,
			last_check_time        TIMESTAMPTZ,
			is_active              BOOLEAN NOT NULL DEFAULT TRUE,
			notifications_enabled  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS doctors (
			id               TEXT PRIMARY KEY,
			department_id    INTEGER NOT NULL,
			display_name     TEXT NOT NULL DEFAULT '',
			person_id        TEXT NOT NULL DEFAULT '',
			position         TEXT NOT NULL DEFAULT '',
			position_code    TEXT NOT NULL DEFAULT '',
			room             TEXT NOT NULL DEFAULT '',
			facility_name    TEXT NOT NULL DEFAULT '',
			facility_address TEXT NOT NULL DEFAULT '',
			facility_phone   TEXT NOT NULL DEFAULT '',
			separation       TEXT NOT NULL DEFAULT '',
			type             INTEGER NOT NULL DEFAULT 0,
			type_name        TEXT NOT NULL DEFAULT '',
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS schedule_state (
			id                 BIGSERIAL PRIMARY KEY,
			doctor_id          TEXT NOT NULL REFERENCES doctors(id),
			date               DATE NOT NULL,
			ticket_count       INTEGER NOT NULL DEFAULT 0,
			time_from          TEXT NOT NULL DEFAULT '',
			time_to            TEXT NOT NULL DEFAULT '',
			busy_type          TEXT NOT NULL DEFAULT '',
			closest_entry_time TEXT NOT NULL DEFAULT '',
			observed_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_schedule_state_lookup
			ON schedule_state (doctor_id, date, observed_at DESC)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id        TEXT PRIMARY KEY,
			user_id   BIGINT NOT NULL,
			doctor_id TEXT NOT NULL,
			date      DATE NOT NULL,
			kind      TEXT NOT NULL,
			message   TEXT NOT NULL DEFAULT '',
			sent_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_notifications_window
			ON notifications (user_id, doctor_id, date, kind, sent_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pgClient.DB().ExecContext(ctx, stmt); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	log.Println("Migration complete")
}
