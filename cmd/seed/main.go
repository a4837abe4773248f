package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/medcoda/codepair/internal/adapters/database"
	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/infrastructure/clients/postgres"
	"github.com/medcoda/codepair/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS diagnosis_codes (
	code VARCHAR(16) PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS procedure_codes (
	code VARCHAR(16) PRIMARY KEY,
	description TEXT NOT NULL,
	short_description TEXT
);

CREATE TABLE IF NOT EXISTS confirmed_pairs (
	id UUID PRIMARY KEY,
	diagnosis_code VARCHAR(16) NOT NULL,
	diagnosis_description TEXT NOT NULL,
	diagnosis_category TEXT NOT NULL,
	procedure_code VARCHAR(16) NOT NULL,
	procedure_description TEXT NOT NULL,
	procedure_category TEXT NOT NULL,
	relationship TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	source VARCHAR(32) NOT NULL,
	confirmed_at TIMESTAMPTZ NOT NULL,
	UNIQUE (diagnosis_code, procedure_code)
);

CREATE INDEX IF NOT EXISTS idx_confirmed_pairs_diagnosis_category
	ON confirmed_pairs (diagnosis_category);
CREATE INDEX IF NOT EXISTS idx_confirmed_pairs_procedure_category
	ON confirmed_pairs (procedure_category);

CREATE TABLE IF NOT EXISTS audit_records (
	id UUID PRIMARY KEY,
	diagnosis_code VARCHAR(16) NOT NULL,
	procedure_code VARCHAR(16) NOT NULL,
	decision VARCHAR(16) NOT NULL,
	confidence_percent DOUBLE PRECISION NOT NULL,
	reasoning TEXT NOT NULL,
	source VARCHAR(32) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	review_status VARCHAR(16) NOT NULL,
	review_notes TEXT,
	UNIQUE (diagnosis_code, procedure_code)
);
`

type seedPair struct {
	diagnosis    string
	procedure    string
	relationship string
	confidence   float64
}

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
		log.Println("RESET_DB=true detected, dropping tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			DROP TABLE IF EXISTS
				audit_records,
				confirmed_pairs,
				diagnosis_codes,
				procedure_codes
			CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("Schema ready")

	// 1. Seed diagnosis codes (ICD-10-AM)
	diagnoses := map[string]string{
		"A00.9":  "Cholera, unspecified",
		"A90":    "Dengue fever [classical dengue]",
		"I10":    "Essential (primary) hypertension",
		"J18.9":  "Pneumonia, unspecified organism",
		"J45.0":  "Predominantly allergic asthma",
		"K02.9":  "Dental caries, unspecified",
		"K29.70": "Gastritis, unspecified, without bleeding",
		"R07.3":  "Other chest pain",
		"R10.4":  "Other and unspecified abdominal pain",
	}
	for code, description := range diagnoses {
		_, err := pgClient.DB().ExecContext(ctx,
			`INSERT INTO diagnosis_codes (code, description) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			code, description,
		)
		if err != nil {
			log.Printf("Failed to seed diagnosis %s: %v", code, err)
		}
	}

	// 2. Seed procedure codes (ACHI)
	procedures := map[string][2]string{
		"13100-00": {"Haemodialysis", "Haemodialysis"},
		"16520-00": {"Management of vaginal delivery", "Vaginal delivery"},
		"30473-00": {"Panendoscopy to duodenum", "Gastroscopy"},
		"55130-00": {"Ultrasound of abdomen", "Abdominal ultrasound"},
		"92043-00": {"Electrocardiography [ECG]", "ECG"},
		"92209-00": {"Management of noninvasive ventilatory support", "Noninvasive ventilation"},
		"92498-00": {"Intravenous rehydration", "IV rehydration"},
	}
	for code, descs := range procedures {
		_, err := pgClient.DB().ExecContext(ctx,
			`INSERT INTO procedure_codes (code, description, short_description) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			code, descs[0], descs[1],
		)
		if err != nil {
			log.Printf("Failed to seed procedure %s: %v", code, err)
		}
	}

	// 3. Seed confirmed pairs. These feed both the exact-match fast path and
	// category retrieval for first-time pairs.
	referenceRepo := database.NewReferenceAdapter(pgClient)
	pairs := []seedPair{
		{"J45.0", "92209-00", "Noninvasive ventilatory support treats acute asthma exacerbation with respiratory distress", 0.95},
		{"J18.9", "55130-00", "Abdominal ultrasound investigates suspected complications alongside pneumonia workup", 0.80},
		{"I10", "13100-00", "Haemodialysis is indicated when hypertension coexists with renal failure", 0.82},
		{"A00.9", "92498-00", "Intravenous rehydration is the primary treatment for cholera fluid loss", 0.90},
		{"R10.4", "30473-00", "Panendoscopy investigates unexplained abdominal pain", 0.72},
		{"K29.70", "30473-00", "Gastroscopy is the standard diagnostic procedure for gastritis", 0.93},
	}

	seeded := 0
	for _, p := range pairs {
		diagnosis, err := referenceRepo.GetDiagnosisCode(ctx, p.diagnosis)
		if err != nil {
			log.Printf("Skipping pair %s/%s: %v", p.diagnosis, p.procedure, err)
			continue
		}
		procedure, err := referenceRepo.GetProcedureCode(ctx, p.procedure)
		if err != nil {
			log.Printf("Skipping pair %s/%s: %v", p.diagnosis, p.procedure, err)
			continue
		}

		pair := &entities.ConfirmedPair{
			ID:                   uuid.New().String(),
			DiagnosisCode:        diagnosis.Code,
			DiagnosisDescription: diagnosis.Description,
			DiagnosisCategory:    diagnosis.Category,
			ProcedureCode:        procedure.Code,
			ProcedureDescription: procedure.Description,
			ProcedureCategory:    procedure.Category,
			Relationship:         p.relationship,
			Confidence:           p.confidence,
			Source:               entities.PairSourceSeed,
			ConfirmedAt:          time.Now(),
		}
		if err := referenceRepo.CreateConfirmedPair(ctx, pair); err != nil {
			log.Printf("Failed to seed pair %s/%s: %v", p.diagnosis, p.procedure, err)
			continue
		}
		seeded++
	}

	log.Printf("Seeding complete: %d diagnosis codes, %d procedure codes, %d confirmed pairs",
		len(diagnoses), len(procedures), seeded)
}
