// import-registrations loads a JSON export of registrations (an array of
// registration rows) into the database. Rows whose id already exists are skipped.
//
//	import-registrations -file ./data/registrations.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"lanarena/config"
	"lanarena/database"
	"lanarena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type exportedRegistration struct {
	ID           string    `json:"id"`
	TeamName     string    `json:"team_name"`
	College      string    `json:"college"`
	CaptainName  string    `json:"captain_name"`
	CaptainUID   string    `json:"captain_uid"`
	CaptainEmail string    `json:"captain_email"`
	CaptainPhone string    `json:"captain_phone"`
	TeamMembers  []string  `json:"team_members"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	CollegeIDURL *string   `json:"college_id_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func main() {
	file := flag.String("file", "./data/registrations.json", "JSON array of registrations")
	batch := flag.Int("batch", 500, "rows per insert")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("FATAL: ", err)
	}
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.CloseDB()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to read JSON file: ", err)
	}
	defer f.Close()

	regs, skipped, err := decodeRegistrations(f)
	if err != nil {
		log.Fatal("Failed to parse JSON: ", err)
	}
	fmt.Printf("Found %d registrations (%d unusable)\n", len(regs), skipped)

	inserted, err := importRegistrations(db, regs, *batch)
	if err != nil {
		log.Fatal("Failed to insert registrations: ", err)
	}
	fmt.Printf("✅ Imported %d registrations, %d already present\n", inserted, len(regs)-int(inserted))
}

// decodeRegistrations reads the export and drops rows missing required fields.
func decodeRegistrations(r io.Reader) ([]models.Registration, int, error) {
	var rows []exportedRegistration
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, 0, err
	}

	out := make([]models.Registration, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if strings.TrimSpace(row.TeamName) == "" || strings.TrimSpace(row.CaptainEmail) == "" {
			skipped++
			continue
		}
		status := models.RegistrationStatus(strings.ToLower(row.Status))
		if !status.Valid() {
			status = models.RegistrationPending
		}
		members := row.TeamMembers
		if members == nil {
			members = []string{}
		}
		out = append(out, models.Registration{
			ID:           row.ID,
			TeamName:     row.TeamName,
			College:      row.College,
			CaptainName:  row.CaptainName,
			CaptainUID:   row.CaptainUID,
			CaptainEmail: row.CaptainEmail,
			CaptainPhone: row.CaptainPhone,
			TeamMembers:  members,
			Status:       status,
			Notes:        row.Notes,
			CollegeIDURL: row.CollegeIDURL,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return out, skipped, nil
}

func importRegistrations(db *gorm.DB, regs []models.Registration, batch int) (int64, error) {
	if len(regs) == 0 {
		return 0, nil
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&regs, batch)
	return res.RowsAffected, res.Error
}
