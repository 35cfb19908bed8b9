// services/export.go - Tabular export of registrations
package services

import (
	"lanarena/models"
)

// ExportHeader is the column order shared by the CSV and sheets exports.
var ExportHeader = []string{"Team Name", "College", "Captain", "Email", "Phone", "Status", "Date"}

// ExportRows renders the header followed by one row per registration.
func ExportRows(regs []models.Registration) [][]string {
	rows := make([][]string, 0, len(regs)+1)
	rows = append(rows, ExportHeader)
	for _, r := range regs {
		rows = append(rows, []string{
			r.TeamName,
			r.College,
			r.CaptainName,
			r.CaptainEmail,
			r.CaptainPhone,
			string(r.Status),
			r.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return rows
}
