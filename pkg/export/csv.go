// Package export renders the completed-record collection as CSV for
// spreadsheet import. It is a pure serialization: no store access, no state.
package export

import (
	"fmt"
	"strings"

	"github.com/f880guardian/audit-engine/pkg/models"
)

var header = []string{
	"Audit ID",
	"Facility Name",
	"Location/Unit",
	"Date",
	"Time",
	"Auditor",
	"Overall Score",
	"Status",
	"Failed Items (IDs)",
	"AI Summary",
}

// CSV serializes records into one deterministic CSV document, one row per
// record in input order. Every text field is quoted with doubled internal
// quotes; the score column is a bare integer.
func CSV(records []*models.AuditRecord) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for i, rec := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		ts := rec.Time().UTC()
		failures := strings.Join(rec.FailingQuestionIDs(), "; ")

		row := []string{
			quote(rec.ID),
			quote(rec.FacilityName),
			quote(rec.Location),
			quote(ts.Format("2006-01-02")),
			quote(ts.Format("15:04:05")),
			quote(rec.AuditorName),
			fmt.Sprintf("%d", rec.OverallScore),
			quote(string(rec.Status)),
			quote(failures),
			quote(rec.AIAnalysis),
		}
		b.WriteString(strings.Join(row, ","))
	}

	return []byte(b.String())
}

// quote wraps a field in double quotes, doubling any internal quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
