package documents

import "github.com/hilthontt/doctrack/internal/domain"

// logEntryResponse keeps the column names of the history sheet.
type logEntryResponse struct {
	Action        string `json:"Action"`
	Date          string `json:"Date"`
	InTime        string `json:"InTime"`
	Place         string `json:"Place"`
	OutTime       string `json:"OutTime"`
	PreviousPlace string `json:"PreviousPlace"`
	PreviousTime  string `json:"PreviousTime"`
	PreviousDate  string `json:"PreviousDate"`
}

func newLogEntryResponse(e domain.AuditEntry) logEntryResponse {
	return logEntryResponse{
		Action:        string(e.Action),
		Date:          e.Date,
		InTime:        e.InTime,
		Place:         e.Place,
		OutTime:       e.OutTime,
		PreviousPlace: e.PreviousPlace,
		PreviousTime:  e.PreviousTime,
		PreviousDate:  e.PreviousDate,
	}
}
