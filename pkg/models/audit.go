// Package models defines the domain types for facility compliance audits.
// JSON tags match the wire shape of records stored in the remote sheet, so
// records written by older clients round-trip unchanged.
package models

import "time"

// ResponseStatus is the auditor's verdict on a single checklist question.
type ResponseStatus string

const (
	StatusPass          ResponseStatus = "pass"
	StatusFail          ResponseStatus = "fail"
	StatusNotApplicable ResponseStatus = "na"
)

// ValidResponseStatus reports whether s is one of the three known statuses.
func ValidResponseStatus(s ResponseStatus) bool {
	switch s {
	case StatusPass, StatusFail, StatusNotApplicable:
		return true
	}
	return false
}

// AuditStatus tracks the lifecycle of an AuditRecord. Only completed records
// are persisted and shown in history or dashboards.
type AuditStatus string

const (
	AuditInProgress AuditStatus = "IN_PROGRESS"
	AuditCompleted  AuditStatus = "COMPLETED"
)

// ComplianceRating is the three-tier band a score falls into.
type ComplianceRating string

const (
	RatingRed    ComplianceRating = "RED"    // score < 80
	RatingYellow ComplianceRating = "YELLOW" // 80 <= score < 95
	RatingGreen  ComplianceRating = "GREEN"  // score >= 95
)

// Question is one checklist item. The catalog is fixed at process start and
// never mutated.
type Question struct {
	ID       string `json:"id" yaml:"id"`
	Category string `json:"category" yaml:"category"`
	Text     string `json:"text" yaml:"text"`
}

// Response is one auditor's answer to one catalog question within a session.
// At most one Response exists per question id.
type Response struct {
	QuestionID string         `json:"questionId"`
	Status     ResponseStatus `json:"status"`
	Comment    string         `json:"comment,omitempty"`
	ImageURI   string         `json:"imageUri,omitempty"` // base64 data URI of photo evidence
}

// AuditRecord is the unit of persistence: one completed surveillance round.
// OverallScore is computed once at completion; AIAnalysis is the only field
// that may change afterwards.
type AuditRecord struct {
	ID           string      `json:"id"`
	FacilityName string      `json:"facilityName"`
	Timestamp    int64       `json:"timestamp"` // unix milliseconds
	AuditorName  string      `json:"auditorName"`
	Location     string      `json:"location"`
	Responses    []Response  `json:"responses"`
	Status       AuditStatus `json:"status"`
	OverallScore int         `json:"overallScore"`
	AIAnalysis   string      `json:"aiAnalysis,omitempty"`
}

// Time returns the record's creation instant.
func (r *AuditRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// FailingQuestionIDs returns the question ids of all failed responses, in
// response order.
func (r *AuditRecord) FailingQuestionIDs() []string {
	var ids []string
	for _, resp := range r.Responses {
		if resp.Status == StatusFail {
			ids = append(ids, resp.QuestionID)
		}
	}
	return ids
}

// FailingResponses returns the failed responses, in response order.
func (r *AuditRecord) FailingResponses() []Response {
	var out []Response
	for _, resp := range r.Responses {
		if resp.Status == StatusFail {
			out = append(out, resp)
		}
	}
	return out
}
