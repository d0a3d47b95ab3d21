package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/apperrors"
	"github.com/f880guardian/audit-engine/pkg/catalog"
	"github.com/f880guardian/audit-engine/pkg/models"
	"github.com/f880guardian/audit-engine/pkg/scoring"
)

// RecordSaver is the slice of the record store a session needs: commit one
// completed record.
type RecordSaver interface {
	Save(ctx context.Context, record *models.AuditRecord) error
}

// State is the session lifecycle phase.
type State string

const (
	// StateSetup collects auditor name and location before any answers.
	StateSetup State = "SETUP"
	// StateInProgress is the answering phase.
	StateInProgress State = "IN_PROGRESS"
	// StateFinished is terminal; a new round starts a fresh session.
	StateFinished State = "FINISHED"
)

// Session orchestrates one surveillance round end to end. It is one-shot:
// after Finish it cannot be reused.
type Session struct {
	facility    string
	auditorName string
	location    string

	state     State
	responses *ResponseSet
	store     RecordSaver
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates a session in the SETUP state for the given facility.
func New(facility string, cat *catalog.Catalog, store RecordSaver, logger *zap.Logger) *Session {
	return &Session{
		facility:  facility,
		state:     StateSetup,
		responses: NewResponseSet(cat),
		store:     store,
		logger:    logger.Named("session"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Begin transitions SETUP -> IN_PROGRESS. Both auditor name and location must
// be non-empty; the transition stays blocked otherwise.
func (s *Session) Begin(auditorName, location string) error {
	if s.state != StateSetup {
		return fmt.Errorf("begin: %w", s.stateErr())
	}
	if auditorName == "" || location == "" {
		return apperrors.ErrSetupIncomplete
	}
	s.auditorName = auditorName
	s.location = location
	s.state = StateInProgress
	return nil
}

// Answer records or edits one question's response. Only valid while the
// round is in progress.
func (s *Session) Answer(u ResponseUpdate) error {
	if s.state != StateInProgress {
		return fmt.Errorf("answer: %w", s.stateErr())
	}
	return s.responses.Upsert(u)
}

// Response returns the current response for a question id, if any.
func (s *Session) Response(questionID string) (models.Response, bool) {
	return s.responses.Get(questionID)
}

// Progress returns the completion ratio in [0, 1] for display.
func (s *Session) Progress() float64 {
	return s.responses.CompletionRatio()
}

// CategoryComplete reports whether every question in the category has been
// answered.
func (s *Session) CategoryComplete(category string) bool {
	return s.responses.CategoryComplete(category)
}

// LiveScore computes the score over the responses accumulated so far.
func (s *Session) LiveScore() int {
	return scoring.Score(s.responses.All())
}

// Finish completes the round regardless of completion ratio: partial
// submission is allowed. It computes the final score, builds the completed
// record and commits it through the record store. Finish only awaits the
// local durability guarantee; remote replication failures never fail it.
func (s *Session) Finish(ctx context.Context) (*models.AuditRecord, error) {
	if s.state != StateInProgress {
		return nil, fmt.Errorf("finish: %w", s.stateErr())
	}

	responses := s.responses.All()
	record := &models.AuditRecord{
		ID:           s.newID(),
		FacilityName: s.facility,
		Timestamp:    s.now().UnixMilli(),
		AuditorName:  s.auditorName,
		Location:     s.location,
		Responses:    responses,
		Status:       models.AuditCompleted,
		OverallScore: scoring.Score(responses),
	}

	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("commit record: %w", err)
	}

	s.state = StateFinished
	s.logger.Info("Round finished",
		zap.String("record_id", record.ID),
		zap.String("facility", record.FacilityName),
		zap.String("location", record.Location),
		zap.Int("score", record.OverallScore),
		zap.Int("answered", len(responses)))
	return record, nil
}

func (s *Session) stateErr() error {
	if s.state == StateFinished {
		return apperrors.ErrSessionFinished
	}
	return apperrors.ErrSessionState
}
