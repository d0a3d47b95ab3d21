// Package session holds the in-progress state of one surveillance round:
// the accumulated responses and the controller that drives a round from
// setup through finish.
package session

import (
	"fmt"

	"github.com/f880guardian/audit-engine/pkg/apperrors"
	"github.com/f880guardian/audit-engine/pkg/catalog"
	"github.com/f880guardian/audit-engine/pkg/models"
)

// ResponseUpdate is a partial edit to one question's response. Nil fields are
// "not provided" and retain whatever the prior response held.
type ResponseUpdate struct {
	QuestionID string
	Status     *models.ResponseStatus
	Comment    *string
	ImageURI   *string
}

// ResponseSet accumulates answers for one open round. It enforces at most
// one response per question id: updates replace, never duplicate.
type ResponseSet struct {
	catalog   *catalog.Catalog
	responses map[string]models.Response
}

// NewResponseSet creates an empty accumulator bound to the given catalog.
func NewResponseSet(cat *catalog.Catalog) *ResponseSet {
	return &ResponseSet{
		catalog:   cat,
		responses: make(map[string]models.Response),
	}
}

// Upsert applies a partial update to the response for u.QuestionID. Explicit
// fields overwrite, omitted fields retain their prior values.
func (s *ResponseSet) Upsert(u ResponseUpdate) error {
	if !s.catalog.Contains(u.QuestionID) {
		return fmt.Errorf("%s: %w", u.QuestionID, apperrors.ErrUnknownQuestion)
	}
	if u.Status == nil && u.Comment == nil && u.ImageURI == nil {
		return fmt.Errorf("update for %s must set at least one field", u.QuestionID)
	}
	if u.Status != nil && !models.ValidResponseStatus(*u.Status) {
		return fmt.Errorf("invalid response status: %s", *u.Status)
	}

	s.responses[u.QuestionID] = merge(s.responses[u.QuestionID], u)
	return nil
}

// merge builds the fully-populated response that results from applying u to
// the prior response (if any).
//
// Two deliberate defaulting rules carry over from field use: typing a note on
// an unanswered question marks it passing (an observation, not a finding),
// while attaching a photo to an unanswered question marks it failing (photo
// evidence is assumed to document a finding).
func merge(existing models.Response, u ResponseUpdate) models.Response {
	merged := existing
	merged.QuestionID = u.QuestionID

	if u.Status != nil {
		merged.Status = *u.Status
	}
	if u.Comment != nil {
		merged.Comment = *u.Comment
	}
	if u.ImageURI != nil {
		merged.ImageURI = *u.ImageURI
	}

	if merged.Status == "" {
		switch {
		case u.Comment != nil:
			merged.Status = models.StatusPass
		case u.ImageURI != nil:
			merged.Status = models.StatusFail
		}
	}

	return merged
}

// Get returns the current response for a question id, if one exists.
func (s *ResponseSet) Get(questionID string) (models.Response, bool) {
	r, ok := s.responses[questionID]
	return r, ok
}

// All returns a snapshot of all accumulated responses. Order is unspecified.
func (s *ResponseSet) All() []models.Response {
	out := make([]models.Response, 0, len(s.responses))
	for _, r := range s.responses {
		out = append(out, r)
	}
	return out
}

// Len returns the number of distinct answered questions.
func (s *ResponseSet) Len() int {
	return len(s.responses)
}

// CompletionRatio is answered questions over catalog size, in [0, 1].
func (s *ResponseSet) CompletionRatio() float64 {
	if s.catalog.Size() == 0 {
		return 0
	}
	return float64(len(s.responses)) / float64(s.catalog.Size())
}

// CategoryComplete reports whether every question in the category has been
// answered. A declared category without questions is vacuously complete; an
// undeclared category is not. Drives the per-category completion markers
// during a round.
func (s *ResponseSet) CategoryComplete(category string) bool {
	if !s.catalog.HasCategory(category) {
		return false
	}
	for _, q := range s.catalog.ByCategory(category) {
		if _, ok := s.responses[q.ID]; !ok {
			return false
		}
	}
	return true
}
