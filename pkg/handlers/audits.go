package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/ai"
	"github.com/f880guardian/audit-engine/pkg/apperrors"
	"github.com/f880guardian/audit-engine/pkg/catalog"
	"github.com/f880guardian/audit-engine/pkg/models"
	"github.com/f880guardian/audit-engine/pkg/session"
)

// AuditSubmission is one complete surveillance round submitted by a client.
// Responses follow the accumulator's partial-update semantics: omitted
// fields stay unset and the comment/image defaulting rules apply.
type AuditSubmission struct {
	AuditorName  string            `json:"auditorName"`
	Location     string            `json:"location"`
	FacilityName string            `json:"facilityName"`
	Responses    []ResponsePayload `json:"responses"`
}

// ResponsePayload is one answer within a submission.
type ResponsePayload struct {
	QuestionID string                 `json:"questionId"`
	Status     *models.ResponseStatus `json:"status,omitempty"`
	Comment    *string                `json:"comment,omitempty"`
	ImageURI   *string                `json:"imageUri,omitempty"`
}

// AuditsHandler accepts audit submissions and drives a session through
// setup, answering and finish.
type AuditsHandler struct {
	saver           session.RecordSaver
	advisor         *ai.Advisor
	catalog         *catalog.Catalog
	defaultFacility string
	logger          *zap.Logger
}

// NewAuditsHandler creates a new AuditsHandler.
func NewAuditsHandler(
	saver session.RecordSaver,
	advisor *ai.Advisor,
	cat *catalog.Catalog,
	defaultFacility string,
	logger *zap.Logger,
) *AuditsHandler {
	return &AuditsHandler{
		saver:           saver,
		advisor:         advisor,
		catalog:         cat,
		defaultFacility: defaultFacility,
		logger:          logger.Named("audits-handler"),
	}
}

// RegisterRoutes registers the audit submission route on the given mux.
func (h *AuditsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/audits", h.Submit)
}

// Submit handles POST /api/audits. Partial rounds are accepted: completion
// ratio is not enforced, only the setup gate is. The response is the saved
// record, already scored.
func (h *AuditsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub AuditSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "malformed audit submission")
		return
	}

	facility := sub.FacilityName
	if facility == "" {
		facility = h.defaultFacility
	}

	sess := session.New(facility, h.catalog, h.saver, h.logger)

	if err := sess.Begin(sub.AuditorName, sub.Location); err != nil {
		if errors.Is(err, apperrors.ErrSetupIncomplete) {
			_ = ErrorResponse(w, http.StatusUnprocessableEntity, "setup_incomplete", err.Error())
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to start session")
		return
	}

	for _, p := range sub.Responses {
		err := sess.Answer(session.ResponseUpdate{
			QuestionID: p.QuestionID,
			Status:     p.Status,
			Comment:    p.Comment,
			ImageURI:   p.ImageURI,
		})
		if err != nil {
			_ = ErrorResponse(w, http.StatusUnprocessableEntity, "invalid_response", err.Error())
			return
		}
		h.autoAnalyzeImage(r, sess, p.QuestionID)
	}

	record, err := sess.Finish(r.Context())
	if err != nil {
		h.logger.Error("Failed to finish submitted round", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to save audit record")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to encode audit response", zap.Error(err))
	}
}

// autoAnalyzeImage fills in the notes for a photo finding that arrived
// without any. The AI description becomes the response comment; the applied
// status (usually the photo's fail default) is left untouched. Applying the
// description can only fail for a question the accumulator already accepted,
// so the error is logged, not surfaced.
func (h *AuditsHandler) autoAnalyzeImage(r *http.Request, sess *session.Session, questionID string) {
	resp, ok := sess.Response(questionID)
	if !ok || resp.ImageURI == "" || resp.Comment != "" {
		return
	}

	description := h.advisor.DescribeImage(r.Context(), resp.ImageURI)
	err := sess.Answer(session.ResponseUpdate{
		QuestionID: questionID,
		Comment:    &description,
	})
	if err != nil {
		h.logger.Warn("Failed to attach image analysis",
			zap.String("question_id", questionID),
			zap.Error(err))
	}
}
