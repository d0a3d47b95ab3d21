package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/catalog"
	"github.com/f880guardian/audit-engine/pkg/logging"
	"github.com/f880guardian/audit-engine/pkg/models"
)

// User-visible fallback strings. The advisor never returns an error: every
// failure mode maps to one of these so an offline auditor still gets a
// usable record.
const (
	MsgNoDeficiencies  = "Great job! No deficiencies were noted during this round. Continue monitoring to maintain high standards."
	MsgMissingKey      = "API Key missing. Cannot generate AI report."
	MsgMissingKeyImage = "API Key missing."
	MsgSummaryFailed   = "Error communicating with AI service."
	MsgSummaryEmpty    = "Unable to generate summary."
	MsgImageFailed     = "Error analyzing image."
	MsgImageEmpty      = "No analysis available."
)

const summarySystemMessage = "You are an expert Infection Preventionist and QAPI consultant for Long Term Care."

const imagePrompt = "Analyze this image in the context of a Long Term Care facility infection control audit (F880). " +
	"Describe any potential infection risks or breaches in protocol visible. Keep it brief (under 50 words)."

// Advisor produces QAPI summaries and photo-finding descriptions for
// completed audit records. client may be nil when no API key is configured.
type Advisor struct {
	client Client
	logger *zap.Logger
}

// NewAdvisor creates an advisor over the given client.
func NewAdvisor(client Client, logger *zap.Logger) *Advisor {
	return &Advisor{
		client: client,
		logger: logger.Named("advisor"),
	}
}

// Summarize returns a QAPI corrective-action summary (~150 words of
// markdown) for the record's failed items. Records without failures
// short-circuit to a canned message without calling the AI service at all.
func (a *Advisor) Summarize(ctx context.Context, record *models.AuditRecord, cat *catalog.Catalog) string {
	failures := record.FailingResponses()
	if len(failures) == 0 {
		return MsgNoDeficiencies
	}
	if a.client == nil {
		return MsgMissingKey
	}

	var details strings.Builder
	for _, f := range failures {
		q, _ := cat.Question(f.QuestionID)
		notes := f.Comment
		if notes == "" {
			notes = "None"
		}
		fmt.Fprintf(&details, "- Category: %s, Issue: %s, Notes: %s\n", q.Category, q.Text, notes)
	}

	prompt := fmt.Sprintf(`Review the following failed items from a "Process Round" audit conducted at %s - %s.

Failures:
%s
Please provide a concise QAPI summary (approx 150 words) that:
1. Identifies the primary root cause themes (e.g., lack of supplies, behavioral drift, training gap).
2. Cites the relevance to CMS Tag F880 (Infection Control).
3. Suggests 3 specific actionable interventions for the QAPI plan.

Format as valid Markdown.`, record.FacilityName, record.Location, details.String())

	text, err := a.client.Complete(ctx, summarySystemMessage, prompt)
	if err != nil {
		a.logger.Warn("QAPI summary generation failed",
			zap.String("record_id", record.ID),
			zap.String("error", logging.SanitizeError(err)))
		return MsgSummaryFailed
	}
	if text == "" {
		return MsgSummaryEmpty
	}
	return text
}

// DescribeImage returns a short risk description for a piece of photo
// evidence. imageURI may be a bare base64 string or a data URI.
func (a *Advisor) DescribeImage(ctx context.Context, imageURI string) string {
	if a.client == nil {
		return MsgMissingKeyImage
	}

	text, err := a.client.AnalyzeImage(ctx, stripDataURI(imageURI), imagePrompt)
	if err != nil {
		a.logger.Warn("Image analysis failed",
			zap.String("error", logging.SanitizeError(err)))
		return MsgImageFailed
	}
	if text == "" {
		return MsgImageEmpty
	}
	return text
}

// stripDataURI drops a "data:image/jpeg;base64," style prefix, leaving the
// raw base64 payload.
func stripDataURI(uri string) string {
	if i := strings.Index(uri, ","); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
