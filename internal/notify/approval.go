package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/complyward/kyc-review-platform/internal/review"
	"github.com/complyward/kyc-review-platform/pkg/logging"
)

// ApprovalNotifier emails a compliance reviewer when a run parks at a human
// gate. The email carries the resume token as a link so the decision can be
// made out of band.
type ApprovalNotifier struct {
	sender    EmailSender
	recipient string
	baseURL   string
	logger    *logging.Logger
}

// NewApprovalNotifier creates an approval notifier. Returns nil when no
// recipient is configured so callers can treat notification as optional.
func NewApprovalNotifier(sender EmailSender, recipient, baseURL string, logger *logging.Logger) *ApprovalNotifier {
	if sender == nil || recipient == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ApprovalNotifier{
		sender:    sender,
		recipient: recipient,
		baseURL:   baseURL,
		logger:    logger,
	}
}

var _ review.GateNotifier = (*ApprovalNotifier)(nil)

// NotifyGateOpened sends the approval-request email for a newly gated run.
func (n *ApprovalNotifier) NotifyGateOpened(ctx context.Context, resumeToken string, triage review.TriageResult) error {
	link := n.baseURL
	if link != "" {
		link = fmt.Sprintf("%s/reviews/approve?token=%s", n.baseURL, url.QueryEscape(resumeToken))
	}

	body := fmt.Sprintf(
		"A KYC review is waiting for your decision.\n\n"+
			"Risk score: %d (route: %s)\n\n"+
			"Decision options: approve_edd, request_docs, reject.\n",
		triage.RiskScore, triage.RoutePath,
	)
	if link != "" {
		body += fmt.Sprintf("\nReview and decide: %s\n", link)
	} else {
		body += fmt.Sprintf("\nResume token:\n%s\n", resumeToken)
	}

	msg := EmailMessage{
		To:      n.recipient,
		Subject: fmt.Sprintf("KYC review pending approval (risk %d)", triage.RiskScore),
		Body:    body,
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: approval email failed: %w", err)
	}

	n.logger.Info("approval email sent", "to", n.recipient, "risk_score", triage.RiskScore)
	return nil
}
