// internal/notify/notify.go
//
// Admin notification and user confirmation for accepted submissions.
//
// Context
// -------
// By the time Notify runs the submission is stored, so nothing here may
// fail the request.  Notify sends the admin email first and the user
// confirmation second.  Each send is independent: an error is logged,
// counted in notification_failures_total, and the next send still runs.
//
// Notes
// -----
// • Sends are bounded by the caller's context.  The forms handler detaches
//   that context from the request so a client disconnect does not cancel
//   mail already in flight.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/yanizio/perks/internal/form"
	"github.com/yanizio/perks/internal/logger"
	"github.com/yanizio/perks/internal/message"
	"github.com/yanizio/perks/internal/metrics"
	"github.com/yanizio/perks/internal/sanitize"
	"github.com/yanizio/perks/internal/submission"
)

// Recipient label values for NotificationFailuresTotal.
const (
	RecipientAdmin = "admin"
	RecipientUser  = "user"
)

// Notifier renders and sends submission emails.
type Notifier struct {
	sender message.Sender
	admin  string
}

// New returns a Notifier that mails admin notifications to adminAddr.
func New(sender message.Sender, adminAddr string) *Notifier {
	return &Notifier{sender: sender, admin: adminAddr}
}

// Notify attempts the admin email and then the user email.  It never
// returns an error.
func (n *Notifier) Notify(ctx context.Context, sub *submission.Submission) {
	n.report(ctx, sub, RecipientAdmin, n.NotifyAdmin(ctx, sub))
	n.report(ctx, sub, RecipientUser, n.NotifyUser(ctx, sub))
}

func (n *Notifier) report(ctx context.Context, sub *submission.Submission, recipient string, err error) {
	if err == nil {
		return
	}
	metrics.NotificationFailuresTotal.WithLabelValues(string(sub.Kind), recipient).Inc()
	logger.FromContext(ctx).Errorw("notification failed",
		"form", sub.Kind, "submission_id", sub.ID, "recipient", recipient, "err", err)
}

// NotifyAdmin sends the field listing to the admin address.
func (n *Notifier) NotifyAdmin(ctx context.Context, sub *submission.Submission) error {
	def, ok := form.Lookup(sub.Kind)
	if !ok {
		return fmt.Errorf("notify: unknown form kind %q", sub.Kind)
	}

	view := adminView{
		Label:     def.Label,
		ID:        sub.ID,
		CreatedAt: sub.CreatedAt.UTC().Format(time.RFC1123),
	}
	for _, name := range def.Fields {
		v, ok := sub.Fields[name]
		if !ok || v == "" {
			continue
		}
		view.Fields = append(view.Fields, field{Name: name, Text: sanitize.Text(v), HTML: safeHTML(v)})
	}

	text, err := render(adminText, view)
	if err != nil {
		return fmt.Errorf("render admin text: %w", err)
	}
	html, err := render(adminHTML, view)
	if err != nil {
		return fmt.Errorf("render admin html: %w", err)
	}

	return n.sender.Send(ctx, message.Email{
		To:      []string{n.admin},
		ReplyTo: replyTo(sub),
		Subject: fmt.Sprintf("New %s submission", def.Label),
		Text:    text,
		HTML:    html,
	})
}

// NotifyUser sends the confirmation to the submitter's email field.
func (n *Notifier) NotifyUser(ctx context.Context, sub *submission.Submission) error {
	to := replyTo(sub)
	if to == "" {
		return fmt.Errorf("notify: submission %s has no email", sub.ID)
	}
	c, ok := userCopies[sub.Kind]
	if !ok {
		return fmt.Errorf("notify: no confirmation copy for %q", sub.Kind)
	}

	name := sub.Fields[c.NameField]
	view := userView{NameText: sanitize.Text(name), NameHTML: safeHTML(name), Body: c.Body}

	text, err := render(userText, view)
	if err != nil {
		return fmt.Errorf("render user text: %w", err)
	}
	html, err := render(userHTML, view)
	if err != nil {
		return fmt.Errorf("render user html: %w", err)
	}

	return n.sender.Send(ctx, message.Email{
		To:      []string{to},
		Subject: c.Subject,
		Text:    text,
		HTML:    html,
	})
}

// replyTo returns the submitter's address as stored.  Plain fields are
// entity-escaped by the sanitizer, so decode before use as an address.
func replyTo(sub *submission.Submission) string {
	return sanitize.Text(sub.Fields["email"])
}
