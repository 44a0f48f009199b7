// components/forms/forms.go
//
// Public form endpoints: contact, partner, and lead.
//
// Workflow
// --------
//   decode → validate → verify token → rate check → sanitize → store →
//   log attempt → notify → respond
//
// Every gate short-circuits with its own status:
//
//   400  malformed body, or {error, details} for field violations
//   403  attestation token not verified
//   429  over the per-address cap, with retryAfter
//   400  store failure, carrying the store's message
//   200  {message, data: [record]}
//
// Notes
// -----
// • The submission log entry is written only after the record is stored,
//   so rejected posts never count toward the cap.
// • Notification runs on a context detached from the request; a client
//   that hangs up after the insert still gets its emails sent.
//
//------------------------------------------------------------------------------

package forms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/perks/internal/component"
	"github.com/yanizio/perks/internal/form"
	"github.com/yanizio/perks/internal/httpx"
	"github.com/yanizio/perks/internal/logger"
	"github.com/yanizio/perks/internal/metrics"
	"github.com/yanizio/perks/internal/requestinfo"
	"github.com/yanizio/perks/internal/sanitize"
	"github.com/yanizio/perks/internal/submission"
)

// RetryAfterSeconds is the cooldown hint sent with every 429.
const RetryAfterSeconds = 3600

// notifyTimeout bounds both emails together once the request has been
// detached.
const notifyTimeout = time.Minute

/*──────────────────────────── collaborators ────────────────────────────────*/

type verifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

type limiter interface {
	Allow(ctx context.Context, address, endpoint string) bool
	Record(ctx context.Context, address, endpoint string)
}

type recorder interface {
	Record(ctx context.Context, kind form.Kind, fields map[string]string) (*submission.Submission, error)
}

type notifier interface {
	Notify(ctx context.Context, sub *submission.Submission)
}

/*──────────────────────────── component ────────────────────────────────────*/

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves POST /api/{contact,partner,lead}.
type Component struct {
	verify  verifier
	limit   limiter
	store   recorder
	notify  notifier
	maxBody int64
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "forms" }

// Migrations returns the submission and submission-log tables.
func (c *Component) Migrations(driver string) []string { return submission.Schema(driver) }

// Init wires the shared services.
func (c *Component) Init(svc component.Services) error {
	if svc.Config == nil || svc.Verifier == nil || svc.Limiter == nil ||
		svc.Submissions == nil || svc.Notifier == nil {
		return errors.New("forms: missing services")
	}
	c.verify = svc.Verifier
	c.limit = svc.Limiter
	c.store = svc.Submissions
	c.notify = svc.Notifier
	c.maxBody = svc.Config.HTTP.MaxBodyBytes
	return nil
}

// Routes adds one create endpoint per form kind.
func (c *Component) Routes(r chi.Router) {
	for _, kind := range form.Kinds() {
		r.Post("/api/"+string(kind), c.create(kind))
	}
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── handler ──────────────────────────────────────*/

func (c *Component) create(kind form.Kind) http.HandlerFunc {
	def, _ := form.Lookup(kind)
	endpoint := string(kind)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		addr := requestinfo.AddressFrom(r)
		log := logger.FromContext(ctx).With("form", endpoint, "client_address", addr)
		outcome := func(o string) { metrics.FormSubmissionsTotal.WithLabelValues(endpoint, o).Inc() }

		raw, err := form.DecodeBody(w, r, c.maxBody)
		if err != nil {
			outcome(metrics.OutcomeInvalid)
			httpx.Error(ctx, w, http.StatusBadRequest, err.Error())
			return
		}

		clean, err := form.Validate(kind, raw)
		if ve, ok := form.AsValidationError(err); ok {
			outcome(metrics.OutcomeInvalid)
			httpx.WriteJSON(ctx, w, http.StatusBadRequest, httpx.ErrorBody{
				Error:   ve.Error(),
				Details: ve.Fields,
			})
			return
		}

		if !c.verify.Verify(ctx, clean.Token, addr) {
			outcome(metrics.OutcomeUnverified)
			httpx.Error(ctx, w, http.StatusForbidden, "reCAPTCHA verification failed")
			return
		}

		if !c.limit.Allow(ctx, addr, endpoint) {
			outcome(metrics.OutcomeRateLimited)
			log.Infow("submission rate limited")
			httpx.WriteJSON(ctx, w, http.StatusTooManyRequests, httpx.ErrorBody{
				Error:      "Too many submissions. Please try again later.",
				RetryAfter: RetryAfterSeconds,
			})
			return
		}

		fields := sanitize.Fields(clean.Fields, def.IsRich)

		sub, err := c.store.Record(ctx, kind, fields)
		if err != nil {
			outcome(metrics.OutcomeStoreFailed)
			log.Errorw("store submission", "duplicate", submission.IsDuplicate(err), "err", err)
			httpx.Error(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
		c.limit.Record(ctx, addr, endpoint)
		outcome(metrics.OutcomeAccepted)

		logKV := []any{"submission_id", sub.ID}
		if info := requestinfo.FromContext(ctx); info != nil {
			logKV = append(logKV, "bot", info.UA.IsBot, "country", info.Geo.CountryISO)
		}
		log.Infow("submission accepted", logKV...)

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		c.notify.Notify(nctx, sub)
		cancel()

		httpx.WriteJSON(ctx, w, http.StatusOK, httpx.MessageBody{
			Message: def.Label + " form submitted successfully",
			Data:    []*submission.Submission{sub},
		})
	}
}
