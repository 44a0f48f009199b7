// internal/component/services.go
package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/perks/internal/auth"
	"github.com/yanizio/perks/internal/config"
	"github.com/yanizio/perks/internal/content"
	"github.com/yanizio/perks/internal/guard"
	"github.com/yanizio/perks/internal/notify"
	"github.com/yanizio/perks/internal/submission"
)

// Services are the shared resources handed to every component's Init.
type Services struct {
	DB          *sqlx.DB
	Config      *config.Config
	Verifier    *guard.Verifier
	Limiter     *guard.Limiter
	Submissions *submission.Store
	Content     *content.Store
	Notifier    *notify.Notifier
	Tokens      *auth.Tokens
}
