package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/padsync/padsync/internal/config"
	"github.com/padsync/padsync/pkg/core"
	"github.com/padsync/padsync/pkg/noteurl"
)

// options holds the internal configuration for wiring an engine.
type options struct {
	logger   *slog.Logger
	token    string
	apiURL   string
	shareURL string
	margin   time.Duration
	timeout  time.Duration
	perms    core.CreatePermissions
	httpc    *http.Client
	remote   core.Remote
	vault    core.Vault
}

// Option defines a functional option for configuring padsync.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		apiURL:   "https://api.mdpad.io/v1",
		shareURL: noteurl.DefaultShareURL,
		margin:   core.DefaultMargin,
		timeout:  10 * time.Second,
		perms:    core.DefaultPermissions(),
	}
}

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithToken sets the access token for the pad host API.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithAPIURL sets the pad host REST endpoint.
func WithAPIURL(u string) Option {
	return func(o *options) { o.apiURL = u }
}

// WithShareURL sets the host serving canonical note URLs.
func WithShareURL(u string) Option {
	return func(o *options) { o.shareURL = u }
}

// WithMargin sets the conflict tolerance margin.
func WithMargin(d time.Duration) Option {
	return func(o *options) { o.margin = d }
}

// WithTimeout bounds every API round trip.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithPermissions sets the default sharing permissions for created notes.
func WithPermissions(p core.CreatePermissions) Option {
	return func(o *options) { o.perms = p }
}

// WithHTTPClient injects a custom http.Client into the remote gateway.
func WithHTTPClient(httpc *http.Client) Option {
	return func(o *options) { o.httpc = httpc }
}

// WithRemote injects a custom remote gateway (e.g. a test double).
// If provided, no HTTP client is constructed.
func WithRemote(r core.Remote) Option {
	return func(o *options) { o.remote = r }
}

// WithVault injects a custom document host adapter.
func WithVault(v core.Vault) Option {
	return func(o *options) { o.vault = v }
}

// WithConfig applies a loaded configuration file in one step. Explicit
// options given after this one still win.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.token = cfg.AccessToken
		o.apiURL = cfg.APIURL
		o.shareURL = cfg.ShareURL
		if cfg.Margin > 0 {
			o.margin = cfg.Margin
		}
		if cfg.Timeout > 0 {
			o.timeout = cfg.Timeout
		}
		o.perms = core.CreatePermissions{
			Read:    core.Permission(cfg.ReadPermission),
			Write:   core.Permission(cfg.WritePermission),
			Comment: core.Permission(cfg.CommentPermission),
		}
	}
}
