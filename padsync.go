package padsync

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/padsync/padsync/internal/config"
	"github.com/padsync/padsync/internal/platform"
	"github.com/padsync/padsync/pkg/adapters/vault"
	"github.com/padsync/padsync/pkg/core"
)

// Version exposes the version of the library.
const Version = "0.3.0"

// --- Configuration ---

// Option defines a functional option for configuring padsync.
type Option = platform.Option

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithToken sets the access token for the pad host API.
func WithToken(token string) Option {
	return platform.WithToken(token)
}

// WithAPIURL sets the pad host REST endpoint.
func WithAPIURL(u string) Option {
	return platform.WithAPIURL(u)
}

// WithShareURL sets the host serving canonical note URLs.
func WithShareURL(u string) Option {
	return platform.WithShareURL(u)
}

// WithMargin sets the conflict tolerance margin.
func WithMargin(d time.Duration) Option {
	return platform.WithMargin(d)
}

// WithTimeout bounds every API round trip.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithPermissions sets the default sharing permissions for created notes.
func WithPermissions(p core.CreatePermissions) Option {
	return platform.WithPermissions(p)
}

// WithHTTPClient injects a custom http.Client into the remote gateway.
func WithHTTPClient(httpc *http.Client) Option {
	return platform.WithHTTPClient(httpc)
}

// WithRemote injects a custom remote gateway (e.g. a test double).
func WithRemote(r core.Remote) Option {
	return platform.WithRemote(r)
}

// WithVault injects a custom document host adapter.
func WithVault(v core.Vault) Option {
	return platform.WithVault(v)
}

// WithConfig applies a loaded configuration in one step.
func WithConfig(cfg *config.Config) Option {
	return platform.WithConfig(cfg)
}

// --- Factory ---

// New creates a sync engine over the vault rooted at path.
func New(path string, opts ...Option) (*core.Engine, error) {
	return platform.New(path, opts...)
}

// Init opens the document host adapter explicitly, without a gateway.
func Init(path string, opts ...Option) (*vault.Vault, error) {
	return platform.Init(path, opts...)
}

// LoadConfig reads padsync configuration, resolving the project-local
// config by walking up from startDir.
func LoadConfig(startDir string) (*config.Config, error) {
	return config.Load(startDir)
}
