package platform

import (
	"log/slog"

	"github.com/padsync/padsync/pkg/adapters/remote"
	"github.com/padsync/padsync/pkg/adapters/vault"
	"github.com/padsync/padsync/pkg/core"
)

// New wires a sync engine over the vault rooted at path and the configured
// pad host gateway.
//
//	engine, err := platform.New("./notes", platform.WithToken(token))
func New(path string, opts ...Option) (*core.Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	v := o.vault
	if v == nil {
		fsv, err := Init(path, opts...)
		if err != nil {
			return nil, err
		}
		v = fsv
	}

	r := o.remote
	if r == nil {
		ropts := []remote.Option{
			remote.WithLogger(logger),
			remote.WithTimeout(o.timeout),
		}
		if o.httpc != nil {
			ropts = append(ropts, remote.WithHTTPClient(o.httpc))
		}
		r = remote.New(o.apiURL, o.token, ropts...)
	}

	return core.NewEngine(v, r,
		core.WithShareURL(o.shareURL),
		core.WithMargin(o.margin),
		core.WithPermissions(o.perms),
		core.WithLogger(logger),
	), nil
}

// Init opens the document host adapter explicitly, without constructing a
// gateway. Commands that never touch the network (status, watch) use this.
func Init(path string, opts ...Option) (*vault.Vault, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return vault.New(path, vault.WithLogger(logger))
}
