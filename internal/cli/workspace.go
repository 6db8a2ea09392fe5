package cli

import (
	"fmt"

	"github.com/chazu/swcmesher/internal/config"
	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/store"
)

// session is an open workspace with its registry loaded.
type session struct {
	cfg config.Config
	ws  *store.Workspace
	reg *cable.Registry
}

// openSession loads the settings and the workspace named in them.
func (c *CLI) openSession() (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	ws, err := store.Open(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	reg, err := ws.Load(c.Logger)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("load workspace %s: %w", cfg.Workspace, err)
	}
	return &session{cfg: cfg, ws: ws, reg: reg}, nil
}

// save persists the registry. It does not close the workspace.
func (s *session) save() error {
	if err := s.ws.Save(s.reg); err != nil {
		return fmt.Errorf("save workspace %s: %w", s.cfg.Workspace, err)
	}
	return nil
}

func (s *session) close() error {
	return s.ws.Close()
}

// withSession opens the workspace, runs fn, and saves when fn succeeds and
// write is set.
func (c *CLI) withSession(write bool, fn func(s *session) error) error {
	s, err := c.openSession()
	if err != nil {
		return err
	}
	defer s.close()
	if err := fn(s); err != nil {
		return err
	}
	if write {
		return s.save()
	}
	return nil
}

// withActive is withSession for commands on the active model.
func (c *CLI) withActive(write bool, fn func(s *session, m *cable.Model) error) error {
	return c.withSession(write, func(s *session) error {
		m, err := s.reg.Active()
		if err != nil {
			return err
		}
		return fn(s, m)
	})
}
