package supabase

import (
	"strings"

	"github.com/supabase-community/supabase-go"
	"ourxmas-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient returns nil, nil when Supabase is not configured.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, nil
	}

	client, err := supabase.NewClient(strings.TrimSuffix(cfg.SupabaseURL, "/"), cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}
