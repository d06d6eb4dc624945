package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tobischo/gokeepasslib/v3"

	"go.dot.industries/vx/internal/provider"
)

// keepassProvider reads entries out of a local KeePass .kdbx database,
// declared as `type = "keepass"`. Reference is a "/"-separated path of
// group titles ending in an entry title, e.g. "work/aws/root". The
// database is decoded once in Validate and cached in memory for the life
// of the process — this provider is read-only (KeePass file writes require
// rewriting the whole, re-encrypted database, out of scope here).
type keepassProvider struct {
	provider.Base
	dbPath     string
	password   string
	keyFile    string
	decoded    *gokeepasslib.Database
}

func newKeepassProvider(name string, attrs map[string]any) (provider.Provider, error) {
	return &keepassProvider{
		Base:     provider.Base{ProviderName: name, ProviderType: "keepass"},
		dbPath:   attrString(attrs, "path"),
		password: attrString(attrs, "password"),
		keyFile:  attrString(attrs, "key_file"),
	}, nil
}

func (p *keepassProvider) Validate() error {
	if p.dbPath == "" {
		return fmt.Errorf("keepass: missing required attribute %q", "path")
	}
	return p.load()
}

func (p *keepassProvider) load() error {
	if p.decoded != nil {
		return nil
	}

	f, err := os.Open(p.dbPath)
	if err != nil {
		return fmt.Errorf("keepass: opening %s: %w", p.dbPath, err)
	}
	defer f.Close()

	credentials := gokeepasslib.NewPasswordCredentials(p.password)
	if p.keyFile != "" {
		credentials, err = gokeepasslib.NewKeyCredentials(p.keyFile)
		if err != nil {
			return fmt.Errorf("keepass: loading key file: %w", err)
		}
	}

	db := gokeepasslib.NewDatabase()
	db.Credentials = credentials
	if err := gokeepasslib.NewDecoder(f).Decode(db); err != nil {
		return fmt.Errorf("keepass: decoding %s: %w", p.dbPath, err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return fmt.Errorf("keepass: unlocking entries: %w", err)
	}

	p.decoded = db
	return nil
}

func (p *keepassProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Read: true, Test: true, MaxConcurrency: 1}
}

func (p *keepassProvider) Read(ctx context.Context, key string) (string, error) {
	if err := p.load(); err != nil {
		return "", err
	}

	parts := strings.Split(key, "/")
	groups := p.decoded.Content.Root.Groups
	entryGroups := groups
	for depth, part := range parts {
		last := depth == len(parts)-1
		if last {
			for _, g := range entryGroups {
				for _, e := range g.Entries {
					if e.GetTitle() == part {
						return e.GetPassword(), nil
					}
				}
			}
			return "", provider.NotFoundf("keepass: entry %q not found", key)
		}

		found := false
		for _, g := range groups {
			if g.Name == part {
				groups = g.Groups
				entryGroups = []gokeepasslib.Group{g}
				found = true
				break
			}
		}
		if !found {
			return "", provider.NotFoundf("keepass: group %q not found in %q", part, key)
		}
	}

	return "", provider.NotFoundf("keepass: %q not found", key)
}

func (p *keepassProvider) BatchRead(ctx context.Context, keys []string) (map[string]provider.Result, error) {
	return provider.BatchRead(ctx, p, keys, p.Capabilities().MaxConcurrency)
}

func (p *keepassProvider) Test(ctx context.Context) error {
	return p.load()
}
