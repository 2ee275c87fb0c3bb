// Package env manages the persisted sandbox data directory and the marker
// file recording which network it was initialized for.
package env

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zpdzap/chainbox/internal/config"
)

// Environment is a point-in-time read of the on-disk sandbox state.
// Corrupt means data is present but the marker is missing or unreadable,
// so the directory cannot be attributed to any network.
type Environment struct {
	Exists  bool
	Network config.Network // "" when absent or corrupt
	Corrupt bool
}

// Repository reads and mutates the data directory. It is never partially
// rewritten: the only mutations are first-time initialization and full
// removal.
type Repository struct {
	dataDir string
}

func NewRepository(dataDir string) *Repository {
	return &Repository{dataDir: dataDir}
}

// DataDir returns the directory the repository manages.
func (r *Repository) DataDir() string { return r.dataDir }

// Inspect reads directory existence and marker contents. No side effects.
func (r *Repository) Inspect() Environment {
	if _, err := os.Stat(r.dataDir); err != nil {
		return Environment{}
	}

	data, err := os.ReadFile(filepath.Join(r.dataDir, config.MarkerFile))
	if err != nil {
		return Environment{Exists: true, Corrupt: true}
	}
	n, err := config.Resolve(strings.TrimSpace(string(data)))
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return Environment{Exists: true, Corrupt: true}
	}
	return Environment{Exists: true, Network: n}
}

// Matches reports whether the stored environment belongs to the requested
// network.
func (r *Repository) Matches(requested config.Network) bool {
	e := r.Inspect()
	return e.Exists && !e.Corrupt && e.Network == requested
}

// Initialize lays down a fresh data directory for the network: node
// config, API access tokens, and the network's genesis file. Called once,
// before the marker is written.
func (r *Repository) Initialize(n config.Network, cfg *config.Config) error {
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	files := map[string]string{
		"config.json":  nodeConfig(n, cfg),
		"genesis.json": genesis(n),
		"algod.token":  newToken(),
		"kmd.token":    newToken(),
	}
	for name, content := range files {
		path := filepath.Join(r.dataDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// MarkNetwork records the network the data directory belongs to. Written
// atomically (temp file + rename) after first successful initialization;
// failure here is fatal to the caller, not retried.
func (r *Repository) MarkNetwork(n config.Network) error {
	tmp := filepath.Join(r.dataDir, config.MarkerFile+".tmp")
	if err := os.WriteFile(tmp, []byte(n.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing network marker: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(r.dataDir, config.MarkerFile)); err != nil {
		return fmt.Errorf("committing network marker: %w", err)
	}
	return nil
}

// Remove destroys the entire data directory. Idempotent: an absent
// directory is not an error.
func (r *Repository) Remove() error {
	if err := os.RemoveAll(r.dataDir); err != nil {
		return fmt.Errorf("removing data dir: %w", err)
	}
	return nil
}

func nodeConfig(n config.Network, cfg *config.Config) string {
	return fmt.Sprintf(`{
  "Version": 12,
  "GossipFanout": 1,
  "EndpointAddress": "0.0.0.0:%d",
  "DNSBootstrapID": "%s.chainbox.dev",
  "EnableDeveloperAPI": true,
  "IncomingConnectionsLimit": 0,
  "Archival": false,
  "isIndexerActive": false
}
`, cfg.Ports.Algod, n)
}

func genesis(n config.Network) string {
	// Minimal genesis stub naming the network; the real ledger genesis is
	// baked into the image at build time for the network's channel.
	return fmt.Sprintf(`{
  "network": "%s",
  "id": "v1.0",
  "comment": "placeholder replaced by the image's channel genesis at first start"
}
`, n)
}

func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
