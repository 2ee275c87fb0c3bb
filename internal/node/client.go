// Package node wraps the control surface of the blockchain node running
// inside the sandbox container: goal invocations over docker exec, status
// parsing, and the remote catchpoint lookup.
package node

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// Execer is the slice of the container runtime the node client needs.
type Execer interface {
	Exec(name, workdir string, command ...string) (string, error)
	Copy(hostPath, containerName, containerPath string) error
	InteractiveCmd(name, workdir string, command ...string) *exec.Cmd
}

// Client drives the node's goal CLI inside a running container.
type Client struct {
	runtime   Execer
	container string
	dataDir   string // node data dir inside the container
}

func NewClient(runtime Execer, container, dataDir string) *Client {
	return &Client{runtime: runtime, container: container, dataDir: dataDir}
}

// Status returns the node's free-text status report. Transient non-zero
// exits mid-catchup are normal; the raw output is returned either way so
// the caller's parser can decide.
func (c *Client) Status() (string, error) {
	out, err := c.runtime.Exec(c.container, c.dataDir, "goal", "node", "status", "-d", c.dataDir)
	if err != nil {
		return out, fmt.Errorf("querying node status: %w", err)
	}
	return out, nil
}

// CatchupStart points the node at a catchpoint and begins fast catchup.
func (c *Client) CatchupStart(catchpoint string) error {
	_, err := c.runtime.Exec(c.container, c.dataDir, "goal", "node", "catchup", catchpoint, "-d", c.dataDir)
	if err != nil {
		return fmt.Errorf("starting catchup: %w", err)
	}
	return nil
}

// Goal passes arbitrary arguments through to goal inside the container.
func (c *Client) Goal(args ...string) (string, error) {
	full := append([]string{"goal"}, args...)
	full = append(full, "-d", c.dataDir)
	return c.runtime.Exec(c.container, c.dataDir, full...)
}

// DryRun copies a signed transaction file into the container and runs
// goal clerk dryrun against it.
func (c *Client) DryRun(hostFile string) (string, error) {
	dest := filepath.Join("/tmp", filepath.Base(hostFile))
	if err := c.runtime.Copy(hostFile, c.container, dest); err != nil {
		return "", err
	}
	return c.Goal("clerk", "dryrun", "-t", dest)
}

// LogCmd returns an interactive command tailing the node's log. Raw mode
// follows the file directly; pretty mode runs it through carpenter.
func (c *Client) LogCmd(raw bool) *exec.Cmd {
	if raw {
		return c.runtime.InteractiveCmd(c.container, c.dataDir, "tail", "-f", filepath.Join(c.dataDir, "node.log"))
	}
	return c.runtime.InteractiveCmd(c.container, c.dataDir, "carpenter", "-D", "-d", c.dataDir)
}

// ShellCmd returns an interactive shell in the node's data directory.
func (c *Client) ShellCmd() *exec.Cmd {
	return c.runtime.InteractiveCmd(c.container, c.dataDir, "/bin/bash")
}
