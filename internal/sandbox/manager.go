package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zpdzap/chainbox/internal/catchup"
	"github.com/zpdzap/chainbox/internal/config"
	"github.com/zpdzap/chainbox/internal/docker"
	"github.com/zpdzap/chainbox/internal/env"
	"github.com/zpdzap/chainbox/internal/node"
	"github.com/zpdzap/chainbox/internal/ui"
)

// Manager owns the sandbox lifecycle decision procedure and the command
// surface built on it. All collaborators that touch the outside world
// (runtime, prompts, busy indicator, catchup) are injectable.
type Manager struct {
	rootDir string
	cfg     *config.Config
	repo    *env.Repository
	runtime Runtime

	confirm ui.ConfirmFunc
	busy    func(label string, fn func() error) error
	catchup func(n config.Network) error
}

// NewManager wires a manager to the real docker CLI, terminal prompts,
// and catchup runner.
func NewManager(rootDir string, cfg *config.Config) *Manager {
	rt := docker.Client{}
	m := &Manager{
		rootDir: rootDir,
		cfg:     cfg,
		repo:    env.NewRepository(filepath.Join(rootDir, config.DataDir)),
		runtime: rt,
		confirm: ui.Confirm,
		busy:    ui.Busy,
	}
	m.catchup = func(n config.Network) error {
		return catchup.NewRunner(n, m.node()).Run()
	}
	return m
}

func (m *Manager) node() *node.Client {
	return node.NewClient(m.runtime, ContainerName, DataMount)
}

// Up ensures a running sandbox for the requested network, initializing
// from scratch when nothing exists yet. The decision procedure reconciles
// on-disk state, container state, and the operator's answers; it is safe
// to re-run after a partial failure.
func (m *Manager) Up(networkToken string, skipCatchup bool) error {
	explicit := networkToken != ""
	requested, err := config.Resolve(networkToken)
	if err != nil {
		return err
	}

	e := m.repo.Inspect()

	if e.Corrupt {
		if !m.confirm("Sandbox data is corrupt (network marker missing). Remove it and start fresh?") {
			return ErrDeclined
		}
		if err := m.removeAll(); err != nil {
			return err
		}
		e = m.repo.Inspect()
	}

	if e.Exists && explicit && e.Network != requested &&
		m.runtime.ContainerState(ContainerName) != docker.StateAbsent {
		prompt := fmt.Sprintf("Sandbox is configured for %s but %s was requested. Reset and reconfigure?",
			e.Network, requested)
		if !m.confirm(prompt) {
			return ErrDeclined
		}
		if err := m.removeAll(); err != nil {
			return err
		}
		e = m.repo.Inspect()
	}

	if e.Exists {
		return m.resume(e, requested, explicit, skipCatchup)
	}
	return m.initialize(requested, skipCatchup)
}

// resume starts the existing container. Catchup never runs here: it is
// only meaningful against a freshly initialized, empty chain state.
func (m *Manager) resume(e env.Environment, requested config.Network, explicit, skipCatchup bool) error {
	err := m.runtime.Start(ContainerName)
	if err == nil {
		ui.Successf("Sandbox resumed (%s).", e.Network)
		return nil
	}
	if errors.Is(err, docker.ErrDaemonDown) {
		return err
	}

	ui.Warnf("Could not start the sandbox container: %v", err)
	if !m.confirm("Reset the sandbox and rebuild it from scratch?") {
		return ErrDeclined
	}

	// Rebuild for the network recorded before removal, unless one was
	// explicitly requested.
	target := e.Network
	if explicit || target == "" {
		target = requested
	}
	if err := m.removeAll(); err != nil {
		return err
	}
	return m.initialize(target, skipCatchup)
}

// initialize builds the image for the network's channel, lays down a fresh
// data directory inside a new volume-backed container, records the network
// marker, and runs fast catchup when enabled.
func (m *Manager) initialize(n config.Network, skipCatchup bool) error {
	ui.Infof("Setting up a fresh %s sandbox.", n)

	label := fmt.Sprintf("Building sandbox image (%s channel, not quick)...", n.Channel())
	err := m.busy(label, func() error {
		if err := m.writeBuildContext(); err != nil {
			return err
		}
		return m.runtime.Build(m.cfg.Image.Tag, m.buildDir(), map[string]string{
			"BASE":    m.cfg.Image.Base,
			"CHANNEL": n.Channel(),
		})
	})
	if err != nil {
		return err
	}

	if err := m.repo.Initialize(n, m.cfg); err != nil {
		return err
	}
	if err := m.runtime.CreateVolume(VolumeName); err != nil {
		return err
	}
	if err := m.runtime.Run(ContainerName, m.cfg.Image.Tag,
		map[string]string{VolumeName: DataMount},
		map[int]int{m.cfg.Ports.Algod: m.cfg.Ports.Algod, m.cfg.Ports.KMD: m.cfg.Ports.KMD},
	); err != nil {
		return err
	}
	if err := m.runtime.Copy(m.repo.DataDir()+string(os.PathSeparator)+".", ContainerName, DataMount); err != nil {
		return err
	}
	if err := m.repo.MarkNetwork(n); err != nil {
		return err
	}

	if skipCatchup || !m.cfg.FastCatchup {
		ui.Successf("Sandbox is up (%s). Fast catchup skipped.", n)
		return nil
	}

	ui.Infof("Running fast catchup for %s.", n)
	if err := m.catchup(n); err != nil {
		if errors.Is(err, catchup.ErrUnavailable) {
			ui.Warnf("No catchpoint endpoint for %s; skipping fast catchup.", n)
			ui.Successf("Sandbox is up (%s).", n)
			return nil
		}
		// Trigger failures are fatal to the catchup run only; the
		// container stays up, just unsynchronized.
		return err
	}
	ui.Successf("Sandbox is up and caught up (%s).", n)
	return nil
}

// Down stops the sandbox container. The node and its state survive for a
// later `up`.
func (m *Manager) Down() error {
	if err := m.runtime.Kill(ContainerName); err != nil {
		return err
	}
	ui.Successf("Sandbox stopped.")
	return nil
}

// Restart stops and starts the existing container without rebuilding and
// without re-triggering catchup.
func (m *Manager) Restart() error {
	if m.runtime.ContainerState(ContainerName) == docker.StateAbsent {
		return fmt.Errorf("no sandbox container to restart (run `chainbox up` first)")
	}
	if err := m.runtime.Kill(ContainerName); err != nil {
		return err
	}
	if err := m.runtime.Start(ContainerName); err != nil {
		return err
	}
	ui.Successf("Sandbox restarted.")
	return nil
}

// Clean removes everything the sandbox ever created: data directory,
// container, image, and volume. Idempotent: absence is success.
func (m *Manager) Clean() error {
	if err := m.removeAll(); err != nil {
		return err
	}
	ui.Successf("Sandbox removed.")
	return nil
}

// Enter opens an interactive shell in the container's data directory.
func (m *Manager) Enter() error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	return m.node().ShellCmd().Run()
}

// Logs tails the node log, prettified unless raw is requested.
func (m *Manager) Logs(raw bool) error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	return m.node().LogCmd(raw).Run()
}

// Status prints the node's current status report.
func (m *Manager) Status() error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	out, err := m.node().Status()
	fmt.Print(out)
	return err
}

// Goal passes arguments straight through to goal inside the container.
func (m *Manager) Goal(args []string) error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	out, err := m.node().Goal(args...)
	fmt.Print(out)
	return err
}

// DryRun evaluates a signed transaction file against the node without
// submitting it.
func (m *Manager) DryRun(file string) error {
	if err := m.requireRunning(); err != nil {
		return err
	}
	out, err := m.node().DryRun(file)
	fmt.Print(out)
	return err
}

func (m *Manager) requireRunning() error {
	switch m.runtime.ContainerState(ContainerName) {
	case docker.StateRunning:
		return nil
	case docker.StateStopped:
		return fmt.Errorf("the sandbox container is stopped (run `chainbox up`)")
	default:
		return fmt.Errorf("no sandbox exists yet (run `chainbox up`)")
	}
}

// removeAll tears down runtime artifacts and the data directory. Every
// step tolerates the artifact already being gone.
func (m *Manager) removeAll() error {
	m.runtime.Kill(ContainerName)
	m.runtime.RemoveContainer(ContainerName)
	m.runtime.RemoveImage(m.cfg.Image.Tag)
	m.runtime.RemoveVolume(VolumeName)
	return m.repo.Remove()
}

func (m *Manager) buildDir() string {
	return filepath.Join(m.rootDir, "build")
}

// writeBuildContext lays down the image build context. The Dockerfile
// installs the node software for the requested release channel; the
// channel itself arrives as a build arg.
func (m *Manager) writeBuildContext() error {
	if err := os.MkdirAll(m.buildDir(), 0o755); err != nil {
		return fmt.Errorf("creating build dir: %w", err)
	}

	dockerfile := `ARG BASE=ubuntu:24.04
FROM ${BASE}

ARG CHANNEL=stable

RUN apt-get update && apt-get install -y \
    curl \
    ca-certificates \
    && rm -rf /var/lib/apt/lists/*

RUN curl -fsSL https://get.chainbox.dev/install.sh | sh -s -- --channel ${CHANNEL} --prefix /opt/node
ENV PATH="/opt/node/bin:${PATH}"

RUN mkdir -p /opt/data
WORKDIR /opt/data

COPY start.sh /opt/node/start.sh
CMD ["/bin/sh", "/opt/node/start.sh"]
`

	// The entrypoint waits for the data transfer that happens right
	// after `docker run`, then keeps the node in the foreground.
	start := `#!/bin/sh
until [ -f /opt/data/config.json ]; do sleep 1; done
algod -d /opt/data
`

	files := map[string]string{
		"Dockerfile": dockerfile,
		"start.sh":   start,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(m.buildDir(), name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
