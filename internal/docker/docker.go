package docker

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrDaemonDown reports that the docker daemon is not reachable. Callers
// treat this as fatal: nothing can be repaired by resetting the sandbox.
var ErrDaemonDown = errors.New("docker daemon is not running")

// State is a container's state as reported by the runtime, derived fresh
// on every query, never cached, since the daemon can change underneath us.
type State string

const (
	StateAbsent  State = "absent"
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Client shells out to the docker CLI. All remove-family operations treat
// already-absent targets as success so cleanup stays idempotent.
type Client struct{}

// DaemonRunning reports whether the docker daemon answers at all.
func (Client) DaemonRunning() bool {
	return exec.Command("docker", "info").Run() == nil
}

// ContainerState inspects a container by name.
func (c Client) ContainerState(name string) State {
	out, err := exec.Command("docker", "inspect", "-f", "{{.State.Status}}", name).CombinedOutput()
	if err != nil {
		return StateAbsent
	}
	switch strings.TrimSpace(string(out)) {
	case "running", "restarting":
		return StateRunning
	default:
		return StateStopped
	}
}

// Build builds an image from a Dockerfile directory, streaming build args
// in as --build-arg pairs. Build output is discarded; callers show a busy
// indicator instead since docker reports no usable percentage.
func (c Client) Build(tag, dir string, buildArgs map[string]string) error {
	args := []string{"build", "-t", tag}
	for k, v := range buildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, ".")

	cmd := exec.Command("docker", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return c.classify(fmt.Errorf("docker build failed: %s: %w", lastLine(out), err))
	}
	return nil
}

// Run creates and starts a detached container.
func (c Client) Run(name, image string, volumes map[string]string, ports map[int]int) error {
	args := []string{"run", "-d", "--name", name}
	for vol, mount := range volumes {
		args = append(args, "-v", fmt.Sprintf("%s:%s", vol, mount))
	}
	for host, cont := range ports {
		args = append(args, "-p", fmt.Sprintf("%d:%d", host, cont))
	}
	args = append(args, image)

	out, err := exec.Command("docker", args...).CombinedOutput()
	if err != nil {
		return c.classify(fmt.Errorf("docker run failed: %s: %w", lastLine(out), err))
	}
	return nil
}

// Start starts an existing stopped container.
func (c Client) Start(name string) error {
	out, err := exec.Command("docker", "start", name).CombinedOutput()
	if err != nil {
		return c.classify(fmt.Errorf("docker start failed: %s: %w", lastLine(out), err))
	}
	return nil
}

// Kill stops a container. Absent or already-stopped containers are fine.
func (Client) Kill(name string) error {
	exec.Command("docker", "kill", name).Run()
	return nil
}

// RemoveContainer force-removes a container; absence is success.
func (Client) RemoveContainer(name string) error {
	exec.Command("docker", "rm", "-f", name).Run()
	return nil
}

// RemoveImage removes an image; absence is success.
func (Client) RemoveImage(tag string) error {
	exec.Command("docker", "rmi", "-f", tag).Run()
	return nil
}

// RemoveVolume removes a named volume; absence is success.
func (Client) RemoveVolume(name string) error {
	exec.Command("docker", "volume", "rm", "-f", name).Run()
	return nil
}

// CreateVolume creates a named volume (no-op if it already exists).
func (c Client) CreateVolume(name string) error {
	out, err := exec.Command("docker", "volume", "create", name).CombinedOutput()
	if err != nil {
		return c.classify(fmt.Errorf("docker volume create failed: %s: %w", lastLine(out), err))
	}
	return nil
}

// Copy copies a host path into a container (docker cp semantics).
func (c Client) Copy(hostPath, containerName, containerPath string) error {
	out, err := exec.Command("docker", "cp", hostPath, containerName+":"+containerPath).CombinedOutput()
	if err != nil {
		return c.classify(fmt.Errorf("docker cp failed: %s: %w", lastLine(out), err))
	}
	return nil
}

// Exec runs a command inside a container and returns its combined output.
func (Client) Exec(name, workdir string, command ...string) (string, error) {
	args := []string{"exec"}
	if workdir != "" {
		args = append(args, "-w", workdir)
	}
	args = append(args, name)
	args = append(args, command...)

	out, err := exec.Command("docker", args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("docker exec %s: %s: %w", command[0], lastLine(out), err)
	}
	return string(out), nil
}

// InteractiveCmd returns a ready-to-run interactive exec, wired to the
// caller's terminal. Used for `enter` and streaming log tails.
func (Client) InteractiveCmd(name, workdir string, command ...string) *exec.Cmd {
	args := []string{"exec", "-it"}
	if workdir != "" {
		args = append(args, "-w", workdir)
	}
	args = append(args, name)
	args = append(args, command...)

	cmd := exec.Command("docker", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// classify upgrades a generic failure to ErrDaemonDown when the daemon is
// unreachable, so callers can tell "docker is off" from "this op failed".
func (c Client) classify(err error) error {
	if !c.DaemonRunning() {
		return fmt.Errorf("%w (start docker and retry)", ErrDaemonDown)
	}
	return err
}

func lastLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
