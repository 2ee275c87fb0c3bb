// Package sandbox decides what to do with the sandboxed node: build,
// resume, reset, or repair, and runs the full command surface on top of
// that decision.
package sandbox

import (
	"errors"
	"os/exec"

	"github.com/zpdzap/chainbox/internal/docker"
)

const (
	// ContainerName is the single container the sandbox owns.
	ContainerName = "sandbox"
	// VolumeName is the named volume holding the node's chain state.
	VolumeName = "chainbox-data"
	// DataMount is where the volume is mounted inside the container.
	DataMount = "/opt/data"
)

// ErrDeclined reports that the operator declined a destructive reset.
// The invocation aborts with no mutation.
var ErrDeclined = errors.New("aborted: sandbox left untouched")

// Runtime is the container-runtime boundary the manager drives. Satisfied
// by docker.Client; faked in tests.
type Runtime interface {
	DaemonRunning() bool
	ContainerState(name string) docker.State
	Build(tag, dir string, buildArgs map[string]string) error
	Run(name, image string, volumes map[string]string, ports map[int]int) error
	Start(name string) error
	Kill(name string) error
	RemoveContainer(name string) error
	RemoveImage(tag string) error
	RemoveVolume(name string) error
	CreateVolume(name string) error
	Copy(hostPath, containerName, containerPath string) error
	Exec(name, workdir string, command ...string) (string, error)
	InteractiveCmd(name, workdir string, command ...string) *exec.Cmd
}
