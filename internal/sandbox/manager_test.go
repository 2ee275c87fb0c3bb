package sandbox

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/zpdzap/chainbox/internal/catchup"
	"github.com/zpdzap/chainbox/internal/config"
	"github.com/zpdzap/chainbox/internal/docker"
	"github.com/zpdzap/chainbox/internal/env"
)

// fakeRuntime records calls and plays back scripted container state.
type fakeRuntime struct {
	state    docker.State
	startErr error
	calls    []string
}

func (f *fakeRuntime) DaemonRunning() bool { return true }

func (f *fakeRuntime) ContainerState(name string) docker.State { return f.state }

func (f *fakeRuntime) Build(tag, dir string, buildArgs map[string]string) error {
	f.calls = append(f.calls, "build:"+buildArgs["CHANNEL"])
	return nil
}

func (f *fakeRuntime) Run(name, image string, volumes map[string]string, ports map[int]int) error {
	f.calls = append(f.calls, "run")
	f.state = docker.StateRunning
	return nil
}

func (f *fakeRuntime) Start(name string) error {
	if f.startErr != nil {
		f.calls = append(f.calls, "start-failed")
		return f.startErr
	}
	f.calls = append(f.calls, "start")
	f.state = docker.StateRunning
	return nil
}

func (f *fakeRuntime) Kill(name string) error {
	f.calls = append(f.calls, "kill")
	return nil
}

func (f *fakeRuntime) RemoveContainer(name string) error {
	f.calls = append(f.calls, "rm-container")
	f.state = docker.StateAbsent
	return nil
}

func (f *fakeRuntime) RemoveImage(tag string) error {
	f.calls = append(f.calls, "rm-image")
	return nil
}

func (f *fakeRuntime) RemoveVolume(name string) error {
	f.calls = append(f.calls, "rm-volume")
	return nil
}

func (f *fakeRuntime) CreateVolume(name string) error {
	f.calls = append(f.calls, "volume")
	return nil
}

func (f *fakeRuntime) Copy(hostPath, containerName, containerPath string) error {
	f.calls = append(f.calls, "copy")
	return nil
}

func (f *fakeRuntime) Exec(name, workdir string, command ...string) (string, error) {
	return "", nil
}

func (f *fakeRuntime) InteractiveCmd(name, workdir string, command ...string) *exec.Cmd {
	return exec.Command("true")
}

func (f *fakeRuntime) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

// harness bundles a manager with its scripted collaborators.
type harness struct {
	m          *Manager
	rt         *fakeRuntime
	repo       *env.Repository
	catchupRan int
	catchupErr error
}

func newHarness(t *testing.T, rt *fakeRuntime, answers ...bool) *harness {
	t.Helper()
	root := t.TempDir()

	h := &harness{rt: rt, repo: env.NewRepository(filepath.Join(root, config.DataDir))}
	h.m = &Manager{
		rootDir: root,
		cfg:     config.Default(),
		repo:    h.repo,
		runtime: rt,
		confirm: func(prompt string) bool {
			if len(answers) == 0 {
				t.Fatalf("unexpected prompt: %s", prompt)
			}
			ans := answers[0]
			answers = answers[1:]
			return ans
		},
		busy: func(label string, fn func() error) error { return fn() },
	}
	h.m.catchup = func(n config.Network) error {
		h.catchupRan++
		return h.catchupErr
	}
	return h
}

// seed lays down an initialized, marked environment.
func (h *harness) seed(t *testing.T, n config.Network) {
	t.Helper()
	if err := h.repo.Initialize(n, config.Default()); err != nil {
		t.Fatalf("seed Initialize: %v", err)
	}
	if err := h.repo.MarkNetwork(n); err != nil {
		t.Fatalf("seed MarkNetwork: %v", err)
	}
}

func TestUpFreshInit(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateAbsent}
	h := newHarness(t, rt)

	if err := h.m.Up("testnet", false); err != nil {
		t.Fatalf("Up: %v", err)
	}

	for _, want := range []string{"build:stable", "volume", "run", "copy"} {
		if !rt.called(want) {
			t.Errorf("missing runtime call %q in %v", want, rt.calls)
		}
	}
	e := h.repo.Inspect()
	if e.Network != config.Testnet {
		t.Errorf("marker = %q, want testnet", e.Network)
	}
	if h.catchupRan != 1 {
		t.Errorf("catchup ran %d times, want 1", h.catchupRan)
	}

	marker, _ := os.ReadFile(filepath.Join(h.repo.DataDir(), config.MarkerFile))
	if string(marker) != "testnet\n" {
		t.Errorf("marker file = %q, want %q", marker, "testnet\n")
	}
}

func TestUpDefaultsToTestnet(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent})

	if err := h.m.Up("", true); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if h.repo.Inspect().Network != config.Testnet {
		t.Errorf("marker = %q, want testnet", h.repo.Inspect().Network)
	}
}

func TestUpInvalidNetwork(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent})

	if err := h.m.Up("devnet", false); err == nil {
		t.Fatal("Up with unknown network should fail")
	}
	if h.repo.Inspect().Exists {
		t.Error("no environment should be created on invalid input")
	}
}

func TestUpResumeSkipsCatchup(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateStopped}
	h := newHarness(t, rt)
	h.seed(t, config.Testnet)

	if err := h.m.Up("", false); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if !rt.called("start") {
		t.Error("resume should start the existing container")
	}
	if rt.called("build:stable") {
		t.Error("resume must not rebuild the image")
	}
	if h.catchupRan != 0 {
		t.Error("resuming an already-synced container must never re-trigger catchup")
	}
}

func TestUpNetworkMismatchDeclined(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateStopped}
	h := newHarness(t, rt, false)
	h.seed(t, config.Testnet)

	err := h.m.Up("mainnet", false)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("Up = %v, want ErrDeclined", err)
	}
	if h.repo.Inspect().Network != config.Testnet {
		t.Error("declining must leave the environment untouched")
	}
	if rt.called("rm-container") || rt.called("rm-volume") {
		t.Errorf("declining must not remove anything, calls: %v", rt.calls)
	}
}

func TestUpNetworkMismatchAccepted(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateStopped}
	h := newHarness(t, rt, true)
	h.seed(t, config.Testnet)

	if err := h.m.Up("mainnet", true); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if h.repo.Inspect().Network != config.Mainnet {
		t.Errorf("marker = %q, want mainnet after reset", h.repo.Inspect().Network)
	}
	for _, want := range []string{"rm-container", "rm-image", "rm-volume", "build:stable"} {
		if !rt.called(want) {
			t.Errorf("missing %q in %v", want, rt.calls)
		}
	}
}

func TestUpMismatchWithoutContainerResumes(t *testing.T) {
	// A differing marker with no container present is not the reset
	// prompt's case; the start attempt decides what happens next.
	rt := &fakeRuntime{state: docker.StateAbsent, startErr: errors.New("no such container")}
	h := newHarness(t, rt, true)
	h.seed(t, config.Testnet)

	if err := h.m.Up("mainnet", true); err != nil {
		t.Fatalf("Up: %v", err)
	}
	// Start failed, reset accepted, rebuilt for the explicit request.
	if h.repo.Inspect().Network != config.Mainnet {
		t.Errorf("marker = %q, want mainnet", h.repo.Inspect().Network)
	}
}

func TestUpCorruptDeclined(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent}, false)
	os.MkdirAll(h.repo.DataDir(), 0o755) // data present, no marker

	if err := h.m.Up("", false); !errors.Is(err, ErrDeclined) {
		t.Fatalf("Up on corrupt env = %v, want ErrDeclined", err)
	}
	if !h.repo.Inspect().Exists {
		t.Error("declining must not remove the corrupt data")
	}
}

func TestUpCorruptAccepted(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateAbsent}
	h := newHarness(t, rt, true)
	os.MkdirAll(h.repo.DataDir(), 0o755)

	if err := h.m.Up("", true); err != nil {
		t.Fatalf("Up: %v", err)
	}
	e := h.repo.Inspect()
	if e.Corrupt || e.Network != config.Testnet {
		t.Errorf("env after repair = %+v, want fresh testnet", e)
	}
}

func TestUpDaemonDownIsFatal(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateStopped, startErr: docker.ErrDaemonDown}
	h := newHarness(t, rt) // no answers: prompting would fail the test
	h.seed(t, config.Testnet)

	if err := h.m.Up("", false); !errors.Is(err, docker.ErrDaemonDown) {
		t.Fatalf("Up = %v, want ErrDaemonDown", err)
	}
	if h.repo.Inspect().Network != config.Testnet {
		t.Error("a down daemon must not mutate the environment")
	}
}

func TestUpStartFailureRebuildsRecordedNetwork(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateStopped, startErr: errors.New("disk mount gone")}
	h := newHarness(t, rt, true)
	h.seed(t, config.Mainnet)

	// No explicit network: the rebuild must reuse the recorded one.
	if err := h.m.Up("", true); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if h.repo.Inspect().Network != config.Mainnet {
		t.Errorf("marker = %q, want mainnet preserved across reset", h.repo.Inspect().Network)
	}
}

func TestUpCatchupUnavailableIsSoft(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent})
	h.catchupErr = catchup.ErrUnavailable

	if err := h.m.Up("betanet", false); err != nil {
		t.Fatalf("Up should succeed when catchup is unavailable, got: %v", err)
	}
}

func TestUpCatchupTriggerFailureIsFatal(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent})
	h.catchupErr = errors.New("catchpoint endpoint unreachable")

	if err := h.m.Up("testnet", false); err == nil {
		t.Fatal("Up should surface a failed catchup trigger")
	}
	// The container stays up regardless.
	if h.rt.state != docker.StateRunning {
		t.Error("container should remain running after a catchup failure")
	}
}

func TestUpSkipFastCatchup(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent})

	if err := h.m.Up("testnet", true); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if h.catchupRan != 0 {
		t.Error("--skip-fast-catchup must suppress the catchup run")
	}
}

func TestCleanIdempotent(t *testing.T) {
	rt := &fakeRuntime{state: docker.StateRunning}
	h := newHarness(t, rt)
	h.seed(t, config.Testnet)

	if err := h.m.Clean(); err != nil {
		t.Fatalf("first Clean: %v", err)
	}
	if h.repo.Inspect().Exists {
		t.Fatal("environment should be gone after Clean")
	}
	if err := h.m.Clean(); err != nil {
		t.Fatalf("second Clean should succeed on nothing: %v", err)
	}
}

func TestRestartRequiresContainer(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateAbsent})
	if err := h.m.Restart(); err == nil {
		t.Fatal("Restart without a container should fail")
	}
}

func TestOpsRequireRunningContainer(t *testing.T) {
	h := newHarness(t, &fakeRuntime{state: docker.StateStopped})

	ops := map[string]func() error{
		"enter":  h.m.Enter,
		"status": h.m.Status,
		"logs":   func() error { return h.m.Logs(false) },
		"goal":   func() error { return h.m.Goal([]string{"node", "status"}) },
	}
	for name, op := range ops {
		if err := op(); err == nil {
			t.Errorf("%s on a stopped container should fail", name)
		}
	}
}
