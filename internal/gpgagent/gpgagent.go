package gpgagent

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/7c/goproc/proc"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// ErrNotFound means no reachable agent for our uid is running.
var ErrNotFound = errors.New("gpgagent: no reachable gpg-agent found")

// AgentInfo identifies a running gpg-agent daemon and its socket.
type AgentInfo struct {
	PID    int    `json:"pid"`
	Socket string `json:"socket"`
}

// Value renders the classic GPG_AGENT_INFO triple, e.g.
// "/tmp/gpg-KE5ZZL/S.gpg-agent:2407:1".
func (a AgentInfo) Value() string {
	return fmt.Sprintf("%s:%d:1", a.Socket, a.PID)
}

// Find locates a gpg-agent process owned by our real uid and returns the
// first of its unix sockets we can write to. Sockets we cannot write to
// belong to someone else's session and are skipped, as are abstract
// sockets with no filesystem path.
func Find(e *proc.Enumerator) (*AgentInfo, error) {
	uid := os.Getuid()
	agents, err := e.Find(func(p *proc.Process) bool {
		a := p.Attributes()
		return a.ExeName() == "gpg-agent" && a.UserIDs.Real == uid
	})
	if err != nil {
		return nil, err
	}

	for _, p := range agents {
		sockets, err := p.UnixSockets()
		if err != nil {
			slog.Debug("cannot list agent sockets", "pid", p.PID(), "err", err)
			continue
		}
		for _, socket := range sockets {
			if unix.Access(socket, unix.W_OK) == nil {
				return &AgentInfo{PID: p.PID(), Socket: socket}, nil
			}
			slog.Debug("no write access to socket, ignoring", "pid", p.PID(), "socket", socket)
		}
	}
	return nil, ErrNotFound
}

// Start spawns a new gpg-agent daemon in the background.
func Start() error {
	cmd := exec.Command("gpg-agent", "--daemon")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("spawn gpg-agent: %w", err)
	}
	return nil
}

// Variables prepares the environment variables gpg needs to reach an
// agent. A missing agent is spawned and discovery retried once; failures
// degrade to warnings so the wrapped command still runs, matching how
// gpg itself behaves without an agent.
func Variables(e *proc.Enumerator) map[string]string {
	env := make(map[string]string)

	agent, err := Find(e)
	if errors.Is(err, ErrNotFound) {
		slog.Debug("no running gpg agent found, spawning a new one")
		if startErr := Start(); startErr != nil {
			slog.Warn("could not spawn gpg-agent", "err", startErr)
		} else {
			agent, err = Find(e)
		}
	}
	switch {
	case err == nil:
		env["GPG_AGENT_INFO"] = agent.Value()
	case errors.Is(err, ErrNotFound):
		slog.Warn("failed to locate spawned gpg agent")
	default:
		slog.Warn("gpg agent discovery failed", "err", err)
	}

	if tty := ttyName(); tty != "" {
		env["GPG_TTY"] = tty
	}
	return env
}

// ttyName resolves the controlling terminal through the stdin fd
// symlink, the same answer tty(1) would give.
func ttyName() string {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return ""
	}
	name, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return ""
	}
	return name
}
