package proc

import (
	"os"
	"path/filepath"
	"strings"
)

// UnixSockets returns the filesystem paths of the unix-domain sockets
// the process holds open. Socket inodes are collected from the fd
// directory and resolved through the process's own net/unix table, so
// the result is correct inside the process's network namespace.
// Unnamed sockets have no path and are omitted; abstract sockets keep
// their '@' prefix.
func (p *Process) UnixSockets() ([]string, error) {
	fdDir := filepath.Join(p.dir, "fd")
	entries, err := os.ReadDir(fdDir)
	if err != nil {
		if classifyReadError(err) == readDenied {
			return nil, &PermissionError{Path: fdDir, Err: err}
		}
		return nil, &NotFoundError{PID: p.stat.PID, Dir: p.dir, Err: err}
	}

	inodes := make(map[string]bool)
	for _, entry := range entries {
		target, err := os.Readlink(filepath.Join(fdDir, entry.Name()))
		if err != nil {
			continue // fd closed between listing and readlink
		}
		if strings.HasPrefix(target, "socket:[") && strings.HasSuffix(target, "]") {
			inodes[target[len("socket:["):len(target)-1]] = true
		}
	}
	if len(inodes) == 0 {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(p.dir, "net", "unix"))
	if err != nil {
		if classifyReadError(err) == readDenied {
			return nil, &PermissionError{Path: filepath.Join(p.dir, "net", "unix"), Err: err}
		}
		return nil, &NotFoundError{PID: p.stat.PID, Dir: p.dir, Err: err}
	}

	var paths []string
	lines := strings.Split(string(data), "\n")
	for _, line := range lines[1:] { // skip header
		fields := strings.Fields(line)
		// Num RefCount Protocol Flags Type St Inode Path
		if len(fields) < 8 {
			continue
		}
		if inodes[fields[6]] {
			paths = append(paths, fields[7])
		}
	}
	return paths, nil
}
