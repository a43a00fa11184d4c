package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proc"
	"github.com/spf13/cobra"
)

var (
	listName string
	listUser int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all visible processes",
	Example: `  # Everything the process table shows us
  goproc list

  # Only nginx workers
  goproc list --name "nginx*"

  # Only processes running as uid 1000
  goproc list --user 1000

  # Machine readable
  goproc list --json`,
	Args: cobra.NoArgs,
	Run:  runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listName, "name", "n", "", "only processes whose name matches this glob")
	f.IntVarP(&listUser, "user", "u", -1, "only processes with this real uid")
}

func runList(cmd *cobra.Command, args []string) {
	if _, err := path.Match(listName, ""); err != nil {
		exitError(fmt.Sprintf("invalid name pattern %q", listName))
	}

	e := newEnumerator()
	procs, err := e.Enumerate()
	if err != nil {
		exitError(err.Error())
	}
	procs = filterProcs(procs, listName, listUser)
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID() < procs[j].PID() })

	if jsonOutput {
		infos := make([]processInfo, 0, len(procs))
		for _, p := range procs {
			infos = append(infos, newProcessInfo(p, false))
		}
		outputJSON(infos)
		return
	}

	if len(procs) == 0 {
		fmt.Println("No processes matched")
		return
	}
	display.RenderProcessList(os.Stdout, procs)

	if r := e.Races(); r.Listing+r.Secondary > 0 {
		slog.Debug("processes vanished mid-scan", "listing", r.Listing, "secondary", r.Secondary)
	}
}

// filterProcs narrows a scan to processes whose name matches a glob
// pattern and whose real uid matches uid. An empty pattern matches every
// name, uid -1 every user.
func filterProcs(procs []*proc.Process, pattern string, uid int) []*proc.Process {
	if pattern == "" && uid < 0 {
		return procs
	}
	var result []*proc.Process
	for _, p := range procs {
		a := p.Attributes()
		if pattern != "" {
			if ok, _ := path.Match(pattern, a.ExeName()); !ok {
				continue
			}
		}
		if uid >= 0 && a.UserIDs.Real != uid {
			continue
		}
		result = append(result, p)
	}
	return result
}

// processInfo is the JSON shape of one process as emitted by list, tree
// and describe.
type processInfo struct {
	PID     int `json:"pid"`
	PPID    int `json:"ppid"`
	PGRP    int `json:"pgrp"`
	Session int `json:"session"`
	proc.Attributes
	RuntimeSeconds float64 `json:"runtime_seconds"`
}

func newProcessInfo(p *proc.Process, withEnviron bool) processInfo {
	attrs := *p.Attributes()
	if !withEnviron {
		attrs.Environ = nil
	}
	return processInfo{
		PID:            p.PID(),
		PPID:           p.PPID(),
		PGRP:           p.PGRP(),
		Session:        p.Session(),
		Attributes:     attrs,
		RuntimeSeconds: p.Runtime().Seconds(),
	}
}
