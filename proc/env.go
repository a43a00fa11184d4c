package proc

// FindEnvironmentVariables scans all visible processes and collects the
// values of the named environment variables. When several processes
// carry the same variable the value seen last wins; with a single
// desktop session they agree anyway. Empty values and environs that
// could not be read contribute nothing.
func FindEnvironmentVariables(e *Enumerator, names ...string) (map[string]string, error) {
	procs, err := e.Enumerate()
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	matches := make(map[string]string)
	for _, p := range procs {
		for k, v := range p.Attributes().Environ {
			if wanted[k] && v != "" {
				matches[k] = v
			}
		}
	}
	return matches, nil
}
