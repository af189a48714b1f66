package actions

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/eastham/adsb-actions/lib/flight"
)

// expandShellTemplate substitutes flight fields into tmpl, the way
// spec.md §4.6's shell action describes ("template-expand with flight
// fields and spawn a subprocess"). No third-party templating library in
// the retrieved examples covers this narrow a need (a handful of named
// placeholders, not a general template language), so strings.NewReplacer
// is the documented stdlib exception (see DESIGN.md).
func expandShellTemplate(tmpl string, f flight.View) string {
	r := strings.NewReplacer(
		"{flight_id}", f.Identifier,
		"{lat}", strconv.FormatFloat(f.LastReport.Lat, 'f', 6, 64),
		"{lon}", strconv.FormatFloat(f.LastReport.Lon, 'f', 6, 64),
		"{alt}", strconv.FormatFloat(f.LastReport.AltBaro, 'f', 0, 64),
	)
	return r.Replace(tmpl)
}

// runShell spawns cmdline (already template-expanded) via the shell,
// discarding stdout/stderr per spec.md §4.6. The command runs
// fire-and-forget; callers do not wait on it blocking rule processing. A
// background goroutine still reaps it once it exits, so repeated shell
// actions cannot accumulate zombie processes.
func runShell(cmdline string) error {
	cmd := exec.Command("/bin/sh", "-c", cmdline)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
