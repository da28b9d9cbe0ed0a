// Package visualization renders intersection snapshots for people
package visualization

import (
	"fmt"
	"io"
	"strings"

	"github.com/anggasct/crossway"
)

const divider = "============================================================"

// TextRenderer writes the per-step status block of the console simulator
type TextRenderer struct {
	out io.Writer
}

// NewTextRenderer creates a renderer writing to out
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{out: out}
}

// Render writes one status block
func (r *TextRenderer) Render(step uint64, snapshot *crossway.Snapshot) error {
	_, err := io.WriteString(r.out, FormatStatus(step, snapshot))
	return err
}

// FormatStatus formats the lane sizes, lights and queued vehicles of a
// snapshot followed by the active priority lane
func FormatStatus(step uint64, snapshot *crossway.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n\t\t\tSimulation Step %d\t\t\t\n\n", step)
	for _, lane := range snapshot.Lanes {
		fmt.Fprintf(&b, "%s: size= %d, light=%s, vehicles= [%s]\n",
			lane.ID, lane.Size, lane.Light, joinVehicles(lane.Vehicles, ", "))
	}

	active := snapshot.ActivePriorityLane
	if active == "" {
		active = "None"
	}
	fmt.Fprintf(&b, "Active priority lane: %s\n", active)
	b.WriteString(divider + "\n")

	return b.String()
}
