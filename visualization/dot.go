package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/anggasct/crossway"
)

// DOTGenerator generates Graphviz DOT format representations of intersection snapshots
type DOTGenerator struct {
	snapshot *crossway.Snapshot
	options  DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowVehicles      bool
	ShowPriorityOrder bool
	RankDirection     string // "TB", "LR", "BT", "RL"
	NodeShape         string
	JunctionShape     string
	GreenColor        string
	RedColor          string
	PriorityColor     string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowVehicles:      false,
		ShowPriorityOrder: true,
		RankDirection:     "LR",
		NodeShape:         "box",
		JunctionShape:     "octagon",
		GreenColor:        "palegreen",
		RedColor:          "lightcoral",
		PriorityColor:     "orange",
	}
}

// NewDOTGenerator creates a new DOT generator for the given snapshot
func NewDOTGenerator(snapshot *crossway.Snapshot, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		snapshot: snapshot,
		options:  opts,
	}
}

// Generate creates a DOT representation of the snapshot
func (g *DOTGenerator) Generate() (string, error) {
	if g.snapshot == nil {
		return "", fmt.Errorf("no snapshot to render")
	}

	var dot strings.Builder

	dot.WriteString("digraph Intersection {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  label=\"tick %d\";\n", g.snapshot.Tick))
	dot.WriteString("  edge [fontsize=10];\n\n")

	dot.WriteString(fmt.Sprintf("  \"junction\" [shape=%s label=\"junction\"];\n\n", g.options.JunctionShape))

	g.generateLanes(&dot)
	g.generateFlows(&dot)
	if g.options.ShowPriorityOrder {
		g.generatePriorityOrder(&dot)
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

// generateLanes generates a node per scheduling lane
func (g *DOTGenerator) generateLanes(dot *strings.Builder) {
	dot.WriteString("  // Lanes\n")

	for _, lane := range g.snapshot.Lanes {
		fillColor := g.options.RedColor
		if lane.Light == crossway.LightGreen.String() {
			fillColor = g.options.GreenColor
		}

		label := fmt.Sprintf("%s\\n%d waiting", lane.ID, lane.Size)
		if g.options.ShowVehicles && len(lane.Vehicles) > 0 {
			label += "\\n" + joinVehicles(lane.Vehicles, "\\n")
		}

		border := ""
		if lane.ID == g.snapshot.ActivePriorityLane {
			border = fmt.Sprintf(" color=%s penwidth=3", g.options.PriorityColor)
			label += "\\n(priority)"
		}

		dot.WriteString(fmt.Sprintf("  \"%s\" [shape=%s style=\"filled\" fillcolor=%s%s label=\"%s\"];\n",
			lane.ID, g.options.NodeShape, fillColor, border, label))
	}
	dot.WriteString("\n")
}

// generateFlows generates an edge from each lane into the junction
func (g *DOTGenerator) generateFlows(dot *strings.Builder) {
	dot.WriteString("  // Flows\n")

	for _, lane := range g.snapshot.Lanes {
		style := "dashed"
		if lane.Light == crossway.LightGreen.String() {
			style = "bold"
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"junction\" [style=%s label=\"%s\"];\n", lane.ID, style, lane.Light))
	}
	dot.WriteString("\n")
}

// generatePriorityOrder chains the registry order with invisible-weight edges
func (g *DOTGenerator) generatePriorityOrder(dot *strings.Builder) {
	order := g.snapshot.PriorityOrder
	if len(order) < 2 {
		return
	}

	dot.WriteString("  // Priority order\n")
	for k := 1; k < len(order); k++ {
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [style=dotted color=gray constraint=false];\n",
			order[k-1], order[k]))
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator renders the DOT output to SVG with the Graphviz dot binary
type SVGGenerator struct {
	dotGenerator *DOTGenerator
	dotPath      string
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(snapshot *crossway.Snapshot, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(snapshot, options...),
		dotPath:      "dot",
	}
}

// Generate pipes the DOT representation through "dot -Tsvg"
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(g.dotPath, "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("graphviz %s failed: %w: %s", g.dotPath, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// GenerateToFile writes the SVG representation to a file
func (g *SVGGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// WriteDiagram writes the snapshot to filename, as SVG when the name ends
// in ".svg" and as DOT otherwise
func WriteDiagram(filename string, snapshot *crossway.Snapshot, options ...DOTOptions) error {
	if strings.EqualFold(filepath.Ext(filename), ".svg") {
		return NewSVGGenerator(snapshot, options...).GenerateToFile(filename)
	}
	return NewDOTGenerator(snapshot, options...).GenerateToFile(filename)
}

func joinVehicles(vehicles []crossway.Vehicle, sep string) string {
	ids := make([]string, len(vehicles))
	for k, v := range vehicles {
		ids[k] = string(v)
	}
	return strings.Join(ids, sep)
}
