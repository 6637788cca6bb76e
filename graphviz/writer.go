package graphviz

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/jt05610/spn"
)

type Writer struct {
	*Config
	g       *cgraph.Graph
	mapping map[string]*cgraph.Node
}

func (w *Writer) writePlace(i int, p *spn.Place, tokens int) error {
	node, err := w.g.CreateNode(fmt.Sprintf("p%d", i))
	if err != nil {
		return err
	}
	label := p.Name
	if tokens > 0 {
		label += "\n" + strconv.Itoa(tokens)
	}
	if p.Bound > 0 {
		label += fmt.Sprintf("\n≤%d", p.Bound)
	}
	node.SetShape(cgraph.CircleShape)
	node.SetLabel(label)
	node.Set("fontname", string(w.Font))
	w.mapping[p.Name] = node
	return nil
}

// Immediate transitions are drawn as bars, invisible ones filled.
func (w *Writer) writeTransition(i int, t *spn.Transition) error {
	node, err := w.g.CreateNode(fmt.Sprintf("t%d", i))
	if err != nil {
		return err
	}
	w.mapping[t.Label()] = node
	node.SetShape(cgraph.BoxShape)
	node.Set("fontname", string(w.Font))
	label := t.Label()
	switch {
	case t.IsImmediate():
		node.Set("height", "0.1")
		node.Set("xlabel", label)
		label = ""
	case t.Distribution() != nil && w.Laws:
		label += "\n" + t.Distribution().String()
	}
	if t.Invisible() {
		node.Set("style", "filled")
		node.Set("fillcolor", "gray30")
	}
	node.SetLabel(label)
	return nil
}

func (w *Writer) writeArc(i int, a *spn.Arc) error {
	src, ok := w.mapping[a.Src.String()]
	if !ok {
		return fmt.Errorf("arc %s: %w", a, spn.ErrNotFound)
	}
	dst, ok := w.mapping[a.Dest.String()]
	if !ok {
		return fmt.Errorf("arc %s: %w", a, spn.ErrNotFound)
	}
	e, err := w.g.CreateEdge(fmt.Sprintf("a%d", i), src, dst)
	if err != nil {
		return err
	}
	if a.Weight > 1 {
		e.SetLabel(strconv.Itoa(a.Weight))
	}
	return nil
}

// Flush renders net in the configured format. Places holding tokens in
// marking show their count.
func (w *Writer) Flush(out io.Writer, net *spn.Net, marking map[string]int) error {
	graph := graphviz.New()
	defer func() {
		_ = graph.Close()
	}()
	g, err := graph.Graph(graphviz.Name(w.Name))
	if err != nil {
		return err
	}
	defer func() {
		_ = g.Close()
	}()
	g.SetRankDir(cgraph.RankDir(w.RankDir))
	w.g = g
	w.mapping = make(map[string]*cgraph.Node, len(net.Places)+len(net.Transitions))
	for i, p := range net.Places {
		if err := w.writePlace(i, p, marking[p.Name]); err != nil {
			return err
		}
	}
	for i, t := range net.Transitions {
		if err := w.writeTransition(i, t); err != nil {
			return err
		}
	}
	for i, a := range net.Arcs {
		if err := w.writeArc(i, a); err != nil {
			return err
		}
	}
	return graph.Render(w.g, w.Format, out)
}

type Font string

const (
	Helvetica Font = "Helvetica"
	SansSerif Font = "sans-serif"
	Times     Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	TopToBottom RankDir = "TB"
)

// ParseFormat accepts the output formats the writer supports.
func ParseFormat(s string) (graphviz.Format, error) {
	switch f := graphviz.Format(s); f {
	case graphviz.XDOT, graphviz.SVG, graphviz.PNG, graphviz.JPG:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

type Config struct {
	Name string
	Font
	RankDir
	Format graphviz.Format
	// Laws adds the delay distribution to timed transition labels.
	Laws bool
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "spn"
	}
	if config.Format == "" {
		config.Format = graphviz.XDOT
	}
	if config.Font == "" {
		config.Font = Helvetica
	}
	if config.RankDir == "" {
		config.RankDir = LeftToRight
	}
	return &Writer{Config: config}
}
