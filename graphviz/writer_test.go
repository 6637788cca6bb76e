package graphviz_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jt05610/spn/examples"
	"github.com/jt05610/spn/graphviz"
)

func TestWriter_Flush(t *testing.T) {
	m := examples.Pump()
	buf := new(bytes.Buffer)
	w := graphviz.New(&graphviz.Config{Laws: true})
	if err := w.Flush(buf, m.Net, m.Initial); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"digraph", "idle", "pumping", "finish", "normal", "repair", "p0 -> t0"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := graphviz.ParseFormat("svg"); err != nil || f != "svg" {
		t.Errorf("svg: %v %v", f, err)
	}
	if _, err := graphviz.ParseFormat("bmp"); err == nil {
		t.Error("bmp accepted")
	}
}
