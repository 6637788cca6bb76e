package petrifile

import (
	"context"
	"errors"
	"io"

	"github.com/jt05610/spn"
)

var ErrNotSerializable = errors.New("transition law cannot be written to a model file")

// Model is a net together with the markings a run starts and ends at.
type Model struct {
	Net     *spn.Net
	Initial map[string]int
	Final   map[string]int
}

type Service interface {
	Load(ctx context.Context, r io.Reader) (*Model, error)
	Save(ctx context.Context, w io.Writer, m *Model) error
	Version() Version
}

type Version string

const (
	V1 Version = "v1"
)
