package yaml

import (
	"context"
	"errors"
	"io"

	pf "github.com/jt05610/spn/petrifile"
	"github.com/jt05610/spn/petrifile/v1"
	"gopkg.in/yaml.v3"
)

var _ pf.Service = (*Service)(nil)

type Service struct {
}

func (s *Service) Load(_ context.Context, r io.Reader) (*pf.Model, error) {
	var f petrifile.Petrifile
	err := yaml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, err
	}
	return f.Model()
}

func (s *Service) Save(_ context.Context, w io.Writer, m *pf.Model) error {
	if m == nil || m.Net == nil {
		return errors.New("nothing to save")
	}
	f, err := petrifile.New(m)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Service) Version() pf.Version {
	return pf.V1
}
