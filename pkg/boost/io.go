package boost

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	fileMode   = 0644
	yamlIndent = 2
)

// Save writes the model as YAML.
func (m *Model) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return errors.Wrap(enc.Close(), "failed to flush model")
}

// SaveFile writes the model to path, replacing any existing file.
func (m *Model) SaveFile(path string) (retErr error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return errors.Wrapf(err, "failed to create model file: %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = errors.Wrapf(cerr, "failed to close model file: %s", path)
		}
	}()
	return m.Save(f)
}

// Load reads and validates a YAML model.
func Load(r io.Reader) (*Model, error) {
	var m Model
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to decode model")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads a model from path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open model file: %s", path)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load model file: %s", path)
	}
	return m, nil
}
