package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mchmarny/pwdetect/pkg/boost"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	DefaultThreshold = 0.9
	DefaultTestSize  = 0.2
	DefaultSplitSeed = 42
	DefaultModelFile = "human_passwords_model.txt"
	DefaultPlotFile  = "feature_importance_plot.png"

	DefaultImportanceType = "split"
)

var importanceTypes = []string{"split", "gain"}

// Config represents app config object.
type Config struct {
	// Threshold is the probability above which a password is called human.
	Threshold float64 `yaml:"threshold"`
	TestSize  float64 `yaml:"test_size"`
	SplitSeed uint64  `yaml:"split_seed"`
	ModelFile string  `yaml:"model_file"`
	PlotFile  string  `yaml:"plot_file"`

	// ImportanceType ranks features by split count or total gain.
	ImportanceType string       `yaml:"importance_type"`
	Training       boost.Params `yaml:"training"`
}

// Default returns the configuration the classifier was designed with.
func Default() *Config {
	return &Config{
		Threshold: DefaultThreshold,
		TestSize:  DefaultTestSize,
		SplitSeed: DefaultSplitSeed,
		ModelFile: DefaultModelFile,
		PlotFile:  DefaultPlotFile,
		Training:  boost.DefaultParams(),

		ImportanceType: DefaultImportanceType,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.Errorf("threshold must be in [0, 1], got %v", c.Threshold)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.Errorf("test_size must be in (0, 1), got %v", c.TestSize)
	}
	if c.ModelFile == "" {
		return errors.New("model_file required")
	}
	if !slices.Contains(importanceTypes, c.ImportanceType) {
		return errors.Errorf("importance_type must be one of %v, got %q", importanceTypes, c.ImportanceType)
	}
	return errors.Wrap(c.Training.Validate(), "invalid training parameters")
}

// Save writes the config to the file at path.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// Load reads the config file at path. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file: %s", path)
	}
	return c, nil
}

// ReadOrCreate reads app config from directory or creates a default one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, Default()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	return Load(path)
}

// GetOrCreateHomeDir returns the app directory under the user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
