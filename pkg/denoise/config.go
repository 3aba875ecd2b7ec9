package denoise

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// A ResultConfig describes one training result: what the model consumes, and
// which model/transfer kinds to instantiate. It lives in the result directory
// as config.yaml, next to the checkpoints.
type ResultConfig struct {
	Features  []string `yaml:"features"`  // main feature first, e.g. [hdr, alb, nrm]
	Model     string   `yaml:"model"`     // see model.Kinds
	Transfer  string   `yaml:"transfer"`  // see transfer.Kinds
	Alignment int      `yaml:"alignment"` // optional override of the model's default
}

func (c ResultConfig)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("unmarshalable config: %v", err)
	}
	return string(b)
}

// LoadResultConfig reads <resultsDir>/<result>/config.yaml. A missing result
// directory is a fatal configuration error, surfaced before any inference.
func LoadResultConfig(resultsDir, result string) (ResultConfig, error) {
	dir := filepath.Join(resultsDir, result)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return ResultConfig{}, fmt.Errorf("result '%s' does not exist in %s", result, resultsDir)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return ResultConfig{}, fmt.Errorf("result config read: %v", err)
	}

	c := ResultConfig{}
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return ResultConfig{}, fmt.Errorf("result config parse: %v", err)
	}
	return c, nil
}
