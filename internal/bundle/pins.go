package bundle

import (
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"github.com/google/renameio/v2"
	"sigs.k8s.io/yaml"
)

// PinsFilename is the name of the optional version-pin snapshot copied into
// a bundle. The snapshot is informational only; it records which component
// versions the bundle was built against.
const PinsFilename = "versions.yaml"

func readPins(path string) (map[string]semver.Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse version pins %q: %w", path, err)
	}
	pins := make(map[string]semver.Version, len(raw))
	for name, value := range raw {
		v, err := semver.ParseTolerant(value)
		if err != nil {
			return nil, fmt.Errorf("version pin %q: invalid version %q: %v", name, value, err)
		}
		pins[name] = v
	}
	return pins, nil
}

func copyPins(srcPath, dstPath string) (map[string]semver.Version, error) {
	pins, err := readPins(srcPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, err
	}
	if err := renameio.WriteFile(dstPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("copy version pins to %q: %w", dstPath, err)
	}
	return pins, nil
}
