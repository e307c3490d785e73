package chromem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kxddry/rag-qa/internal/domain"
)

const manifestFile = "manifest.yaml"

func readManifest(dir string) (domain.IndexInfo, error) {
	var info domain.IndexInfo
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return info, fmt.Errorf("%w: no %s in %s", domain.ErrStoreNotFound, manifestFile, dir)
		}
		return info, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("parsing manifest: %w", err)
	}
	return info, nil
}

func writeManifest(dir string, info domain.IndexInfo) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
