package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"akamai-mcp-gateway/pkg/logging"
)

// productAliases maps a catalog directory's raw name to the product tag
// used in tool names and list_operations filtering.
type productAliases struct {
	Aliases map[string]string `yaml:"aliases"`
}

// loadProductAliases reads root/registry.yaml if present. A missing file is
// not an error — the raw directory name is used verbatim.
func loadProductAliases(root string) (map[string]string, error) {
	path := filepath.Join(root, "registry.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var parsed productAliases
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(parsed.Aliases) > 0 {
		logging.InfoFields("Registry", "loaded product aliases", map[string]interface{}{
			"path": path, "count": len(parsed.Aliases),
		})
	}
	return parsed.Aliases, nil
}

func applyAliases(files []specFile, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}
	for i := range files {
		if alias, ok := aliases[files[i].product]; ok {
			files[i].product = alias
		}
	}
}
