package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// parseEdgercSection reads an INI-like file (spec §6.1) and returns the
// key/value pairs under the named section. Section headers are "[name]";
// "#" and ";" begin whole-line comments; keys are lowercased for
// case-insensitive lookup. A missing file is not an error — it returns an
// empty map so the environment can supply everything.
func parseEdgercSection(path, section string) (map[string]string, error) {
	values := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	defer f.Close()

	current := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if current != section {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return values, nil
}
