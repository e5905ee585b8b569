package registry

import "os"

// osReadDir is a thin indirection over os.ReadDir so loader tests can swap
// in a fixture filesystem layout without touching real disk paths.
var osReadDir = func(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}
