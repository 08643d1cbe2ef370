package internal

import (
	"regexp"
	"slices"
	"strings"
)

// Name used for the loader chain of resources that went through no loaders at all
const NoLoadersName = "modules with no loaders"

// The package directly below the last node_modules directory. Pre-compiled for performance.
var loaderPackageRegex = regexp.MustCompile(`^.*/node_modules/(@[a-z0-9][\w.-]*/[a-z0-9][\w.-]*|[^/]+)`)

// LoaderName returns the package name of a loader from its path, e.g. "babel-loader" for
// "/app/node_modules/babel-loader/lib/index.js". Returns an empty string if the path isn't
// inside node_modules.
func LoaderName(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")

	m := loaderPackageRegex.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

// LoaderDisplayName is the name a loader is grouped and reported under: its package name, or the
// normalised path for loaders outside node_modules.
func LoaderDisplayName(path string) string {
	if name := LoaderName(path); name != "" {
		return name
	}
	return strings.ReplaceAll(path, `\`, "/")
}

// LoaderNames returns the names of the given loader paths, leaving out names containing any of
// the exclude strings. Paths outside node_modules are kept as they are.
func LoaderNames(paths []string, exclude []string) []string {
	if len(paths) == 0 {
		return []string{NoLoadersName}
	}

	var names []string
	for _, path := range paths {
		name := LoaderDisplayName(path)
		if isExcluded(name, exclude) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func isExcluded(name string, exclude []string) bool {
	return slices.ContainsFunc(exclude, func(e string) bool {
		return e != "" && strings.Contains(name, e)
	})
}
