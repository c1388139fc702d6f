package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "academy"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-repo prefixes a context layer may import, relative
// to the context root, plus whole-repo prefixes such as contracts.
type layerRule struct {
	ownLayers []string
	repoRoots []string
	// thirdParty reports whether non-stdlib, non-repo imports are allowed.
	thirdParty bool
}

var contextLayers = map[string]layerRule{
	"domain":      {ownLayers: []string{"domain"}},
	"ports":       {ownLayers: []string{"domain"}, repoRoots: []string{"contracts"}},
	"application": {ownLayers: []string{"application", "domain", "ports"}, repoRoots: []string{"contracts"}},
	"transport":   {},
	"adapters":    {ownLayers: []string{"application", "domain", "ports", "transport"}, repoRoots: []string{"contracts"}, thirdParty: true},
}

// platformContextLayers are the parts of a context that platform packages
// may reach; use cases and adapters are wired only by the composition root.
var platformContextLayers = []string{"ports", "transport", "domain/errors"}

func main() {
	violations := collectContextViolations("contexts")
	violations = append(violations, collectPlatformViolations(filepath.Join("internal", "platform"))...)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectContextViolations checks contexts/<area>/<service>/<layer>/... files.
// Files at the service root (module.go) compose the layers and are exempt.
func collectContextViolations(root string) []violation {
	var violations []violation
	walkSources(root, func(path string, normalized string) {
		parts := strings.Split(normalized, "/")
		if len(parts) < 5 {
			return
		}
		contextRoot := modulePath + "/" + strings.Join(parts[:3], "/")
		layer := parts[3]
		rule, known := contextLayers[layer]
		if !known {
			violations = append(violations, violation{File: normalized, Line: 1, Rule: fmt.Sprintf("unknown layer %q", layer)})
			return
		}

		forEachImport(path, normalized, &violations, func(importPath string, line int) {
			violations = append(violations, checkContextImport(normalized, line, importPath, contextRoot, layer, rule)...)
		})
	})
	return violations
}

func checkContextImport(file string, line int, importPath string, contextRoot string, layer string, rule layerRule) []violation {
	report := func(reason string) []violation {
		return []violation{{File: file, Line: line, Import: importPath, Rule: reason}}
	}

	if isStdlib(importPath) {
		return nil
	}
	if !isRepoImport(importPath) {
		if rule.thirdParty {
			return nil
		}
		return report(layer + " must not import third-party packages")
	}
	if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, contextRoot) {
		return report("cross-context imports are forbidden")
	}
	if hasPrefix(importPath, modulePath+"/internal") || hasPrefix(importPath, modulePath+"/cmd") {
		return report(layer + " must not import runtime infrastructure")
	}
	if layer == "adapters" && hasPrefix(importPath, contextRoot+"/adapters") {
		return report("adapters must not import each other")
	}

	for _, own := range rule.ownLayers {
		if hasPrefix(importPath, contextRoot+"/"+own) {
			return nil
		}
	}
	for _, repoRoot := range rule.repoRoots {
		if hasPrefix(importPath, modulePath+"/"+repoRoot) {
			return nil
		}
	}
	return report(layer + " import is outside explicit allowlist")
}

func collectPlatformViolations(root string) []violation {
	var violations []violation
	walkSources(root, func(path string, normalized string) {
		forEachImport(path, normalized, &violations, func(importPath string, line int) {
			if !hasPrefix(importPath, modulePath+"/contexts") {
				return
			}
			parts := strings.Split(strings.TrimPrefix(importPath, modulePath+"/"), "/")
			if len(parts) <= 3 {
				return
			}
			rest := strings.Join(parts[3:], "/")
			for _, allowed := range platformContextLayers {
				if hasPrefix(rest, allowed) {
					return
				}
			}
			violations = append(violations, violation{
				File:   normalized,
				Line:   line,
				Import: importPath,
				Rule:   "platform may reach a context only through its module, ports, transport or domain errors",
			})
		})
	})
	return violations
}

func walkSources(root string, visit func(path string, normalized string)) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		visit(path, filepath.ToSlash(path))
		return nil
	})
}

func forEachImport(path string, normalized string, violations *[]violation, fn func(importPath string, line int)) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		*violations = append(*violations, violation{File: normalized, Line: 1, Rule: "file must parse"})
		return
	}
	for _, imp := range file.Imports {
		fn(strings.Trim(imp.Path.Value, "\""), fset.Position(imp.Pos()).Line)
	}
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isRepoImport(importPath string) bool {
	return hasPrefix(importPath, modulePath)
}

func isStdlib(importPath string) bool {
	first := strings.SplitN(importPath, "/", 2)[0]
	return !strings.Contains(first, ".") && first != modulePath
}
