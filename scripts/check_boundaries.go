package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "ensgrants"

// layerImports lists the layers of its own service each layer may import.
// A file directly in the service directory (module.go, doc.go) may import
// every layer of its service.
var layerImports = map[string][]string{
	"domain":      {"domain"},
	"ports":       {"domain", "ports"},
	"application": {"application", "domain", "ports"},
	"transport":   {"transport"},
	"adapters":    {"adapters", "application", "domain", "ports", "transport"},
}

// Layers that may import only the standard library and shared contracts.
var pureLayers = map[string]bool{
	"domain":      true,
	"ports":       true,
	"application": true,
	"transport":   true,
}

// compositionRoots are the only packages allowed to wire several services.
var compositionRoots = map[string]bool{
	"internal/app/bootstrap": true,
	"cmd/grantsctl":          true,
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

type sourceFile struct {
	path    string
	dir     string
	imports []importRef
}

type importRef struct {
	path string
	line int
}

func main() {
	root := flag.String("root", ".", "module root to scan")
	flag.Parse()

	violations, err := collectViolations(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) ([]violation, error) {
	files, err := loadSources(root)
	if err != nil {
		return nil, err
	}

	var violations []violation
	for _, file := range files {
		parts := strings.Split(file.dir, "/")
		switch {
		case parts[0] == "contexts":
			violations = append(violations, checkContextFile(file)...)
		case strings.HasPrefix(file.dir, "internal/platform"):
			violations = append(violations, checkPlatformFile(file)...)
		}
	}
	violations = append(violations, checkCompositionRoots(files)...)

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})
	return violations, nil
}

func loadSources(root string) ([]sourceFile, error) {
	var files []sourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		fset := token.NewFileSet()
		parsed, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("parse %s: %w", rel, err)
		}
		file := sourceFile{path: rel, dir: filepath.ToSlash(filepath.Dir(rel))}
		for _, imp := range parsed.Imports {
			file.imports = append(file.imports, importRef{
				path: strings.Trim(imp.Path.Value, "\""),
				line: fset.Position(imp.Pos()).Line,
			})
		}
		files = append(files, file)
		return nil
	})
	return files, err
}

func checkContextFile(file sourceFile) []violation {
	parts := strings.Split(file.dir, "/")
	if len(parts) < 3 {
		return nil
	}
	service := strings.Join(parts[:3], "/")
	layer := ""
	if len(parts) > 3 {
		layer = parts[3]
	}

	var violations []violation
	add := func(imp importRef, rule string) {
		violations = append(violations, violation{File: file.path, Line: imp.line, Import: imp.path, Rule: rule})
	}

	for _, imp := range file.imports {
		target, internal := localPath(imp.path)
		switch {
		case !internal:
			if pureLayers[layer] && !isStdlib(imp.path) {
				add(imp, layer+" may only use the standard library")
			}
		case strings.HasPrefix(target, "contracts/"):
			if layer == "domain" {
				add(imp, "domain must not depend on event contracts")
			}
		case strings.HasPrefix(target, "internal/"), strings.HasPrefix(target, "cmd/"):
			add(imp, "contexts must not import runtime packages")
		case !hasPrefix(target, service):
			add(imp, "services must not import other services")
		case layer != "":
			targetLayer := serviceLayer(target)
			if !contains(layerImports[layer], targetLayer) {
				add(imp, fmt.Sprintf("%s must not import %s", layer, targetLayer))
			}
		}
	}
	return violations
}

func checkPlatformFile(file sourceFile) []violation {
	var violations []violation
	for _, imp := range file.imports {
		target, internal := localPath(imp.path)
		if !internal {
			continue
		}
		if strings.HasPrefix(target, "internal/app/") || strings.HasPrefix(target, "cmd/") {
			violations = append(violations, violation{
				File:   file.path,
				Line:   imp.line,
				Import: imp.path,
				Rule:   "platform must not import app wiring",
			})
		}
	}
	return violations
}

// checkCompositionRoots flags packages outside contexts that reach into more
// than one service, unless they are a declared composition root.
func checkCompositionRoots(files []sourceFile) []violation {
	seen := make(map[string]string)

	var violations []violation
	for _, file := range files {
		if strings.HasPrefix(file.dir, "contexts/") || compositionRoots[file.dir] {
			continue
		}
		for _, imp := range file.imports {
			target, internal := localPath(imp.path)
			if !internal || !strings.HasPrefix(target, "contexts/") {
				continue
			}
			service := contextService(target)
			prior, ok := seen[file.dir]
			if !ok {
				seen[file.dir] = service
				continue
			}
			if prior != service {
				violations = append(violations, violation{
					File:   file.path,
					Line:   imp.line,
					Import: imp.path,
					Rule:   "only composition roots may wire several services (already uses " + prior + ")",
				})
			}
		}
	}
	return violations
}

// localPath strips the module prefix. The bool reports whether importPath
// belongs to this module.
func localPath(importPath string) (string, bool) {
	if !strings.HasPrefix(importPath, modulePath+"/") {
		return "", false
	}
	return strings.TrimPrefix(importPath, modulePath+"/"), true
}

func contextService(target string) string {
	parts := strings.Split(target, "/")
	if len(parts) < 3 {
		return target
	}
	return strings.Join(parts[:3], "/")
}

func serviceLayer(target string) string {
	parts := strings.Split(target, "/")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func contains(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".") && first != modulePath
}
