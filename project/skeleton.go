package project

import (
	"fmt"
	"strings"

	"github.com/hupe1980/codesmith/internal/util"
)

// Skeleton describes the file layout generated for a tech stack. The entry
// point template carries a {{.Code}} marker where generated code is placed.
type Skeleton struct {
	TechStack         string
	EntryPoint        string
	SetupInstructions string
	Templates         map[string]string
}

// skeletons maps normalized tech stack names to their layouts.
var skeletons = map[string]Skeleton{
	"python": {
		TechStack:         "python",
		EntryPoint:        "main.py",
		SetupInstructions: "python3 main.py",
		Templates: map[string]string{
			"main.py":          "{{.Code}}\n",
			"requirements.txt": "",
			"README.md":        "# {{.Name}}\n\n{{.Description}}\n\n## Run\n\n```\npython3 main.py\n```\n",
		},
	},
	"flask": {
		TechStack:         "flask",
		EntryPoint:        "app.py",
		SetupInstructions: "pip install -r requirements.txt && python3 app.py",
		Templates: map[string]string{
			"app.py":           "{{.Code}}\n",
			"requirements.txt": "flask\n",
			"README.md":        "# {{.Name}}\n\n{{.Description}}\n\n## Run\n\n```\npip install -r requirements.txt\npython3 app.py\n```\n",
		},
	},
	"node": {
		TechStack:         "node",
		EntryPoint:        "index.js",
		SetupInstructions: "npm install && node index.js",
		Templates: map[string]string{
			"index.js":     "{{.Code}}\n",
			"package.json": "{\n  \"name\": \"{{lower .Name}}\",\n  \"version\": \"0.1.0\",\n  \"main\": \"index.js\"\n}\n",
			"README.md":    "# {{.Name}}\n\n{{.Description}}\n\n## Run\n\n```\nnpm install\nnode index.js\n```\n",
		},
	},
	"express": {
		TechStack:         "express",
		EntryPoint:        "index.js",
		SetupInstructions: "npm install && node index.js",
		Templates: map[string]string{
			"index.js":     "{{.Code}}\n",
			"package.json": "{\n  \"name\": \"{{lower .Name}}\",\n  \"version\": \"0.1.0\",\n  \"main\": \"index.js\",\n  \"dependencies\": {\n    \"express\": \"^4.19.0\"\n  }\n}\n",
			"README.md":    "# {{.Name}}\n\n{{.Description}}\n\n## Run\n\n```\nnpm install\nnode index.js\n```\n",
		},
	},
	"go": {
		TechStack:         "go",
		EntryPoint:        "main.go",
		SetupInstructions: "go run .",
		Templates: map[string]string{
			"main.go":   "{{.Code}}\n",
			"go.mod":    "module {{lower .Name}}\n\ngo 1.24\n",
			"README.md": "# {{.Name}}\n\n{{.Description}}\n\n## Run\n\n```\ngo run .\n```\n",
		},
	},
}

// SkeletonFor resolves a tech stack to its skeleton. Unknown or empty stacks
// fall back to the plain python layout.
func SkeletonFor(techStack string) Skeleton {
	key := strings.ToLower(strings.TrimSpace(techStack))
	switch key {
	case "javascript", "js", "nodejs":
		key = "node"
	case "golang":
		key = "go"
	case "py", "":
		key = "python"
	}
	if sk, ok := skeletons[key]; ok {
		return sk
	}
	return skeletons["python"]
}

// Render files the skeleton out with the project's name, description, and
// generated code substituted into the templates.
func (sk Skeleton) Render(name, description, code string) ([]ProjectFile, error) {
	state := map[string]any{
		"Name":        sanitizeName(name),
		"Description": description,
		"Code":        strings.TrimRight(code, "\n"),
	}

	files := make([]ProjectFile, 0, len(sk.Templates))
	for path, tmpl := range sk.Templates {
		rendered, err := util.RenderTemplate(tmpl, state)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", path, err)
		}
		files = append(files, NewProjectFile(path, []byte(rendered)))
	}
	sortFiles(files)
	return files, nil
}

// sanitizeName keeps project names safe to embed in manifests.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "untitled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == ' ', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}
