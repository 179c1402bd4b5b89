/*
PURPOSE:
  Loads repository documentation in the different measurable formats.
  Given a format (and the active question's category for selective
  loading), deterministically selects and concatenates the files that
  constitute that format's context.

REQUIREMENTS:
  User-specified:
  - README_ONLY, AGENTS_ONLY, AICAC, AICAC_SELECTIVE formats.
  - A missing required file must abort the format, not silently shrink
    the context; a truncated context invalidates the comparison.

  Implementation-discovered:
  - .ai/*.yaml files are loaded in sorted order for determinism.
  - Selective loading keys off the question ID's category prefix.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Uses: internal/model

ERROR HANDLING:
  - Every absence of a required file wraps ErrMissingFile with the file
    path and format name.

IMPLEMENTATION RULES:
  - Use os.ReadFile; no caching. The files are small and re-reading
    keeps trials honest.
  - Concatenation layout mirrors what an AI tool would see: sections
    separated by blank lines, .ai/ files prefixed with a source header.

USAGE:
  l := docs.NewLoader("/path/to/repo")
  ctx, err := l.Load(model.FormatAICaC, "IR")

SELF-HEALING INSTRUCTIONS:
  - If a new format is added, extend Load's switch and the required
    file sets together.

RELATED FILES:
  - internal/model/types.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update CategoryFiles when the .ai/ schema grows new files.
*/

package docs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aicac-project/tokenmeter/internal/model"
)

// ErrMissingFile marks a format whose required documentation file is
// absent. The run for that format must abort before any measurement.
var ErrMissingFile = errors.New("required documentation file missing")

// CategoryFiles maps question category prefixes to the .ai/ files
// relevant to that kind of question.
var CategoryFiles = map[string][]string{
	"IR": {"context.yaml"},                  // information retrieval - project overview
	"AU": {"architecture.yaml", "decisions.yaml"}, // architecture understanding
	"CW": {"workflows.yaml", "errors.yaml"}, // common workflows
	"ER": {"errors.yaml"},                   // error resolution
}

// fallbackCategoryFile is loaded when a question category has no mapping.
const fallbackCategoryFile = "context.yaml"

// Context is the concatenated documentation for one format, plus the
// list of files it was built from (repo-relative, load order).
type Context struct {
	Content string
	Files   []string
}

// Loader selects documentation files under one repository root.
type Loader struct {
	repoPath string
}

// NewLoader creates a Loader rooted at repoPath.
func NewLoader(repoPath string) *Loader {
	return &Loader{repoPath: repoPath}
}

// Load builds the context for a format. category is the active
// question's category prefix and only affects AICAC_SELECTIVE.
func (l *Loader) Load(format model.Format, category string) (Context, error) {
	switch format {
	case model.FormatReadmeOnly:
		return l.loadReadmeOnly()
	case model.FormatAgentsOnly:
		return l.loadAgentsOnly()
	case model.FormatAICaC:
		return l.loadFull()
	case model.FormatAICaCSelective:
		return l.loadSelective(category)
	default:
		return Context{}, fmt.Errorf("unknown format: %s", format)
	}
}

// loadReadmeOnly loads README.md alone (the baseline).
func (l *Loader) loadReadmeOnly() (Context, error) {
	content, err := l.readRequired("README.md", model.FormatReadmeOnly)
	if err != nil {
		return Context{}, err
	}
	return Context{Content: content, Files: []string{"README.md"}}, nil
}

// loadAgentsOnly loads README.md + AGENTS.md.
func (l *Loader) loadAgentsOnly() (Context, error) {
	readme, err := l.readRequired("README.md", model.FormatAgentsOnly)
	if err != nil {
		return Context{}, err
	}
	agents, err := l.readRequired("AGENTS.md", model.FormatAgentsOnly)
	if err != nil {
		return Context{}, err
	}
	return Context{
		Content: readme + "\n\n" + agents,
		Files:   []string{"README.md", "AGENTS.md"},
	}, nil
}

// loadFull loads README.md + AGENTS.md + all .ai/ files. This is what
// current AI tools load out of the box: everything they find.
func (l *Loader) loadFull() (Context, error) {
	readme, err := l.readRequired("README.md", model.FormatAICaC)
	if err != nil {
		return Context{}, err
	}
	agents, err := l.readRequired("AGENTS.md", model.FormatAICaC)
	if err != nil {
		return Context{}, err
	}

	var sb strings.Builder
	sb.WriteString(readme)
	sb.WriteString("\n\n")
	sb.WriteString(agents)
	sb.WriteString("\n\n")
	files := []string{"README.md", "AGENTS.md"}

	aiDir := filepath.Join(l.repoPath, ".ai")
	entries, err := os.ReadDir(aiDir)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %s (format %s): %v", ErrMissingFile, aiDir, model.FormatAICaC, err)
	}

	var yamlNames []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			yamlNames = append(yamlNames, e.Name())
		}
	}
	if len(yamlNames) == 0 {
		return Context{}, fmt.Errorf("%w: no .ai/*.yaml files in %s (format %s)", ErrMissingFile, aiDir, model.FormatAICaC)
	}
	sort.Strings(yamlNames)

	for _, name := range yamlNames {
		data, err := os.ReadFile(filepath.Join(aiDir, name))
		if err != nil {
			return Context{}, fmt.Errorf("%w: .ai/%s (format %s): %v", ErrMissingFile, name, model.FormatAICaC, err)
		}
		sb.WriteString(fmt.Sprintf("\n# From .ai/%s\n\n", name))
		sb.Write(data)
		sb.WriteString("\n")
		files = append(files, ".ai/"+name)
	}

	// .ai/README.md is optional documentation about the convention itself.
	if data, err := os.ReadFile(filepath.Join(aiDir, "README.md")); err == nil {
		sb.WriteString("\n# From .ai/README.md\n\n")
		sb.Write(data)
		files = append(files, ".ai/README.md")
	}

	return Context{Content: sb.String(), Files: files}, nil
}

// loadSelective loads AGENTS.md (the router) plus only the .ai/ files
// mapped to the question category. This simulates an AI tool that
// follows the AGENTS.md routing guidance.
func (l *Loader) loadSelective(category string) (Context, error) {
	agents, err := l.readRequired("AGENTS.md", model.FormatAICaCSelective)
	if err != nil {
		return Context{}, err
	}

	var sb strings.Builder
	sb.WriteString(agents)
	sb.WriteString("\n\n")
	files := []string{"AGENTS.md"}

	relevant, ok := CategoryFiles[category]
	if !ok {
		relevant = []string{fallbackCategoryFile}
	}

	for _, name := range relevant {
		data, err := os.ReadFile(filepath.Join(l.repoPath, ".ai", name))
		if err != nil {
			return Context{}, fmt.Errorf("%w: .ai/%s (format %s, category %s): %v",
				ErrMissingFile, name, model.FormatAICaCSelective, category, err)
		}
		sb.WriteString(fmt.Sprintf("# From .ai/%s\n\n", name))
		sb.Write(data)
		sb.WriteString("\n\n")
		files = append(files, ".ai/"+name)
	}

	return Context{Content: sb.String(), Files: files}, nil
}

func (l *Loader) readRequired(name string, format model.Format) (string, error) {
	path := filepath.Join(l.repoPath, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s (format %s): %v", ErrMissingFile, path, format, err)
	}
	return string(data), nil
}
