// Package prompts renders the prompt templates embedded in the binary.
//
// Templates are plain text files with {name} placeholders ({{ and }}
// escape literal braces). The store loads lazily on first render and is
// read-only afterwards, so concurrent renders need no locking beyond the
// one-time initialization guard.
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// Template identifiers, one per tool operation.
const (
	GenerateCode     = "generate_code"
	RefactorCode     = "refactor_code"
	WriteTests       = "write_tests"
	ExplainCode      = "explain_code"
	GenerateDocs     = "generate_docs"
	MigrateCode      = "migrate_code"
	WriteOpenAIAgent = "write_openai_agent"
)

// ErrUnknownTemplate is returned when a template id has no registered
// body. Wrapped with the offending id.
var ErrUnknownTemplate = errors.New("unknown template")

// MissingParamsError reports every placeholder the parameter map lacked.
type MissingParamsError struct {
	Template string
	Params   []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("template %q missing parameters: %s",
		e.Template, strings.Join(e.Params, ", "))
}

// Renderer substitutes named parameters into a template body.
type Renderer interface {
	Render(id string, params map[string]string) (string, error)
}

//go:embed templates/*.txt
var templateFS embed.FS

var (
	loadOnce sync.Once
	store    map[string]string
	loadErr  error
)

func load() {
	store = make(map[string]string)
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		loadErr = fmt.Errorf("reading embedded templates: %w", err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".txt") {
			continue
		}
		body, err := fs.ReadFile(templateFS, "templates/"+name)
		if err != nil {
			loadErr = fmt.Errorf("reading template %s: %w", name, err)
			return
		}
		store[strings.TrimSuffix(name, ".txt")] = string(body)
	}
}

type embedRenderer struct{}

// NewRenderer returns the renderer backed by the embedded template store.
func NewRenderer() Renderer {
	return embedRenderer{}
}

// Render looks up the template and substitutes every placeholder exactly
// once. All missing placeholders are collected before failing so the
// caller sees the full list.
func (embedRenderer) Render(id string, params map[string]string) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}

	body, ok := store[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return substitute(id, body, params)
}

// Body returns a template's raw text with placeholders intact.
func Body(id string) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}
	body, ok := store[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return body, nil
}

// List returns the registered template ids in sorted order.
func List() []string {
	loadOnce.Do(load)
	ids := make([]string, 0, len(store))
	for id := range store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func substitute(id, body string, params map[string]string) (string, error) {
	var (
		b       strings.Builder
		missing []string
		seen    = make(map[string]bool)
	)

	for i := 0; i < len(body); {
		switch {
		case body[i] == '{' && i+1 < len(body) && body[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case body[i] == '}' && i+1 < len(body) && body[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case body[i] == '{':
			end := strings.IndexByte(body[i:], '}')
			if end < 0 {
				// Unterminated placeholder: emit the rest verbatim.
				b.WriteString(body[i:])
				i = len(body)
				continue
			}
			name := body[i+1 : i+end]
			if value, ok := params[name]; ok {
				b.WriteString(value)
			} else if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			i += end + 1
		default:
			b.WriteByte(body[i])
			i++
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingParamsError{Template: id, Params: missing}
	}
	return b.String(), nil
}
