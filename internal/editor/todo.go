package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/amonks/todopro/todo"
)

// DateLayout is the due date format used in the template.
const DateLayout = "2006-01-02"

// TodoData is what the template shows.
type TodoData struct {
	// IsUpdate is true when editing an existing todo.
	IsUpdate    bool
	ID          string
	Title       string
	Status      string
	Priority    string
	Tags        []string
	Due         string
	Description string
}

// DefaultCreateData returns the values a new todo starts with.
func DefaultCreateData() TodoData {
	return TodoData{
		Status:   string(todo.StatusTodo),
		Priority: string(todo.PriorityMedium),
	}
}

// DataFromTodo fills the template from an existing todo.
func DataFromTodo(t todo.Todo) TodoData {
	data := TodoData{
		IsUpdate:    true,
		ID:          t.ID,
		Title:       t.Title,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        append([]string{}, t.Tags...),
		Description: t.Description,
	}
	if t.DueDate != nil {
		data.Due = t.DueDate.UTC().Format(DateLayout)
	}
	return data
}

var todoTemplate = template.Must(template.New("todo").Funcs(template.FuncMap{
	"quoteAll": func(values []string) string {
		quoted := make([]string, len(values))
		for i, value := range values {
			quoted[i] = fmt.Sprintf("%q", value)
		}
		return strings.Join(quoted, ", ")
	},
}).Parse(`title = {{ printf "%q" .Title }}
status = {{ printf "%q" .Status }} # todo, in_progress, done
priority = {{ printf "%q" .Priority }} # low, medium, high
tags = [{{ quoteAll .Tags }}]
due = {{ printf "%q" .Due }} # YYYY-MM-DD{{ if .IsUpdate }}, cannot be cleared{{ end }}
---
{{ .Description }}
`))

// RenderTodoTOML renders the todo data as a TOML string for editing.
func RenderTodoTOML(data TodoData) (string, error) {
	var buf bytes.Buffer
	if err := todoTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedTodo is the editor's output after validation.
type ParsedTodo struct {
	Title       string   `toml:"title"`
	Status      string   `toml:"status"`
	Priority    string   `toml:"priority"`
	Tags        []string `toml:"tags"`
	Due         string   `toml:"due"`
	Description string   `toml:"-"`

	status   todo.Status
	priority todo.Priority
	dueDate  *time.Time
}

// ParseTodoTOML parses and validates the content from the editor.
func ParseTodoTOML(content string) (*ParsedTodo, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedTodo
	meta, err := toml.Decode(frontmatter, &parsed)
	if err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown field %q", undecoded[0].String())
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Description = strings.TrimSpace(body)
	parsed.Tags = todo.NormalizeTags(parsed.Tags)

	if err := todo.ValidateTitle(parsed.Title); err != nil {
		return nil, err
	}
	if parsed.status, err = todo.ParseStatus(parsed.Status); err != nil {
		return nil, err
	}
	if parsed.priority, err = todo.ParsePriority(parsed.Priority); err != nil {
		return nil, err
	}
	if err := todo.ValidateTags(parsed.Tags); err != nil {
		return nil, err
	}
	if due := strings.TrimSpace(parsed.Due); due != "" {
		date, err := time.ParseInLocation(DateLayout, due, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", due)
		}
		parsed.dueDate = &date
	}
	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return content, ""
}

// EditTodoWithData opens the editor with pre-populated data and returns the parsed result.
func EditTodoWithData(data TodoData) (*ParsedTodo, error) {
	content, err := RenderTodoTOML(data)
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "td-todo-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return ParseTodoTOML(string(edited))
}

// NewTodo converts the editor's output into a create body.
func (p *ParsedTodo) NewTodo() todo.NewTodo {
	return todo.NewTodo{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.status,
		Priority:    p.priority,
		Tags:        p.Tags,
		DueDate:     p.dueDate,
	}
}

// Patch converts the editor's output into an update that sets every field.
// A blank due date leaves the existing one alone.
func (p *ParsedTodo) Patch(id string) todo.Patch {
	return todo.PatchFromTodo(todo.Todo{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.status,
		Priority:    p.priority,
		Tags:        p.Tags,
		DueDate:     p.dueDate,
	})
}
