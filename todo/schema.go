package todo

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFiles embed.FS

const (
	newTodoSchemaName = "new_todo.json"
	patchSchemaName   = "patch.json"
)

var (
	schemaOnce    sync.Once
	newTodoSchema *jsonschema.Schema
	patchSchema   *jsonschema.Schema
	schemaErr     error
)

// ErrInvalidBody is returned when a request body does not match its JSON Schema.
var ErrInvalidBody = errors.New("invalid request body")

// SchemaError describes one schema violation.
type SchemaError struct {
	Path    string // JSON path to the offending value, "" for the document root
	Message string
}

func (e SchemaError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidateNewTodoJSON checks a raw create body against the embedded schema.
func ValidateNewTodoJSON(data []byte) error {
	return validateJSON(data, func() *jsonschema.Schema { return newTodoSchema })
}

// ValidatePatchJSON checks a raw update body against the embedded schema.
func ValidatePatchJSON(data []byte) error {
	return validateJSON(data, func() *jsonschema.Schema { return patchSchema })
}

func validateJSON(data []byte, pick func() *jsonschema.Schema) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	err := pick().Validate(document)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	messages := make([]string, 0, 1)
	for _, item := range collectSchemaErrors(nil, ve) {
		messages = append(messages, item.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidBody, strings.Join(messages, "; "))
}

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	for _, name := range []string{newTodoSchemaName, patchSchemaName} {
		data, err := schemaFiles.ReadFile("schema/" + name)
		if err != nil {
			schemaErr = fmt.Errorf("read schema %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
	}

	newTodoSchema, schemaErr = compiler.Compile(newTodoSchemaName)
	if schemaErr != nil {
		schemaErr = fmt.Errorf("compile schema %s: %w", newTodoSchemaName, schemaErr)
		return
	}
	patchSchema, schemaErr = compiler.Compile(patchSchemaName)
	if schemaErr != nil {
		schemaErr = fmt.Errorf("compile schema %s: %w", patchSchemaName, schemaErr)
	}
}

func collectSchemaErrors(out []SchemaError, err *jsonschema.ValidationError) []SchemaError {
	if err == nil {
		return out
	}
	if len(err.Causes) == 0 {
		return append(out, SchemaError{
			Path:    jsonPointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
	}
	for _, cause := range err.Causes {
		out = collectSchemaErrors(out, cause)
	}
	return out
}

// jsonPointerToPath turns "/tags/1" into "tags[1]".
func jsonPointerToPath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}
	var builder strings.Builder
	for i, part := range strings.Split(pointer, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			builder.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(part)
	}
	return builder.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
