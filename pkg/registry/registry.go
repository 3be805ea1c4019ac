// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"voice-command-workers/internal/common/validation"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityExists   = errors.New("activity already exists")
)

// Registry wraps a loaded ActivityRegistry with compiled input schemas.
type Registry struct {
	*ActivityRegistry

	mu       sync.Mutex
	compiled map[string]*validation.Schema
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Open loads the registry at path for job validation.
func Open(path string) (*Registry, error) {
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return New(reg), nil
}

func New(reg *ActivityRegistry) *Registry {
	return &Registry{ActivityRegistry: reg, compiled: make(map[string]*validation.Schema)}
}

// Find returns the activity whose task type matches.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ValidateVariables checks job variables against the activity input schema.
// Task types without an activity or schema pass.
func (r *Registry) ValidateVariables(taskType string, variables []byte) (*validation.ValidationResult, error) {
	schema, err := r.inputSchema(taskType)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return &validation.ValidationResult{Valid: true}, nil
	}
	return schema.ValidateBytes(variables)
}

func (r *Registry) inputSchema(taskType string) (*validation.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.compiled[taskType]; ok {
		return s, nil
	}
	activity, ok := r.Find(taskType)
	if !ok || len(activity.InputSchema) == 0 {
		r.compiled[taskType] = nil
		return nil, nil
	}
	s, err := validation.Compile(activity.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", activity.ID, err)
	}
	r.compiled[taskType] = s
	return s, nil
}

// Add appends a new activity.
func (r *ActivityRegistry) Add(activity Activity) error {
	for _, existing := range r.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("%w: %s", ErrActivityExists, activity.ID)
		}
	}
	r.Activities = append(r.Activities, activity)
	r.touch()
	return nil
}

// Update sets one scalar field on the activity with the given id.
func (r *ActivityRegistry) Update(id, field, value string) error {
	var activity *Activity
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			activity = &r.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	switch field {
	case "status":
		if !validStatus(value) {
			return fmt.Errorf("invalid status %q", value)
		}
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	r.touch()
	return nil
}

// Validate checks ids are unique, required fields are set and every input
// schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if len(activity.InputSchema) > 0 {
			if _, err := validation.Compile(activity.InputSchema); err != nil {
				return fmt.Errorf("activity %s input schema: %w", activity.ID, err)
			}
		}
	}
	return nil
}

// Save writes the registry as indented JSON, creating parent directories.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func (r *ActivityRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

func validStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}
