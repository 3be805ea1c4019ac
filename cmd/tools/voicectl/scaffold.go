// cmd/tools/voicectl/scaffold.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"voice-command-workers/pkg/registry"
)

type scaffoldData struct {
	PackageName  string
	PackagePath  string
	Module       string
	TaskType     string
	DisplayName  string
	Description  string
	Timeout      time.Duration
	InputFields  []field
	OutputFields []field
	ErrorCodes   []string
}

type field struct {
	Name    string
	Type    string
	JSONTag string
}

func newScaffoldCmd() *cobra.Command {
	var (
		path     string
		activity string
		output   string
		module   string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Generate a worker package for a registry activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			a, ok := reg.Find(activity)
			if !ok {
				return fmt.Errorf("%w: %s", registry.ErrActivityNotFound, activity)
			}

			data := newScaffoldData(a, module)
			dir := filepath.Join(output, categoryDir(a.Category), a.ID)
			files, err := renderScaffold(dir, data, force)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "configs/activity-registry.json", "path to registry file")
	cmd.Flags().StringVar(&activity, "activity", "", "activity task type")
	cmd.Flags().StringVarP(&output, "output", "o", "internal/workers", "worker root directory")
	cmd.Flags().StringVar(&module, "module", "voice-command-workers", "module path for generated imports")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	_ = cmd.MarkFlagRequired("activity")
	return cmd
}

func newScaffoldData(a *registry.Activity, module string) scaffoldData {
	dir := categoryDir(a.Category)
	return scaffoldData{
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		PackagePath:  "internal/workers/" + dir + "/" + a.ID,
		Module:       module,
		TaskType:     a.TaskType,
		DisplayName:  a.DisplayName,
		Description:  a.Description,
		Timeout:      a.TimeoutDuration(),
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
		ErrorCodes:   a.ErrorCodes,
	}
}

func categoryDir(category string) string {
	switch category {
	case "", "voice":
		return "voice-command"
	case "product-catalog":
		return "product"
	default:
		return category
	}
}

// schemaFields turns the top-level properties of a JSON schema into struct
// fields, sorted by property name.
func schemaFields(schema map[string]interface{}) []field {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, field{
			Name:    upperFirst(name),
			Type:    goType(details["type"]),
			JSONTag: fmt.Sprintf("`json:\"%s\"`", name),
		})
	}
	return fields
}

func goType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "Id") {
		s = strings.TrimSuffix(s, "Id") + "ID"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderScaffold(dir string, data scaffoldData, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	names := make([]string, 0, len(scaffoldTemplates))
	for name := range scaffoldTemplates {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err == nil && !force {
			return written, fmt.Errorf("%s already exists, use --force to overwrite", target)
		}

		tmpl, err := template.New(name).Parse(scaffoldTemplates[name])
		if err != nil {
			return written, fmt.Errorf("parse template %s: %w", name, err)
		}
		f, err := os.Create(target)
		if err != nil {
			return written, err
		}
		err = tmpl.Execute(f, data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("render %s: %w", name, err)
		}
		written = append(written, target)
	}
	return written, nil
}

var scaffoldTemplates = map[string]string{
	"models.go": `// {{.PackagePath}}/models.go
package {{.PackageName}}

type Input struct {
{{- range .InputFields}}
	{{.Name}} {{.Type}} {{.JSONTag}}
{{- end}}
}

type Output struct {
{{- range .OutputFields}}
	{{.Name}} {{.Type}} {{.JSONTag}}
{{- end}}
}
`,
	"config.go": `// {{.PackagePath}}/config.go
package {{.PackageName}}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{printf "%d" .Timeout.Milliseconds}} * time.Millisecond,
	}
}
`,
	"handler.go": `// {{.PackagePath}}/handler.go
package {{.PackageName}}

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"{{.Module}}/internal/common/camunda"
	apperrors "{{.Module}}/internal/common/errors"
	"{{.Module}}/internal/common/logger"
)

const TaskType = "{{.TaskType}}"

// Handler runs {{.DisplayName}} jobs.{{if .Description}} {{.Description}}{{end}}
type Handler struct {
	config *Config
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: cfg,
		runner: camunda.NewJobRunner(TaskType, cfg.Timeout, scoped),
		logger: scoped,
	}
}

func (h *Handler) Runner() *camunda.JobRunner {
	return h.runner
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, h.process)
}

func (h *Handler) process(ctx context.Context, job entities.Job) (interface{}, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidVariablesError(err)
	}
	return h.Execute(ctx, &input)
}

// Execute is where the task logic goes.{{if .ErrorCodes}} It may fail with{{range $i, $c := .ErrorCodes}}{{if $i}},{{end}} {{$c}}{{end}}.{{end}}
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Output{}, nil
}
`,
	"handler_test.go": `package {{.PackageName}}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"{{.Module}}/internal/common/logger"
)

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	require.NotNil(t, out)
}
`,
}
