package registry

import (
	"encoding/xml"
	"os"
	"strconv"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/errors"
)

const (
	workflowFile = "../../bpmn/voice-command.bpmn"
	configFile   = "../../configs/config.yaml"
)

type bpmnDefinitions struct {
	Errors []struct {
		ID   string `xml:"id,attr"`
		Code string `xml:"errorCode,attr"`
	} `xml:"error"`
	Process struct {
		ID           string `xml:"id,attr"`
		ServiceTasks []struct {
			ID      string `xml:"id,attr"`
			TaskDef struct {
				Type    string `xml:"type,attr"`
				Retries string `xml:"retries,attr"`
			} `xml:"extensionElements>taskDefinition"`
		} `xml:"serviceTask"`
		Boundaries []struct {
			ID         string `xml:"id,attr"`
			AttachedTo string `xml:"attachedToRef,attr"`
			Outputs    []struct {
				Source string `xml:"source,attr"`
				Target string `xml:"target,attr"`
			} `xml:"extensionElements>ioMapping>output"`
			ErrorDef struct {
				Ref string `xml:"errorRef,attr"`
			} `xml:"errorEventDefinition"`
		} `xml:"boundaryEvent"`
		EndEvents []struct {
			ID   string `xml:"id,attr"`
			Name string `xml:"name,attr"`
		} `xml:"endEvent"`
		Flows []struct {
			Source string `xml:"sourceRef,attr"`
			Target string `xml:"targetRef,attr"`
		} `xml:"sequenceFlow"`
	} `xml:"process"`
}

func loadWorkflow(t *testing.T) *bpmnDefinitions {
	t.Helper()
	raw, err := os.ReadFile(workflowFile)
	require.NoError(t, err)
	var defs bpmnDefinitions
	require.NoError(t, xml.Unmarshal(raw, &defs))
	require.Equal(t, "voice-command", defs.Process.ID)
	return &defs
}

// taskIDs maps task type to service task id.
func (d *bpmnDefinitions) taskIDs() map[string]string {
	ids := make(map[string]string, len(d.Process.ServiceTasks))
	for _, st := range d.Process.ServiceTasks {
		ids[st.TaskDef.Type] = st.ID
	}
	return ids
}

func (d *bpmnDefinitions) next(source string) []string {
	var out []string
	for _, f := range d.Process.Flows {
		if f.Source == source {
			out = append(out, f.Target)
		}
	}
	return out
}

func TestWorkflow_RetriesMatchRegistryAndConfig(t *testing.T) {
	defs := loadWorkflow(t)
	reg, err := Open(registryFile)
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configFile)
	require.NoError(t, v.ReadInConfig())
	var workers map[string]config.WorkerConfig
	require.NoError(t, v.UnmarshalKey("workers", &workers))

	require.Len(t, defs.Process.ServiceTasks, 4)
	for _, st := range defs.Process.ServiceTasks {
		taskType := st.TaskDef.Type
		t.Run(taskType, func(t *testing.T) {
			retries, err := strconv.Atoi(st.TaskDef.Retries)
			require.NoError(t, err)

			activity, ok := reg.Find(taskType)
			require.True(t, ok, "task type missing from registry")
			assert.Equal(t, activity.Retries, retries, "bpmn vs registry")

			wcfg, ok := workers[taskType]
			require.True(t, ok, "task type missing from config")
			assert.Equal(t, wcfg.MaxRetries, retries, "bpmn vs config")
			assert.Positive(t, retries, "a zero retry count raises an incident on the first job")
		})
	}
}

func TestWorkflow_Order(t *testing.T) {
	defs := loadWorkflow(t)
	ids := defs.taskIDs()

	classify := ids["classify-voice-command"]
	dispatch := ids["dispatch-voice-intent"]
	record := ids["record-voice-command"]
	suggest := ids["suggest-product-details"]

	assert.Equal(t, []string{classify}, defs.next("start"))
	assert.Equal(t, []string{dispatch}, defs.next(classify))
	assert.Equal(t, []string{record}, defs.next(dispatch))

	gateway := defs.next(record)
	require.Len(t, gateway, 1)
	assert.Contains(t, defs.next(gateway[0]), suggest, "suggest runs after record")
	assert.Len(t, defs.next(gateway[0]), 2, "suggest is optional")
}

func TestWorkflow_ClassifyErrorsEndAsFailed(t *testing.T) {
	defs := loadWorkflow(t)
	reg, err := Open(registryFile)
	require.NoError(t, err)

	errorCodes := make(map[string]string, len(defs.Errors))
	for _, e := range defs.Errors {
		errorCodes[e.ID] = e.Code
	}
	endNames := make(map[string]string, len(defs.Process.EndEvents))
	for _, e := range defs.Process.EndEvents {
		endNames[e.ID] = e.Name
	}

	ids := defs.taskIDs()
	for _, taskType := range []string{"classify-voice-command", "suggest-product-details"} {
		t.Run(taskType, func(t *testing.T) {
			caught := map[string]bool{}
			for _, b := range defs.Process.Boundaries {
				if b.AttachedTo != ids[taskType] {
					continue
				}
				code := errorCodes[b.ErrorDef.Ref]
				require.NotEmpty(t, code, "boundary %s references an undeclared error", b.ID)
				caught[code] = true

				targets := defs.next(b.ID)
				require.Len(t, targets, 1)
				require.Contains(t, endNames, targets[0], "boundary %s must lead to an end event", b.ID)

				if taskType != "classify-voice-command" {
					continue
				}
				assert.Equal(t, "Command failed", endNames[targets[0]])
				outputs := map[string]string{}
				for _, o := range b.Outputs {
					outputs[o.Target] = o.Source
				}
				assert.Contains(t, outputs, errors.UserMessageKey, b.ID)
				assert.Equal(t, `="failed"`, outputs["outcome"], b.ID)
			}

			activity, ok := reg.Find(taskType)
			require.True(t, ok)
			for _, code := range activity.ErrorCodes {
				bpmnCode, mapped := errors.BPMNErrorMapping[errors.ErrorCode(code)]
				require.True(t, mapped, code)
				assert.True(t, caught[bpmnCode], "%s (thrown as %s) has no boundary event", code, bpmnCode)
			}
		})
	}
}
