//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-command-workers/internal/common/camunda"
	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/database"
	apperrors "voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/dispatch"

	cvc "voice-command-workers/internal/workers/voice-command/classify-voice-command"
	dvi "voice-command-workers/internal/workers/voice-command/dispatch-voice-intent"
	rvc "voice-command-workers/internal/workers/voice-command/record-voice-command"
)

var zeebeClient zbc.Client

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func servicesConfig() *config.Config {
	return &config.Config{
		Camunda: config.CamundaConfig{BrokerAddress: getenv("ZEEBE_ADDRESS", "localhost:26500")},
		Database: config.DatabaseConfig{
			Postgres: config.PostgresConfig{
				Host:           getenv("DB_HOST", "localhost"),
				Port:           5432,
				Database:       getenv("DB_NAME", "marketplace"),
				User:           getenv("DB_USER", "postgres"),
				Password:       getenv("DB_PASSWORD", "postgres"),
				MaxConnections: 5,
				MaxIdle:        2,
				SSLMode:        "disable",
			},
			Redis: config.RedisConfig{Address: getenv("REDIS_ADDRESS", "localhost:6379")},
		},
		Voice: config.VoiceConfig{CacheTTL: 60, MaxAudioBytes: 1 << 20},
	}
}

func TestMain(m *testing.M) {
	if os.Getenv("E2E") == "" {
		fmt.Println("E2E not set, skipping end-to-end tests")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         servicesConfig().Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	code := m.Run()
	zeebeClient.Close()
	os.Exit(code)
}

func TestVoiceCommandE2E(t *testing.T) {
	cfg := servicesConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "postgres ping failed")
	require.NoError(t, pg.EnsureSchema(ctx))

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "redis ping failed")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	require.NoError(t, err, "zeebe topology request failed")

	deployBPMN(t)

	log := logger.NewTestLogger(t)

	intent := dispatch.Intent{
		Action:   dispatch.ActionAddProduct,
		Target:   "Organic Tomatoes",
		Feedback: "Let's add Organic Tomatoes.",
	}
	classifier, err := cvc.NewStaticClassifier(intent)
	require.NoError(t, err)
	classify := cvc.NewHandler(cvc.ConfigFrom(cfg), classifier, rdb, log)

	// unique clip per run so the first classification misses the cache
	clip := []byte("e2e-" + uuid.NewString())
	uri := "data:audio/webm;base64," + base64.StdEncoding.EncodeToString(clip)
	commandID := "e2e-" + uuid.NewString()

	first, err := classify.Execute(ctx, &cvc.Input{CommandID: commandID, AudioDataURI: uri})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, dispatch.ActionAddProduct, first.Intent.Action)

	second, err := classify.Execute(ctx, &cvc.Input{CommandID: commandID, AudioDataURI: uri})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Intent, second.Intent)

	dispatched := dvi.NewHandler(dvi.ConfigFrom(cfg), log).Execute(ctx, &dvi.Input{
		CommandID: commandID,
		Intent:    first.Intent,
	})
	assert.Equal(t, dispatch.KindCreateEntityPrefilled, dispatched.Result.Kind)
	assert.Equal(t, "/farmer/products?newProductName=Organic+Tomatoes", dispatched.HostURL)
	assert.True(t, dispatched.Prefilled)

	record := rvc.NewHandler(rvc.LoadConfig(), pg.DB, log)
	in := &rvc.Input{
		CommandID: commandID,
		Intent:    first.Intent,
		Result:    dispatched.Result,
		HostURL:   dispatched.HostURL,
	}
	out, err := record.Execute(ctx, in)
	require.NoError(t, err)
	assert.True(t, out.Recorded)

	var kind, hostURL string
	err = pg.DB.QueryRowContext(ctx,
		"SELECT result_kind, host_url FROM voice_command_log WHERE command_id = $1", commandID,
	).Scan(&kind, &hostURL)
	require.NoError(t, err)
	assert.Equal(t, string(dispatch.KindCreateEntityPrefilled), kind)
	assert.Equal(t, dispatched.HostURL, hostURL)

	again, err := record.Execute(ctx, in)
	require.NoError(t, err)
	assert.False(t, again.Recorded, "redelivered job should not insert twice")
}

// An unusable clip must end the instance on the failure path with a toast
// message instead of leaving an incident behind.
func TestVoiceCommandE2E_ClassifyFailureEndsInstance(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deployBPMN(t)

	log := logger.NewTestLogger(t)
	classifier, err := cvc.NewStaticClassifier(dispatch.Intent{Action: dispatch.ActionUnknown})
	require.NoError(t, err)
	handler := cvc.NewHandler(cvc.ConfigFrom(servicesConfig()), classifier, nil, log)

	manager := camunda.NewManager(zeebeClient, log)
	manager.Start(cvc.TaskType, config.WorkerConfig{Enabled: true, MaxJobsActive: 1, Timeout: 30000}, handler)
	defer manager.Stop()

	cmd, err := zeebeClient.NewCreateInstanceCommand().
		BPMNProcessId("voice-command").
		LatestVersion().
		VariablesFromMap(map[string]interface{}{
			"commandId":    "e2e-" + uuid.NewString(),
			"audioDataUri": "not-a-data-uri",
		})
	require.NoError(t, err)

	resp, err := cmd.WithResult().FetchVariables(apperrors.UserMessageKey, "outcome").Send(ctx)
	require.NoError(t, err, "instance should complete through the failure end event")

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Variables), &vars))
	assert.Equal(t, apperrors.VoiceCommandUserMessage, vars[apperrors.UserMessageKey])
	assert.Equal(t, "failed", vars["outcome"])
}

func deployBPMN(t *testing.T) {
	var dir string
	for _, p := range []string{"bpmn", "../bpmn", "../../bpmn"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dir = p
			break
		}
	}
	if dir == "" {
		t.Log("bpmn directory not found, skipping deployment")
		return
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".bpmn") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := zeebeClient.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background()); err != nil {
			t.Logf("failed to deploy %s: %v", path, err)
			continue
		}
		t.Logf("deployed %s", path)
	}
}

func BenchmarkHandler_DispatchVoiceIntent(b *testing.B) {
	handler := dvi.NewHandler(dvi.LoadConfig(), logger.NewNoOpLogger())
	input := &dvi.Input{
		CommandID: "bench",
		Intent: dispatch.Intent{
			Action:  dispatch.ActionFilter,
			Target:  "orders",
			Payload: dispatch.Payload{"status": "pending"},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
