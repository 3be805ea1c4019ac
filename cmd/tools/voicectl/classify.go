// cmd/tools/voicectl/classify.go
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voice-command-workers/internal/common/config"
	httpclient "voice-command-workers/internal/common/http"
	"voice-command-workers/internal/common/llm"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/dispatch"
	"voice-command-workers/internal/models"
	cvc "voice-command-workers/internal/workers/voice-command/classify-voice-command"
)

type classifyOutput struct {
	Intent  dispatch.Intent `json:"intent"`
	Result  dispatch.Result `json:"result"`
	HostURL string          `json:"hostUrl"`
}

func newClassifyCmd() *cobra.Command {
	var (
		audioPath    string
		mimeType     string
		verbose      bool
		staticIntent string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a local audio clip and dispatch the intent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(audioPath)
			if err != nil {
				return err
			}

			var (
				ccfg       *cvc.Config
				classifier cvc.Classifier
			)
			if staticIntent != "" {
				intent, err := dispatch.DecodeIntent([]byte(staticIntent))
				if err != nil {
					return err
				}
				if classifier, err = cvc.NewStaticClassifier(intent); err != nil {
					return err
				}
				ccfg = cvc.LoadConfig()
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if classifier, err = newClassifier(cmd.Context(), cfg); err != nil {
					return err
				}
				ccfg = cvc.ConfigFrom(cfg)
			}

			log := logger.NewNoOpLogger()
			if verbose {
				log = logger.NewStructured("debug", "console")
			}

			h := cvc.NewHandler(ccfg, classifier, nil, log)

			ctx, cancel := context.WithTimeout(cmd.Context(), ccfg.Timeout)
			defer cancel()

			uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
			out, err := h.Execute(ctx, &cvc.Input{AudioDataURI: uri})
			if err != nil {
				return err
			}

			res := dispatch.NewDispatcher().Dispatch(out.Intent)
			return printJSON(cmd.OutOrStdout(), classifyOutput{Intent: out.Intent, Result: res, HostURL: res.HostURL()})
		},
	}
	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "audio file to classify")
	cmd.Flags().StringVar(&mimeType, "mime", "audio/webm", "mime type of the audio file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log classifier activity")
	cmd.Flags().StringVar(&staticIntent, "intent", "", "skip the model and classify every clip as this intent JSON")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}

func newClassifier(ctx context.Context, cfg *config.Config) (cvc.Classifier, error) {
	g := cfg.APIs.GenAI
	switch g.Backend {
	case config.GenAIBackendGemini:
		client, err := llm.New(ctx, g)
		if err != nil {
			return nil, err
		}
		return cvc.NewGeminiClassifier(client, models.NavigationRoutes), nil
	case config.GenAIBackendGateway:
		return cvc.NewGatewayClassifier(httpclient.NewClient(config.GetDuration(g.Timeout), g.MaxRetries), g.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported genai backend %q", g.Backend)
	}
}
