// internal/workers/product/suggest-product-details/suggester.go
package suggestproductdetails

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	httpclient "voice-command-workers/internal/common/http"
	"voice-command-workers/internal/common/llm"
)

const gatewayPath = "/api/ai/suggest-product-details"

// Suggester drafts listing details for a product name.
type Suggester interface {
	Suggest(ctx context.Context, productName string, withImage bool) (*Output, error)
}

func descriptionPrompt(name string) string {
	return fmt.Sprintf("You are an expert in agricultural marketing. Write a short, appealing and informative product description for the following product: %s. "+
		"The description is for an e-commerce platform connecting farmers to consumers. Focus on freshness, quality and origin. Keep it to 2-3 sentences.", name)
}

func imagePrompt(name string) string {
	return fmt.Sprintf("A vibrant, high-quality, professional photo of %s on a clean, neutral background.", name)
}

// GeminiSuggester asks the text and image models in parallel.
type GeminiSuggester struct {
	client      *llm.Client
	temperature float32
}

func NewGeminiSuggester(client *llm.Client, temperature float32) *GeminiSuggester {
	return &GeminiSuggester{client: client, temperature: temperature}
}

func (g *GeminiSuggester) Suggest(ctx context.Context, productName string, withImage bool) (*Output, error) {
	out := &Output{}
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		desc, err := g.client.GenerateText(ctx, descriptionPrompt(productName), g.temperature)
		if err != nil {
			return fmt.Errorf("description: %w", err)
		}
		out.Description = desc
		return nil
	})

	if withImage {
		eg.Go(func() error {
			mime, data, err := g.client.GenerateImage(ctx, imagePrompt(productName))
			if err != nil {
				return fmt.Errorf("image: %w", err)
			}
			out.ImageURL = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GatewaySuggester posts to the HTTP GenAI gateway.
type GatewaySuggester struct {
	client *httpclient.Client
	url    string
}

func NewGatewaySuggester(client *httpclient.Client, baseURL string) *GatewaySuggester {
	return &GatewaySuggester{client: client, url: strings.TrimRight(baseURL, "/") + gatewayPath}
}

func (g *GatewaySuggester) Suggest(ctx context.Context, productName string, withImage bool) (*Output, error) {
	var out Output
	body := map[string]interface{}{"productName": productName, "withImage": withImage}
	if err := g.client.PostJSON(ctx, g.url, body, &out); err != nil {
		return nil, err
	}
	if !withImage {
		out.ImageURL = ""
	}
	return &out, nil
}
