package toolclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Pricing is a tool that queries the AWS Price List API for a service's
// current pricing in a region, grounded on original_source's
// aws_pricing_tools.py get_aws_service_pricing (minus its boto3 SDK
// fallback, out of scope for this pack's dependency set).
type Pricing struct {
	BaseURL string
	Region  string
	Client  *http.Client
}

// PricingOption configures a Pricing tool.
type PricingOption func(*Pricing)

// WithPricingRegion sets the AWS region pricing is queried for.
func WithPricingRegion(region string) PricingOption {
	return func(p *Pricing) { p.Region = region }
}

// WithPricingBaseURL overrides the AWS Price List API base URL.
func WithPricingBaseURL(baseURL string) PricingOption {
	return func(p *Pricing) { p.BaseURL = baseURL }
}

// NewPricing creates a Pricing tool defaulting to us-east-1, matching
// aws_pricing_tools.py's price_list_base_url default.
func NewPricing(opts ...PricingOption) *Pricing {
	p := &Pricing{
		BaseURL: "https://pricing.us-east-1.amazonaws.com",
		Region:  "us-east-1",
		Client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pricing) Name() string { return "AWS_Service_Pricing" }

func (p *Pricing) Description() string {
	return "Looks up current AWS pricing for a service offer file. Input should be an AWS service code, e.g. AmazonEC2."
}

func (p *Pricing) Call(ctx context.Context, input string) (string, error) {
	url := fmt.Sprintf("%s/offers/v1.0/aws/%s/current/%s/index.json", p.BaseURL, input, p.Region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("toolclient: build pricing request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("toolclient: pricing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp.StatusCode, url)
	}

	var result struct {
		FormatVersion string                    `json:"formatVersion"`
		Products      map[string]json.RawMessage `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("toolclient: decode pricing response: %w", err)
	}

	return fmt.Sprintf("%s: %d SKUs found for %s in %s", result.FormatVersion, len(result.Products), input, p.Region), nil
}
