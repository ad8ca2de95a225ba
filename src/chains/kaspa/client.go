package kaspa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// restOutpointSource resolves outpoints against the public Kaspa REST API.
type restOutpointSource struct {
	baseURL string
	client  *http.Client
}

// NewRESTOutpointSource builds an OutpointSource over the explorer REST API.
// A nil httpClient gets a sane default with timeouts.
func NewRESTOutpointSource(baseURL string, httpClient *http.Client) OutpointSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &restOutpointSource{baseURL: baseURL, client: httpClient}
}

func (s *restOutpointSource) OutputAmount(ctx context.Context, txID string, index uint32) (uint64, error) {
	url := fmt.Sprintf("%s/transactions/%s", s.baseURL, txID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building outpoint request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching originating transaction %s: %w", txID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("explorer returned status %d for transaction %s", resp.StatusCode, txID)
	}

	var origin RawTransaction
	if err := json.NewDecoder(resp.Body).Decode(&origin); err != nil {
		return 0, fmt.Errorf("decoding originating transaction %s: %w", txID, err)
	}
	if int(index) >= len(origin.Outputs) {
		return 0, fmt.Errorf("transaction %s has no output at index %d", txID, index)
	}
	return origin.Outputs[index].Amount, nil
}
