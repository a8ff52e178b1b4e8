package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

// Sink forwards stored responses to an external spreadsheet backend.
// Forwarding is best-effort: callers must treat failures as log-only.
type Sink interface {
	Forward(ctx context.Context, formID string, response *formTypes.FormResponse) error
}

type ClientConfig struct {
	RootURL string        `json:"root_url" yaml:"root_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type forwardPayload struct {
	FormID   string                  `json:"formId"`
	Response *formTypes.FormResponse `json:"response"`
}

func (cConfig ClientConfig) Forward(ctx context.Context, formID string, response *formTypes.FormResponse) error {
	jsonData, err := json.Marshal(forwardPayload{FormID: formID, Response: response})
	if err != nil {
		return err
	}

	client := &http.Client{
		Timeout: cConfig.Timeout,
	}

	url := cConfig.RootURL + "/form-responses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	if cConfig.APIKey != "" {
		req.Header.Set("Api-Key", cConfig.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("spreadsheet sink returned status %d", resp.StatusCode)
	}
	return nil
}
