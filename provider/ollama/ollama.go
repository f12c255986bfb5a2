package ollama_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// schemaContext is the fixed prompt preamble describing the tas_demo schema.
// The resolver only ever sees this schema; its output is validated against it.
const schemaContext = `Database Schema for Time and Attendance System (TAS):

Tables in schema 'tas_demo':
1. tenant (tenant_id UUID PRIMARY KEY, tenant_name TEXT, tenant_code TEXT, onboarded_date_time_utc TIMESTAMP, is_active BOOLEAN)
2. location (location_id UUID PRIMARY KEY, location_name TEXT, tenant_id UUID REFERENCES tenant, is_active BOOLEAN)
3. colleague_details (id UUID PRIMARY KEY, colleague_uuid UUID, colleague_payload TEXT, tenant_id UUID REFERENCES tenant, location_id UUID REFERENCES location)
4. planned_shift (planned_shift_id UUID PRIMARY KEY, colleague_uuid UUID, start_date_time_utc TIMESTAMP, end_date_time_utc TIMESTAMP, shift_payload TEXT, tenant_id UUID REFERENCES tenant)
5. exception (exception_id UUID PRIMARY KEY, exception_type TEXT, location_uuid UUID, colleague_uuid UUID, exception_date_utc TIMESTAMP, tenant_id UUID REFERENCES tenant, exception_duration INT)
6. exception_detail (exception_summary_id UUID PRIMARY KEY, exception_id UUID REFERENCES exception, tenant_id UUID REFERENCES tenant, start_date_time_utc TIMESTAMP, end_date_time_utc TIMESTAMP, duration_mins INT, is_balanced BOOLEAN, status TEXT)

Common exception types: 'LATE_IN', 'EARLY_OUT', 'MISSED_PUNCH', 'OVERTIME', 'ABSENCE'
Exception statuses: 'OPEN', 'RESOLVED', 'PENDING'`

const systemPrompt = `You are an expert at converting natural language queries to SQL.
Return ONLY a valid PostgreSQL SELECT query without any explanation or markdown.
Always use the schema prefix 'tas_demo.' for all tables.`

// client implements the resolver interface against a local Ollama server
type client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

type generateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewClient creates an Ollama-backed resolver client.
func NewClient(baseURL, model string, temperature float64, timeout time.Duration) *client {
	return &client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Resolve asks the model for a SQL candidate given the utterance and the
// rendered conversation context.
func (c *client) Resolve(ctx context.Context, utterance, contextText string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nPrevious conversation context:\n%s\n\nUser query: %s\n\nGenerate a PostgreSQL query to answer this question.",
		schemaContext, contextText, utterance)

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		System:  systemPrompt,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	sql := CleanResponse(out.Response)
	if sql == "" {
		return "", fmt.Errorf("model returned no query")
	}
	return sql, nil
}

// CleanResponse strips markdown fences and any prose preceding the first
// read clause from model output.
func CleanResponse(s string) string {
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	upper := strings.ToUpper(s)
	selectIdx := strings.Index(upper, "SELECT")
	withIdx := strings.Index(upper, "WITH")

	start := -1
	switch {
	case selectIdx >= 0 && withIdx >= 0:
		start = selectIdx
		if withIdx < selectIdx {
			start = withIdx
		}
	case selectIdx >= 0:
		start = selectIdx
	case withIdx >= 0:
		start = withIdx
	}
	if start > 0 {
		s = s[start:]
	} else if start < 0 {
		return ""
	}
	return strings.TrimSpace(s)
}
