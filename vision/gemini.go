package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiExtractor calls the Gemini generateContent REST endpoint with the
// slip photo inline. The caller bounds the call through ctx; there is no
// internal retry.
type GeminiExtractor struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewGeminiExtractor(apiKey, model string) *GeminiExtractor {
	return &GeminiExtractor{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string, columns []string, instruction string) ([]map[string]any, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is not set", ErrExtraction)
	}

	prompt := fmt.Sprintf(
		"%s Colonnes: [%s]. "+
			"Ajoute une colonne 'Doute' (boolean) : mets true si incertain, sinon false. "+
			"Retourne UNIQUEMENT une liste JSON brute, sans balises markdown ```json ou ```.",
		instruction, strings.Join(columns, ", "))

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: non-JSON service response", ErrExtraction)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrExtraction, msg)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrExtraction)
	}

	return ParseRows(parsed.Candidates[0].Content.Parts[0].Text)
}

// ParseRows decodes the model's text output into row maps. Markdown fences
// are tolerated despite the prompt asking for raw JSON; anything that is not
// a JSON array after that is a hard failure for the whole call.
func ParseRows(text string) ([]map[string]any, error) {
	txt := strings.TrimSpace(text)
	if strings.HasPrefix(txt, "```json") {
		txt = strings.TrimPrefix(txt, "```json")
	} else if strings.HasPrefix(txt, "```") {
		txt = strings.TrimPrefix(txt, "```")
	}
	txt = strings.TrimSuffix(strings.TrimSpace(txt), "```")
	txt = strings.TrimSpace(txt)

	var rows []map[string]any
	if err := json.Unmarshal([]byte(txt), &rows); err != nil {
		return nil, fmt.Errorf("%w: unparsable rows: %v", ErrExtraction, err)
	}
	return rows, nil
}
