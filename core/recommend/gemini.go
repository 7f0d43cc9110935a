package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"sonicpdf/catalog"
	"sonicpdf/logger"
	"sonicpdf/model"
)

// GeminiConfig configures the generative recommendation adapter.
type GeminiConfig struct {
	APIBaseURL string
	APIKey     string
	Model      string
	Timeout    time.Duration
}

// GeminiRecommender asks a Gemini-style generateContent endpoint to pick
// cues for a page of text. Every failure mode (network, timeout, parse,
// shape) resolves to the default recommendation together with
// ErrRecommendationUnavailable; the caller never needs a second fallback.
type GeminiRecommender struct {
	config     GeminiConfig
	httpClient *http.Client
}

// NewGeminiRecommender creates the adapter. A zero Timeout defaults to 15s.
func NewGeminiRecommender(config GeminiConfig) *GeminiRecommender {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &GeminiRecommender{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Wire shapes for the generateContent API.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// rawRecommendation is the structured payload the model is asked to emit.
type rawRecommendation struct {
	BackgroundMusic string `json:"backgroundMusic"`
	Effects         []struct {
		ID       string  `json:"id"`
		Timeline float64 `json:"timeline"`
	} `json:"effects"`
}

// The model tends to wrap its JSON in a fenced code block or prose.
var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	braceJSONPattern  = regexp.MustCompile(`(?s)\{.*\}`)
)

// Recommend sends the text excerpt plus both catalogs to the model and
// parses its reply into an unvalidated recommendation.
func (g *GeminiRecommender) Recommend(ctx context.Context, text string) (model.Recommendation, error) {
	excerpt := text
	if len(excerpt) > MaxExcerptChars {
		// Back the cut up to a rune start so the prompt stays valid UTF-8.
		cut := MaxExcerptChars
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(excerpt)}}}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return g.fallback("marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.config.APIBaseURL, g.config.Model, g.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return g.fallback("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return g.fallback("send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return g.fallback("api status", fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return g.fallback("decode response", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return g.fallback("empty response", fmt.Errorf("no candidates returned"))
	}

	raw, err := extractRecommendation(geminiResp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return g.fallback("parse recommendation", err)
	}

	rec := model.Recommendation{
		BackgroundMusic: catalog.MusicID(raw.BackgroundMusic),
		Effects:         make([]model.EffectCue, 0, len(raw.Effects)),
	}
	for _, e := range raw.Effects {
		rec.Effects = append(rec.Effects, model.EffectCue{
			ID:       catalog.EffectID(e.ID),
			Timeline: e.Timeline,
		})
	}
	return rec, nil
}

// extractRecommendation pulls the JSON payload out of the model's reply,
// tolerating fenced code blocks and surrounding prose.
func extractRecommendation(reply string) (*rawRecommendation, error) {
	payload := strings.TrimSpace(reply)

	if m := fencedJSONPattern.FindStringSubmatch(payload); len(m) == 2 {
		payload = strings.TrimSpace(m[1])
	} else if m := braceJSONPattern.FindString(payload); m != "" {
		payload = m
	}

	var raw rawRecommendation
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation payload: %w", err)
	}
	return &raw, nil
}

func (g *GeminiRecommender) fallback(action string, err error) (model.Recommendation, error) {
	logger.Warn("generative recommendation failed, using default",
		logger.String("action", action),
		logger.ErrorField(err))
	return model.DefaultRecommendation(), fmt.Errorf("%w: %s: %v", ErrRecommendationUnavailable, action, err)
}

// buildPrompt describes the task, the catalogs, and the exact reply shape.
func buildPrompt(excerpt string) string {
	var b strings.Builder
	b.WriteString("You are an AI expert in understanding text and recommending appropriate background music and sound effects.\n\n")
	b.WriteString("Music plays throughout the page as a theme; effects play at specific moments on the timeline.\n\n")
	b.WriteString("TEXT TO ANALYZE:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nMusic Categories and IDs:\n")
	for _, m := range catalog.Music {
		fmt.Fprintf(&b, "* %s: %s\n", m.Label, m.ID)
	}
	b.WriteString("\nEffect Categories and IDs:\n")
	lastCategory := catalog.EffectCategory("")
	for _, e := range catalog.Effects {
		if e.Category != lastCategory {
			fmt.Fprintf(&b, "%s:\n", strings.ToUpper(string(e.Category)))
			lastCategory = e.Category
		}
		fmt.Fprintf(&b, "* %s: %s\n", e.Label, e.ID)
	}
	b.WriteString("\nRespond with JSON only, exactly this structure:\n")
	b.WriteString(`{"backgroundMusic": "[music code]", "effects": [{"id": "[effect code]", "timeline": [seconds]}]}`)
	b.WriteString("\n\nNOTES:\n")
	b.WriteString("1. Choose ONE background music code matching the overall mood of the text.\n")
	fmt.Fprintf(&b, "2. Suggest %d-%d sound effects matching specific moments.\n", MinEffects, MaxEffects)
	fmt.Fprintf(&b, "3. Compute each timeline in seconds assuming a reading speed of %d words per minute.\n", WordsPerMinute)
	b.WriteString("4. ONLY return valid JSON in the format above.\n")
	return b.String()
}
