package language

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/platform/obs"
	"time"
)

const maxResponseBytes = 1 << 20

// HTTPScenarioParser asks an external language service to turn a what-if
// question into structured modifications. Calls are never retried: a
// failed parse is reported to the caller as-is.
type HTTPScenarioParser struct {
	session *http.Client
	url     string
	apiKey  string
}

func NewHTTPScenarioParser(url, apiKey string, timeout time.Duration) (*HTTPScenarioParser, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("language service url is empty")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPScenarioParser{
		session: &http.Client{Timeout: timeout},
		url:     url,
		apiKey:  apiKey,
	}, nil
}

type parseRequest struct {
	Question string          `json:"question"`
	Context  scenarioContext `json:"context"`
}

type scenarioContext struct {
	Facility       string             `json:"current_facility"`
	TotalCost      float64            `json:"total_cost"`
	TargetTons     float64            `json:"production_target_tons"`
	Ports          []string           `json:"ports"`
	Sites          []string           `json:"sites"`
	Materials      []string           `json:"materials"`
	YieldFactors   map[string]float64 `json:"yield_factors"`
	MaxConsumption map[string]float64 `json:"max_consumption"`
}

func toWire(sc domain.ScenarioContext) scenarioContext {
	out := scenarioContext{
		Facility:       sc.Facility,
		TotalCost:      sc.TotalCost,
		TargetTons:     sc.TargetTons,
		Ports:          sc.Ports,
		Sites:          sc.Sites,
		YieldFactors:   make(map[string]float64, len(sc.YieldFactors)),
		MaxConsumption: make(map[string]float64, len(sc.MaxConsumption)),
	}
	for _, m := range sc.Materials {
		out.Materials = append(out.Materials, string(m))
	}
	for m, v := range sc.YieldFactors {
		out.YieldFactors[string(m)] = v
	}
	for m, v := range sc.MaxConsumption {
		out.MaxConsumption[string(m)] = v
	}
	return out
}

func (p *HTTPScenarioParser) Parse(ctx context.Context, question string, sc domain.ScenarioContext) (_ *domain.ParsedScenario, err error) {
	defer obs.Time(ctx, "language.parse")(&err)

	if strings.TrimSpace(question) == "" {
		return nil, errors.New("parse scenario: question is empty")
	}

	payload, err := json.Marshal(parseRequest{Question: question, Context: toWire(sc)})
	if err != nil {
		return nil, fmt.Errorf("parse scenario: encode request: %w", err)
	}

	req, err := p.newRequest(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	body, err := p.do(req)
	if err != nil {
		return nil, err
	}

	parsed, err := decodeScenario(body)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func (p *HTTPScenarioParser) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	return req, nil
}

func (p *HTTPScenarioParser) do(req *http.Request) ([]byte, error) {
	resp, err := p.session.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: p.url, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ConnectionError{URL: p.url, Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return b, nil
}

// decodeScenario accepts the scenario object, optionally wrapped in a
// markdown code fence.
func decodeScenario(body []byte) (*domain.ParsedScenario, error) {
	text := stripCodeFence(string(body))

	var parsed domain.ParsedScenario
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &ParseError{Body: text, Err: err}
	}
	if parsed.Modifications == nil {
		return nil, &ParseError{Body: text, Err: errors.New("missing modifications")}
	}
	return &parsed, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
