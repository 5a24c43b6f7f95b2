package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// ProbeProgress decodes progress/status.json. A missing or corrupt file
// yields nil.
func ProbeProgress(root string) *models.ProgressData {
	data, err := os.ReadFile(filepath.Join(root, statusPath))
	if err != nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}

	// Each block is decoded on its own so one malformed block does not hide
	// the others.
	p := &models.ProgressData{Path: filepath.ToSlash(statusPath)}
	decodeBlock(raw, "tasks", &p.Tasks)
	decodeBlock(raw, "features", &p.Features)
	var status models.StatusValue
	decodeBlock(raw, "status", &status)
	p.Status = string(status)
	decodeBlock(raw, "summary", &p.Summary)
	decodeBlock(raw, "metrics", &p.Metrics)
	return p
}

func decodeBlock[T any](raw map[string]json.RawMessage, key string, dst *T) {
	block, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(block, &v); err == nil {
		*dst = v
	}
}

// ProbeJSONDocument reads a JSON object file and records its top-level
// keys. Anything other than a readable JSON object counts as absent.
func ProbeJSONDocument(root, rel string) models.JSONDocumentInfo {
	absent := models.JSONDocumentInfo{Keys: []string{}}
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return absent
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return absent
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return models.JSONDocumentInfo{
		Exists: true,
		Path:   filepath.ToSlash(rel),
		Keys:   keys,
		Fields: fields,
	}
}

// ProbeCheckpoint reads progress/checkpoint.json.
func ProbeCheckpoint(root string) models.JSONDocumentInfo {
	return ProbeJSONDocument(root, checkpointPath)
}

// ProbeQAReport reads progress/qa-report.json.
func ProbeQAReport(root string) models.JSONDocumentInfo {
	return ProbeJSONDocument(root, qaReportPath)
}

// ProbeReviewReport reads progress/review-report.json.
func ProbeReviewReport(root string) models.JSONDocumentInfo {
	return ProbeJSONDocument(root, reviewReportPath)
}

// ProbeMetrics reads progress/metrics.json.
func ProbeMetrics(root string) models.JSONDocumentInfo {
	return ProbeJSONDocument(root, metricsPath)
}

// ProbeConfig reads progress/cc-config.json.
func ProbeConfig(root string) models.JSONDocumentInfo {
	return ProbeJSONDocument(root, configPath)
}

// Token usage writers disagree on field names.
var (
	inputTokenKeys  = []string{"inputTokens", "input_tokens", "promptTokens", "prompt_tokens", "input"}
	outputTokenKeys = []string{"outputTokens", "output_tokens", "completionTokens", "completion_tokens", "output"}
	totalTokenKeys  = []string{"totalTokens", "total_tokens", "tokens", "total"}
	costKeys        = []string{"costUSD", "costUsd", "cost_usd", "cost", "totalCost", "total_cost"}
	modelKeys       = []string{"model", "modelName", "model_name"}
	sessionKeys     = []string{"session", "sessionId", "session_id"}
	timestampKeys   = []string{"timestamp", "time", "createdAt", "created_at", "date"}
)

// ProbeTokenUsage reads progress/token-usage/*.json. Each file holds a single
// record or an array of records; unreadable files are skipped.
func ProbeTokenUsage(root string) []models.TokenUsageRecord {
	records := []models.TokenUsageRecord{}
	dir := filepath.Join(root, tokenUsageDir)
	for _, name := range listFiles(dir, isJSON) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		source := filepath.ToSlash(filepath.Join(tokenUsageDir, name))

		var many []map[string]any
		if err := json.Unmarshal(data, &many); err == nil {
			for _, obj := range many {
				if obj != nil {
					records = append(records, tokenRecord(source, obj))
				}
			}
			continue
		}
		var one map[string]any
		if err := json.Unmarshal(data, &one); err == nil && one != nil {
			records = append(records, tokenRecord(source, one))
		}
	}
	return records
}

func tokenRecord(source string, obj map[string]any) models.TokenUsageRecord {
	r := models.TokenUsageRecord{
		Source:       source,
		Session:      firstString(obj, sessionKeys),
		Model:        firstString(obj, modelKeys),
		InputTokens:  int(firstNumber(obj, inputTokenKeys)),
		OutputTokens: int(firstNumber(obj, outputTokenKeys)),
		TotalTokens:  int(firstNumber(obj, totalTokenKeys)),
		CostUSD:      firstNumber(obj, costKeys),
	}
	if r.TotalTokens == 0 {
		r.TotalTokens = r.InputTokens + r.OutputTokens
	}
	if ts := firstString(obj, timestampKeys); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			r.Timestamp = t
		}
	}
	return r
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNumber(obj map[string]any, keys []string) float64 {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case float64:
			if v >= 0 {
				return v
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(v), "$"), 64); err == nil && f >= 0 {
				return f
			}
		}
	}
	return 0
}
