package tools

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/seed"
	"github.com/HendryAvila/spinforge/internal/store"
)

// --- Test helpers ---

// newTestEnv returns a store seeded with the demo fixture and an engine
// over it.
func newTestEnv(t *testing.T) (*store.Store, *engine.Engine) {
	t.Helper()
	s, err := store.New(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("setup: store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	f, err := seed.Demo()
	if err != nil {
		t.Fatalf("setup: demo fixture: %v", err)
	}
	if _, err := seed.Apply(context.Background(), s, f); err != nil {
		t.Fatalf("setup: seed: %v", err)
	}
	return s, engine.New(s, s, s, engine.WithRand(rand.New(rand.NewPCG(1, 2))))
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decode(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), v); err != nil {
		t.Fatalf("decoding result: %v\n%s", err, resultText(r))
	}
}

// --- Definitions ---

func TestDefinitions(t *testing.T) {
	s, e := newTestEnv(t)

	tests := []struct {
		def      mcp.Tool
		name     string
		required []string
	}{
		{NewCountTool(e).Definition(), "cartesian_count", nil},
		{NewPreviewTool(e).Definition(), "cartesian_preview", nil},
		{NewGenerateTool(e).Definition(), "cartesian_generate", []string{"campaign_id"}},
		{NewAssembleTool(e).Definition(), "article_assemble", []string{"template_id"}},
		{NewArticleJobTool(e).Definition(), "article_job_run", []string{"job_id"}},
		{NewInventoryTool(s).Definition(), "inventory_list", []string{"campaign_id"}},
	}
	for _, tt := range tests {
		if tt.def.Name != tt.name {
			t.Errorf("tool name = %q, want %q", tt.def.Name, tt.name)
		}
		for _, r := range tt.required {
			if _, ok := tt.def.InputSchema.Properties[r]; !ok {
				t.Errorf("%s: missing %q parameter", tt.name, r)
			}
			found := false
			for _, got := range tt.def.InputSchema.Required {
				if got == r {
					found = true
				}
			}
			if !found {
				t.Errorf("%s: %q should be required", tt.name, r)
			}
		}
	}
}

func TestRequiredArguments(t *testing.T) {
	s, e := newTestEnv(t)
	ctx := context.Background()

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"campaign_id": NewGenerateTool(e).Handle,
		"template_id": NewAssembleTool(e).Handle,
		"job_id":      NewArticleJobTool(e).Handle,
		"inventory":   NewInventoryTool(s).Handle,
	}
	for name, h := range handlers {
		res, err := h(ctx, makeReq(map[string]interface{}{}))
		if err != nil {
			t.Fatalf("%s: protocol error: %v", name, err)
		}
		if !res.IsError || !strings.Contains(resultText(res), "is required") {
			t.Errorf("%s: result = %q, want required error", name, resultText(res))
		}
	}
}

// --- cartesian_count ---

func TestCountTool(t *testing.T) {
	_, e := newTestEnv(t)
	tool := NewCountTool(e)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantTotal int64
		wantLocs  int
		truncated bool
	}{
		{"template only", map[string]interface{}{"template": "{a|b} {c|d|e}"}, 6, 0, false},
		{"campaign", map[string]interface{}{"campaign_id": "tx-roofers"}, 9, 3, false},
		{"campaign by county", map[string]interface{}{"campaign_id": "tx-roofers", "location_mode": "city", "location_target": "dallas-co"}, 6, 2, false},
		{"window", map[string]interface{}{"template": "{a|b|c|d}", "max_combinations": float64(3)}, 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tool.Handle(ctx, makeReq(tt.args))
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			var meta struct {
				TotalPossibleCombinations int64 `json:"totalPossibleCombinations"`
				LocationCount             int   `json:"locationCount"`
				WasTruncated              bool  `json:"wasTruncated"`
			}
			decode(t, res, &meta)
			if meta.TotalPossibleCombinations != tt.wantTotal {
				t.Errorf("total = %d, want %d", meta.TotalPossibleCombinations, tt.wantTotal)
			}
			if meta.LocationCount != tt.wantLocs {
				t.Errorf("locations = %d, want %d", meta.LocationCount, tt.wantLocs)
			}
			if meta.WasTruncated != tt.truncated {
				t.Errorf("wasTruncated = %v, want %v", meta.WasTruncated, tt.truncated)
			}
		})
	}
}

func TestCountTool_Errors(t *testing.T) {
	_, e := newTestEnv(t)
	tool := NewCountTool(e)

	for _, args := range []map[string]interface{}{
		{},
		{"campaign_id": "missing"},
		{"template": "{a|b}", "location_mode": "zip"},
	} {
		res, err := tool.Handle(context.Background(), makeReq(args))
		if err != nil {
			t.Fatalf("protocol error: %v", err)
		}
		if !res.IsError {
			t.Errorf("args %v: expected tool error, got %q", args, resultText(res))
		}
	}
}

// --- cartesian_preview ---

func TestPreviewTool(t *testing.T) {
	_, e := newTestEnv(t)
	res, err := NewPreviewTool(e).Handle(context.Background(), makeReq(map[string]interface{}{
		"template": "{Hello|Hi} world",
		"count":    float64(4),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out engine.PreviewResponse
	decode(t, res, &out)
	if len(out.Preview) != 4 {
		t.Fatalf("got %d samples, want 4", len(out.Preview))
	}
	for _, p := range out.Preview {
		if p != "Hello world" && p != "Hi world" {
			t.Errorf("sample = %q", p)
		}
	}
	if out.Metadata.TotalSpintaxCombinations != 2 {
		t.Errorf("spintax combinations = %d, want 2", out.Metadata.TotalSpintaxCombinations)
	}
}

// --- cartesian_generate + inventory_list ---

func TestGenerateAndInventory(t *testing.T) {
	s, e := newTestEnv(t)
	ctx := context.Background()
	gen := NewGenerateTool(e)

	res, err := gen.Handle(ctx, makeReq(map[string]interface{}{"campaign_id": "tx-roofers"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out engine.GenerateResponse
	decode(t, res, &out)
	if out.Results.Inserted != 9 || !out.Done || out.NextOffset != 9 {
		t.Errorf("generate = %+v, want 9 inserted and done", out)
	}

	// A second pass only finds duplicates.
	res, _ = gen.Handle(ctx, makeReq(map[string]interface{}{"campaign_id": "tx-roofers"}))
	decode(t, res, &out)
	if out.Results.Inserted != 0 || out.Results.AlreadyExisted != 9 {
		t.Errorf("second generate = %+v, want 0 inserted", out.Results)
	}

	inv := NewInventoryTool(s)
	res, err = inv.Handle(ctx, makeReq(map[string]interface{}{"campaign_id": "tx-roofers", "limit": float64(3)}))
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	text := resultText(res)
	if !strings.Contains(text, "9 headlines, 9 available, 0 used. Showing 3") {
		t.Errorf("inventory header = %q", text)
	}
	if !strings.Contains(text, "roofer in ") || !strings.Contains(text, "(available)") {
		t.Errorf("inventory rows missing:\n%s", text)
	}

	res, _ = inv.Handle(ctx, makeReq(map[string]interface{}{"campaign_id": "tx-roofers", "status": "used"}))
	if !strings.Contains(resultText(res), "No headlines found") {
		t.Errorf("used inventory = %q", resultText(res))
	}

	res, _ = inv.Handle(ctx, makeReq(map[string]interface{}{"campaign_id": "tx-roofers", "status": "spent"}))
	if !res.IsError {
		t.Errorf("invalid status should be a tool error, got %q", resultText(res))
	}
}

func TestGenerateTool_NicheOverride(t *testing.T) {
	s, e := newTestEnv(t)
	ctx := context.Background()

	res, err := NewGenerateTool(e).Handle(ctx, makeReq(map[string]interface{}{
		"campaign_id":      "tx-roofers",
		"location_mode":    "none",
		"template":         "{Best|Top} {niche}",
		"niche_variables":  map[string]interface{}{"niche": "plumber"},
		"max_combinations": float64(1),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out engine.GenerateResponse
	decode(t, res, &out)
	if out.Results.Inserted != 1 || out.Done {
		t.Errorf("results = %+v done=%v, want 1 inserted, not done", out.Results, out.Done)
	}
	texts, _ := s.ExistingHeadlines(ctx, "tx-roofers")
	if len(texts) != 1 || texts[0] != "Best plumber" {
		t.Errorf("stored = %v, want [Best plumber]", texts)
	}
}

func TestGenerateTool_UnknownCampaign(t *testing.T) {
	_, e := newTestEnv(t)
	res, err := NewGenerateTool(e).Handle(context.Background(), makeReq(map[string]interface{}{"campaign_id": "nope"}))
	if err != nil {
		t.Fatalf("protocol error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(res), "generation failed") {
		t.Errorf("result = %q, want generation failed", resultText(res))
	}
}

// --- article_assemble ---

func TestAssembleTool(t *testing.T) {
	s, e := newTestEnv(t)
	ctx := context.Background()

	res, err := NewAssembleTool(e).Handle(ctx, makeReq(map[string]interface{}{
		"template_id": "local-landing",
		"avatar_id":   "founder",
		"variant_key": "female",
		"niche":       "roofer",
		"city_id":     "austin",
		"site_name":   "Lone Star Roofing",
		"persist":     true,
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out assembleResult
	decode(t, res, &out)

	if out.Blocks != 3 || out.StoredID == "" {
		t.Errorf("result = %+v, want 3 blocks and a stored id", out)
	}
	for _, want := range []string{"she is ready", "Austin", "a roofer", "<form"} {
		if !strings.Contains(out.HTMLContent, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if !strings.Contains(out.MetaDesc, "roofer in Austin") {
		t.Errorf("meta = %q", out.MetaDesc)
	}
	if strings.Contains(out.HTMLContent, "{{") || strings.Contains(out.HTMLContent, "[[") {
		t.Errorf("unresolved tokens in html:\n%s", out.HTMLContent)
	}

	stored, err := s.GetArticle(ctx, out.Slug)
	if err != nil {
		t.Fatalf("GetArticle(%q): %v", out.Slug, err)
	}
	if stored.City != "Austin" || stored.AvatarID != "founder" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestAssembleTool_WithoutHTML(t *testing.T) {
	_, e := newTestEnv(t)
	res, err := NewAssembleTool(e).Handle(context.Background(), makeReq(map[string]interface{}{
		"template_id":  "local-landing",
		"title":        "Custom Title",
		"include_html": false,
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out assembleResult
	decode(t, res, &out)
	if out.HTMLContent != "" {
		t.Error("html should be omitted")
	}
	if out.Title != "Custom Title" || out.Slug != "custom-title" {
		t.Errorf("title/slug = %q/%q", out.Title, out.Slug)
	}
}

// --- article_job_run ---

func TestArticleJobTool(t *testing.T) {
	_, e := newTestEnv(t)
	ctx := context.Background()
	tool := NewArticleJobTool(e)

	res, err := tool.Handle(ctx, makeReq(map[string]interface{}{"job_id": "tx-roofers-articles"}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out jobResult
	decode(t, res, &out)
	if out.Generated != 5 || out.CurrentOffset != 5 || out.Completed {
		t.Errorf("first batch = %+v, want 5 generated at offset 5", out.ArticleJobResult)
	}
	if len(out.Articles) != 5 || out.Articles[0].City != "Dallas" {
		t.Errorf("articles = %+v", out.Articles)
	}

	res, _ = tool.Handle(ctx, makeReq(map[string]interface{}{"job_id": "tx-roofers-articles", "include_articles": false}))
	out = jobResult{}
	decode(t, res, &out)
	if out.Generated != 1 || !out.Completed || len(out.Articles) != 0 {
		t.Errorf("second batch = %+v, want 1 generated and completed", out)
	}

	res, _ = tool.Handle(ctx, makeReq(map[string]interface{}{"job_id": "tx-roofers-articles"}))
	if res.IsError || !strings.Contains(resultText(res), "already complete") {
		t.Errorf("third call = %q, want already complete", resultText(res))
	}

	res, _ = tool.Handle(ctx, makeReq(map[string]interface{}{"job_id": "tx-roofers-headlines"}))
	if !res.IsError {
		t.Errorf("headlines job should be rejected, got %q", resultText(res))
	}
}
