package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestStatusPrompt_Definition(t *testing.T) {
	def := NewStatusPrompt().Definition()
	if def.Name != "campaign-status" {
		t.Errorf("prompt name = %q, want %q", def.Name, "campaign-status")
	}
	if len(def.Arguments) != 1 || def.Arguments[0].Name != "campaign_id" {
		t.Errorf("arguments = %+v, want campaign_id", def.Arguments)
	}
}

func TestStatusPrompt_Handle(t *testing.T) {
	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{"with campaign", map[string]string{"campaign_id": "tx-roofers"}, "The campaign is `tx-roofers`."},
		{"without campaign", nil, "Ask me which campaign"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Arguments = tt.args
			res, err := NewStatusPrompt().Handle(context.Background(), req)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if len(res.Messages) != 1 {
				t.Fatalf("got %d messages, want 1", len(res.Messages))
			}
			text := res.Messages[0].Content.(mcp.TextContent).Text
			if !strings.Contains(text, tt.want) {
				t.Errorf("prompt text missing %q:\n%s", tt.want, text)
			}
			if !strings.Contains(text, "cartesian_count") {
				t.Error("prompt should reference cartesian_count")
			}
		})
	}
}
