package assembly

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/HendryAvila/spinforge/internal/cartesian"
	"github.com/HendryAvila/spinforge/internal/grammar"
	"github.com/HendryAvila/spinforge/internal/spintax"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

type fakeBlocks map[string]Block

func (f fakeBlocks) FetchBlock(_ context.Context, id string) (Block, error) {
	b, ok := f[id]
	if !ok {
		return Block{}, errors.New("no such block")
	}
	return b, nil
}

func austin() cartesian.Location {
	return cartesian.Location{ID: "c1", City: "Austin", County: "Travis", State: "Texas", StateCode: "TX"}
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func assemble(t *testing.T, p *Pipeline, c Context) Article {
	t.Helper()
	a, err := p.Assemble(context.Background(), c, Overrides{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return a
}

// ─── ResolveText ────────────────────────────────────────────────────────────

func TestResolveText_SameValueForBothPlaceholderForms(t *testing.T) {
	vars := spintax.Variables{"City": "A", "city": "B"}
	got := ResolveText("{{City}} {City} {{city}} {city}", vars, grammar.Neutral(), seeded())
	if got != "A A B B" {
		t.Errorf("ResolveText = %q, want %q", got, "A A B B")
	}
}

func TestResolveText_Order(t *testing.T) {
	vars := austin().Variables()
	vars["niche"] = "{Roof|Roof}ing"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"variable inside spintax", "{Hello {city}|Hello {city}}", "Hello Austin"},
		{"variable value holding spintax", "{niche} pros", "Roofing pros"},
		{"context token", "{{CITY}}, {{STATE_CODE}}", "Austin, TX"},
		{"grammar after spintax", "{[[PRONOUN]]|[[PRONOUN]]} [[A_AN:owner]]", "they an owner"},
		{"cap on resolved variable", "[[CAP:{county}]]", "Travis"},
		{"unknown token kept", "{{COMPONENT_OPTIN_FORM}}", "{{COMPONENT_OPTIN_FORM}}"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveText(tt.in, vars, grammar.Neutral(), seeded())
			if got != tt.want {
				t.Errorf("ResolveText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ─── Assemble ───────────────────────────────────────────────────────────────

func TestAssemble_ResolvesEveryField(t *testing.T) {
	src := fakeBlocks{
		"intro": {
			Title:       "{Best|Best} {niche} in {city}",
			Hook:        "[[CAP:[[PRONOUN]]]] [[ISARE]] ready",
			Pains:       []string{"Slow {service}", ""},
			Solutions:   []string{"We fix {{CITY}}"},
			ValuePoints: []string{"Trusted by {agency_name}"},
			CTA:         "Call {site_name}",
		},
	}
	p := New(src, WithRand(seeded()), WithAgency(Agency{Name: "Acme", URL: "https://acme.test"}))
	a := assemble(t, p, Context{
		Niche:     "Roofing",
		City:      austin(),
		Site:      Site{Name: "RoofCo"},
		Template:  Template{ID: "t1", Structure: []string{"intro"}},
		Variables: map[string]string{"service": "repairs"},
	})

	if len(a.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(a.Blocks))
	}
	b := a.Blocks[0]
	checks := map[string]string{
		"title":    b.Title,
		"hook":     b.Hook,
		"pains":    b.Pains[0],
		"solution": b.Solutions[0],
		"value":    b.ValuePoints[0],
		"cta":      b.CTA,
	}
	want := map[string]string{
		"title":    "Best Roofing in Austin",
		"hook":     "They are ready",
		"pains":    "Slow repairs",
		"solution": "We fix Austin",
		"value":    "Trusted by Acme",
		"cta":      "Call RoofCo",
	}
	for k, got := range checks {
		if got != want[k] {
			t.Errorf("%s = %q, want %q", k, got, want[k])
		}
	}
	if strings.Contains(a.HTMLContent, "<li></li>") {
		t.Errorf("blank pain rendered: %s", a.HTMLContent)
	}
	if a.MetaDesc != MetaDescription("Roofing", "Austin") {
		t.Errorf("MetaDesc = %q", a.MetaDesc)
	}
}

func TestAssemble_ContextWinsOverExtraVariables(t *testing.T) {
	src := fakeBlocks{"b": {Title: "{city}"}}
	a := assemble(t, New(src), Context{
		City:      austin(),
		Template:  Template{Structure: []string{"b"}},
		Variables: map[string]string{"City": "Dallas"},
	})
	if a.Blocks[0].Title != "Austin" {
		t.Errorf("title = %q, want Austin", a.Blocks[0].Title)
	}
}

func TestAssemble_ComponentsAreNotResolvedAgain(t *testing.T) {
	src := fakeBlocks{"b": {Content: "Intro {city}\n{{COMPONENT_RAW}}"}}
	comps := Components{"COMPONENT_RAW": func() string { return "{city} [[PRONOUN]] {a|b}" }}
	a := assemble(t, New(src, WithComponents(comps)), Context{
		City:     austin(),
		Template: Template{Structure: []string{"b"}},
	})
	want := "Intro Austin\n{city} [[PRONOUN]] {a|b}"
	if a.Blocks[0].Content != want {
		t.Errorf("content = %q, want %q", a.Blocks[0].Content, want)
	}
}

func TestAssemble_DefaultComponents(t *testing.T) {
	src := fakeBlocks{"b": {Content: "{{COMPONENT_AVATAR_GRID}} {{COMPONENT_OPTIN_FORM}} {{COMPONENT_UNKNOWN}}"}}
	a := assemble(t, New(src), Context{Template: Template{Structure: []string{"b"}}})
	c := a.Blocks[0].Content
	for _, want := range []string{"Scaling Founder", "Enterprise VP", "Book Your Strategy Session", "{{COMPONENT_UNKNOWN}}"} {
		if !strings.Contains(c, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(c, "{{COMPONENT_AVATAR_GRID}}") || strings.Contains(c, "{{COMPONENT_OPTIN_FORM}}") {
		t.Errorf("known component left unexpanded")
	}
}

func TestAssemble_MarkdownContent(t *testing.T) {
	src := fakeBlocks{"b": {
		Content: "## {niche} in {city}\n\n{{COMPONENT_OPTIN_FORM}}",
		Format:  FormatMarkdown,
	}}
	a := assemble(t, New(src), Context{
		Niche:    "Plumbing",
		City:     austin(),
		Template: Template{Structure: []string{"b"}},
	})
	c := a.Blocks[0].Content
	if !strings.HasPrefix(c, "<h2>Plumbing in Austin</h2>") {
		t.Errorf("markdown not converted: %q", c)
	}
	if strings.Contains(c, "<p><div") {
		t.Errorf("component left inside paragraph: %q", c)
	}
	if !strings.Contains(c, "Book Your Strategy Session") {
		t.Errorf("component not expanded: %q", c)
	}
}

func TestAssemble_MissingBlockDegrades(t *testing.T) {
	src := fakeBlocks{"ok": {Title: "Fine"}}
	var failed []string
	p := New(src, WithFailureHook(func(_ context.Context, id string, _ error) {
		failed = append(failed, id)
	}))
	a := assemble(t, p, Context{Template: Template{Structure: []string{"gone", "ok"}}})

	if len(failed) != 1 || failed[0] != "gone" {
		t.Errorf("failures = %v, want [gone]", failed)
	}
	if len(a.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(a.Blocks))
	}
	if !strings.HasPrefix(a.HTMLContent, "<section class=\"content-block\" id=\"gone\">\n</section>") {
		t.Errorf("missing block not rendered empty: %q", a.HTMLContent)
	}
}

func TestAssemble_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(fakeBlocks{}).Assemble(ctx, Context{Template: Template{Structure: []string{"a"}}}, Overrides{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAssemble_DefaultNiche(t *testing.T) {
	a := assemble(t, New(fakeBlocks{"b": {Title: "{niche}"}}), Context{
		Template: Template{Structure: []string{"b"}},
	})
	if a.Blocks[0].Title != DefaultNiche {
		t.Errorf("title = %q, want %q", a.Blocks[0].Title, DefaultNiche)
	}
}

func TestAssemble_GeneratedTitleAndSlug(t *testing.T) {
	p := New(fakeBlocks{}, WithRand(seeded()))
	c := Context{Niche: "Dentist", City: austin(), Site: Site{Name: "Smile"}}
	a := assemble(t, p, c)

	if a.TitlePattern < 0 || a.TitlePattern >= len(TitlePatterns) {
		t.Fatalf("TitlePattern = %d", a.TitlePattern)
	}
	if !strings.Contains(a.Title, "Dentist") || !strings.Contains(a.Title, "Austin") {
		t.Errorf("title = %q, want niche and city", a.Title)
	}
	if strings.Contains(a.Title, "{") {
		t.Errorf("title has unresolved placeholder: %q", a.Title)
	}
	if a.Slug != Slugify(a.Title) {
		t.Errorf("slug = %q, want %q", a.Slug, Slugify(a.Title))
	}
}

func TestAssemble_Overrides(t *testing.T) {
	a, err := New(fakeBlocks{}).Assemble(context.Background(), Context{City: austin()},
		Overrides{Title: "Custom Headline!", Slug: "my-slug"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != "Custom Headline!" || a.Slug != "my-slug" || a.TitlePattern != -1 {
		t.Errorf("got title=%q slug=%q pattern=%d", a.Title, a.Slug, a.TitlePattern)
	}

	a, _ = New(fakeBlocks{}).Assemble(context.Background(), Context{}, Overrides{Title: "Custom Headline!"})
	if a.Slug != "custom-headline" {
		t.Errorf("slug = %q, want custom-headline", a.Slug)
	}
}

func TestTitle_SiteFallback(t *testing.T) {
	p := New(fakeBlocks{}, WithRand(fixedRand(1)))
	got, i := p.title(Context{Niche: "HVAC", City: austin()})
	if i != 1 || got != "Austin HVAC Experts - Official Site" {
		t.Errorf("title = %q (%d)", got, i)
	}
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

// ─── Slugify ────────────────────────────────────────────────────────────────

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The #1 Dentist Service in Austin, TX", "the-1-dentist-service-in-austin-tx"},
		{"  --Hello   World--  ", "hello-world"},
		{"Café Déjà Vu", "caf-d-j-vu"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
