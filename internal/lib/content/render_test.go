package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name       string
		markdown   string
		contains   []string
		notContain []string
	}{
		{
			name:     "heading and emphasis",
			markdown: "# Markets\n\nRates are *wrong*.",
			contains: []string{"<h1", "Markets</h1>", "<em>wrong</em>"},
		},
		{
			name:       "script is stripped",
			markdown:   "hello <script>alert(1)</script>",
			contains:   []string{"hello"},
			notContain: []string{"<script", "</script>"},
		},
		{
			name:       "javascript link is stripped",
			markdown:   "[click](javascript:alert(1))",
			notContain: []string{"javascript:"},
		},
		{
			name:       "inline event handler is stripped",
			markdown:   "photo <img src=x onerror=alert(1)>",
			contains:   []string{"photo"},
			notContain: []string{"onerror", "<img"},
		},
		{
			name:     "gfm table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.Render(tt.markdown)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, html, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, html, s)
			}
		})
	}
}

func TestRenderer_PolicyStripsActiveContent(t *testing.T) {
	r := NewRenderer()

	html := r.policy.Sanitize(`<p>photo <img src="x.png" onerror="alert(1)"><script>alert(2)</script></p>`)
	assert.Contains(t, html, `src="x.png"`)
	assert.NotContains(t, html, "onerror")
	assert.NotContains(t, html, "<script")
}

func TestRenderer_Excerpt(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, "Short text", r.Excerpt("**Short** text", 100))
	assert.Equal(t, "Lorem…", r.Excerpt("Lorem ipsum dolor", 6))
}
