package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stripANSI removes escape sequences so tests can compare glyphs.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestRenderSparkline(t *testing.T) {
	out := stripANSI(RenderSparkline([]float64{0, 50, 100}, 10))

	runes := []rune(out)
	assert.Len(t, runes, 3)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[2])
}

func TestRenderSparkline_Empty(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil, 10))
	assert.Empty(t, RenderSparkline([]float64{1, 2}, 0))
}

func TestRenderSparkline_TruncatesToWidth(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}

	out := stripANSI(RenderSparkline(data, 20))
	assert.Len(t, []rune(out), 20)
}

func TestRenderSparkline_FlatSeriesUsesMiddleLevel(t *testing.T) {
	out := stripANSI(RenderSparkline([]float64{42, 42, 42}, 10))

	for _, r := range out {
		assert.Equal(t, '▅', r)
	}
}

func TestRenderRateSparkline(t *testing.T) {
	out := stripANSI(RenderRateSparkline([]float64{0, 512, 1024}, 10))

	runes := []rune(out)
	assert.Len(t, runes, 3)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[2])
}

func TestRenderRateSparkline_AllZero(t *testing.T) {
	out := stripANSI(RenderRateSparkline([]float64{0, 0, 0}, 10))

	for _, r := range out {
		assert.Equal(t, '▁', r)
	}
}

func TestMetricColor(t *testing.T) {
	assert.Equal(t, ColorHealthy, MetricColor(0))
	assert.Equal(t, ColorHealthy, MetricColor(59.9))
	assert.Equal(t, ColorWarning, MetricColor(60))
	assert.Equal(t, ColorWarning, MetricColor(84.9))
	assert.Equal(t, ColorCritical, MetricColor(85))
	assert.Equal(t, ColorCritical, MetricColor(100))
}
