package provisioning

import (
	"fmt"
	"net/url"

	"github.com/mdp/rsc/qr"
)

// DefaultChartURLTemplate is the historical Google Charts QR endpoint. The
// provider deprecated it in 2019; it is kept for compatibility with clients
// that still resolve it. Prefer QRPNG for new integrations, or supply your
// own template to ChartURLWithTemplate.
const DefaultChartURLTemplate = "https://chart.googleapis.com/chart?chs=200x200&chld=M%%7C0&cht=qr&chl=%s"

// ChartURL wraps an otpauth URI in a QR-image URL using the default
// template. The whole URI is escaped again as a single query value.
func ChartURL(otpauthURL string) string {
	return ChartURLWithTemplate(DefaultChartURLTemplate, otpauthURL)
}

// ChartURLWithTemplate is ChartURL with a caller-supplied template. The
// template must contain exactly one %s verb, which receives the
// query-escaped otpauth URI.
func ChartURLWithTemplate(template, otpauthURL string) string {
	return fmt.Sprintf(template, url.QueryEscape(otpauthURL))
}

// QRPNG renders an otpauth URI as a PNG QR image locally, with the same
// medium error-correction level the chart endpoint used.
func QRPNG(otpauthURL string) ([]byte, error) {
	code, err := qr.Encode(otpauthURL, qr.M)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return code.PNG(), nil
}
