package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/viralscope-go/internal/constants"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/tidwall/gjson"
)

// readJSONResponse accepts a response only when it is 2xx, declares a JSON
// media type, parses as JSON and carries no error field. The error field is
// checked before anything is extracted from the body.
func readJSONResponse(channel string, resp *http.Response) (gjson.Result, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.APIConfig.MaxBodyBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: read body: %w", channel, err)
	}

	jsonType := isJSONMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("%s returned status %d", channel, resp.StatusCode)
		if jsonType && gjson.ValidBytes(body) {
			if detail := errorMessage(gjson.ParseBytes(body)); detail != "" {
				msg += ": " + detail
			}
		}
		return gjson.Result{}, errors.NewAPIError(msg, channel, resp.StatusCode, map[string]any{
			"body": util.TruncateString(string(body), constants.GatewayConfig.PreviewRunes),
		})
	}

	if !jsonType {
		return gjson.Result{}, errors.NewMalformedResponseError(
			fmt.Sprintf("%s answered %q instead of JSON%s", channel, resp.Header.Get("Content-Type"), describeHTML(body)),
			channel,
			util.TruncateString(string(body), constants.GatewayConfig.PreviewRunes),
		)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.NewMalformedResponseError(channel+" returned invalid JSON", channel,
			util.TruncateString(string(body), constants.GatewayConfig.PreviewRunes))
	}

	parsed := gjson.ParseBytes(body)
	if hasErrorField(parsed) {
		return gjson.Result{}, errors.NewAPIError(
			fmt.Sprintf("%s reported an error: %s", channel, errorMessage(parsed)),
			channel, http.StatusBadGateway, nil)
	}
	return parsed, nil
}

func isJSONMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// hasErrorField is true for {"error": ...} with any value other than null,
// false or "".
func hasErrorField(body gjson.Result) bool {
	if !body.IsObject() {
		return false
	}
	e := body.Get("error")
	switch e.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return strings.TrimSpace(e.Str) != ""
	}
	return e.Exists()
}

func errorMessage(body gjson.Result) string {
	for _, path := range []string{"message", "error.message", "error"} {
		if v := body.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// describeHTML names the page a misrouted relay served, e.g. a proxy's 404
// page or the single-page app shell.
func describeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" (page title %q)", util.TruncateString(title, 80))
}

// unwrapItems turns {items:[...]} into the bare list.
func unwrapItems(body gjson.Result) []byte {
	if body.IsObject() {
		if items := body.Get("items"); items.IsArray() {
			return []byte(items.Raw)
		}
	}
	return []byte(body.Raw)
}
