package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

const exoscaleSignatureScheme = "EXO2-HMAC-SHA256"

// signatureMessage builds the string Exoscale signs: the request line, the
// body, the values of the signed query parameters (sorted by name), the
// values of signed headers (none) and the expiry as a unix timestamp, one
// per line.
func signatureMessage(req *http.Request, body []byte, expires time.Time) (msg string, queryNames []string) {
	query := req.URL.Query()
	queryNames = make([]string, 0, len(query))
	for name := range query {
		queryNames = append(queryNames, name)
	}
	slices.Sort(queryNames)

	var values strings.Builder
	for _, name := range queryNames {
		values.WriteString(strings.Join(query[name], ""))
	}

	parts := []string{
		req.Method + " " + req.URL.EscapedPath(),
		string(body),
		values.String(),
		"",
		strconv.FormatInt(expires.Unix(), 10),
	}
	return strings.Join(parts, "\n"), queryNames
}

// signRequest sets the Authorization header on req.
func signRequest(req *http.Request, body []byte, apiKey, apiSecret string, expires time.Time) {
	msg, queryNames := signatureMessage(req, body, expires)

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(msg))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	var b strings.Builder
	b.WriteString(exoscaleSignatureScheme)
	b.WriteString(" credential=")
	b.WriteString(apiKey)
	if len(queryNames) > 0 {
		b.WriteString(",signed-query-args=")
		b.WriteString(strings.Join(queryNames, ";"))
	}
	b.WriteString(",expires=")
	b.WriteString(strconv.FormatInt(expires.Unix(), 10))
	b.WriteString(",signature=")
	b.WriteString(signature)

	req.Header.Set("Authorization", b.String())
}
