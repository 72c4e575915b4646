package printer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	goipp "github.com/OpenPrinting/goipp"

	"printerone/internal/model"
)

type ippBackend struct{}

func init() {
	Register(ippBackend{})
}

func (ippBackend) Schemes() []string {
	return []string{"ipp", "ipps"}
}

func (ippBackend) Send(ctx context.Context, target Target, data []byte, settings *model.Settings) error {
	uri := target.URI.String()

	req := goipp.NewRequest(goipp.DefaultVersion, goipp.OpPrintJob, uint32(time.Now().UnixNano()))
	req.Operation.Add(goipp.MakeAttribute("attributes-charset", goipp.TagCharset, goipp.String("utf-8")))
	req.Operation.Add(goipp.MakeAttribute("attributes-natural-language", goipp.TagLanguage, goipp.String("en-US")))
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(uri)))
	req.Operation.Add(goipp.MakeAttribute("requesting-user-name", goipp.TagName, goipp.String("printerone")))
	req.Operation.Add(goipp.MakeAttribute("job-name", goipp.TagName, goipp.String("PrinterOne Job")))
	req.Operation.Add(goipp.MakeAttribute("document-format", goipp.TagMimeType, goipp.String("application/octet-stream")))

	for _, attr := range ippJobAttributes(settings) {
		req.Job.Add(attr)
	}

	payload, err := req.EncodeBytes()
	if err != nil {
		return deviceErr(target.Name, "encode", err)
	}

	body := io.MultiReader(bytes.NewReader(payload), bytes.NewReader(data))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ippToHTTP(uri), body)
	if err != nil {
		return deviceErr(target.Name, "request", err)
	}
	httpReq.Header.Set("Content-Type", goipp.ContentType)
	httpReq.Header.Set("Accept", goipp.ContentType)

	client := &http.Client{Transport: ippTransport(target.URI)}
	resp, err := client.Do(httpReq)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return deviceErr(target.Name, "post", err)
	}
	if resp.StatusCode/100 != 2 {
		return deviceErr(target.Name, "post", errors.New(resp.Status))
	}
	ippResp := &goipp.Message{}
	if err := ippResp.Decode(resp.Body); err != nil {
		return deviceErr(target.Name, "decode", err)
	}
	status := goipp.Status(ippResp.Code)
	if status >= goipp.StatusRedirectionOtherSite {
		return deviceErr(target.Name, "print-job", errors.New(status.String()))
	}
	return nil
}

// ippJobAttributes maps the abstract settings onto IPP job attributes.
// Unknown values are simply omitted; the printer's defaults apply.
func ippJobAttributes(settings *model.Settings) []goipp.Attribute {
	out := []goipp.Attribute{}
	if settings == nil {
		return out
	}
	if settings.Copies > 1 {
		out = append(out, goipp.MakeAttribute("copies", goipp.TagInteger, goipp.Integer(settings.Copies)))
	}
	if n, ok := map[string]int{"portrait": 3, "landscape": 4}[settings.Orientation]; ok {
		out = append(out, goipp.MakeAttribute("orientation-requested", goipp.TagEnum, goipp.Integer(n)))
	}
	if s, ok := map[string]string{
		"simplex":      "one-sided",
		"duplex_long":  "two-sided-long-edge",
		"duplex_short": "two-sided-short-edge",
	}[settings.Duplex]; ok {
		out = append(out, goipp.MakeAttribute("sides", goipp.TagKeyword, goipp.String(s)))
	}
	if s, ok := map[string]string{
		"A3":     "iso_a3_297x420mm",
		"A4":     "iso_a4_210x297mm",
		"A5":     "iso_a5_148x210mm",
		"Letter": "na_letter_8.5x11in",
		"Legal":  "na_legal_8.5x14in",
	}[settings.PaperSize]; ok {
		out = append(out, goipp.MakeAttribute("media", goipp.TagKeyword, goipp.String(s)))
	}
	if n, ok := map[string]int{"draft": 3, "normal": 4, "high": 5, "best": 5}[settings.Quality]; ok {
		out = append(out, goipp.MakeAttribute("print-quality", goipp.TagEnum, goipp.Integer(n)))
	}
	if s, ok := map[string]string{
		"color":      "color",
		"monochrome": "monochrome",
		"grayscale":  "monochrome",
	}[settings.ColorMode]; ok {
		out = append(out, goipp.MakeAttribute("print-color-mode", goipp.TagKeyword, goipp.String(s)))
	}
	return out
}

// ippToHTTP rewrites an ipp:// URI into the http:// endpoint it posts to.
func ippToHTTP(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	switch strings.ToLower(u.Scheme) {
	case "ipp":
		u.Scheme = "http"
		if u.Port() == "" {
			u.Host = u.Host + ":631"
		}
	case "ipps":
		u.Scheme = "https"
		if u.Port() == "" {
			u.Host = u.Host + ":631"
		}
	}
	return u.String()
}

func ippTransport(u *url.URL) *http.Transport {
	insecure := strings.ToLower(os.Getenv("PRINTERONE_IPP_INSECURE"))
	skipVerify := insecure == "1" || insecure == "true" || insecure == "yes"
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if u != nil && strings.EqualFold(u.Scheme, "ipps") && skipVerify {
		tlsConfig.InsecureSkipVerify = true
	}
	return &http.Transport{TLSClientConfig: tlsConfig}
}
