package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hyperifyio/laudo/internal/app"
	"github.com/hyperifyio/laudo/internal/extract"
	"github.com/hyperifyio/laudo/internal/llm"
	"github.com/hyperifyio/laudo/internal/record"
	"github.com/hyperifyio/laudo/internal/report"
	"github.com/hyperifyio/laudo/internal/template"
)

type handler struct {
	app *app.App
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listCases(c echo.Context) error {
	list, err := h.app.ListCases()
	if err != nil {
		return err
	}
	if list == nil {
		list = []record.CaseRecord{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *handler) createCase(c echo.Context) error {
	var rec record.CaseRecord
	if err := c.Bind(&rec); err != nil {
		return err
	}
	out, err := h.app.CreateCase(rec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *handler) getCase(c echo.Context) error {
	rec, err := h.app.GetCase(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// updateCase merges the JSON body into the stored case.
func (h *handler) updateCase(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	out, err := h.app.UpdateCase(c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) deleteCase(c echo.Context) error {
	if err := h.app.DeleteCase(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) clearCases(c echo.Context) error {
	if err := h.app.ClearCases(); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) stats(c echo.Context) error {
	st, err := h.app.Stats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

type extractRequest struct {
	Text string `json:"text"`
	// HTML marks Text as an HTML page rather than plain text.
	HTML bool `json:"html"`
}

// extractCase accepts the case text as JSON, text/plain or text/html.
func (h *handler) extractCase(c echo.Context) error {
	text, err := caseText(c)
	if err != nil {
		return err
	}
	data, err := h.app.ExtractCase(c.Param("id"), text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func caseText(c echo.Context) (string, error) {
	ct, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if ct == echo.MIMEApplicationJSON {
		var req extractRequest
		if err := c.Bind(&req); err != nil {
			return "", err
		}
		if req.HTML {
			return extract.FromHTML([]byte(req.Text)).Text, nil
		}
		return req.Text, nil
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "corpo ilegível")
	}
	if ct == echo.MIMETextHTML {
		return extract.FromHTML(body).Text, nil
	}
	return string(body), nil
}

func (h *handler) extraction(c echo.Context) error {
	data, err := h.app.Extraction(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func (h *handler) clearExtraction(c echo.Context) error {
	if err := h.app.ClearExtraction(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) verifyNTEP(c echo.Context) error {
	res, err := h.app.VerifyNTEP(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type reportRequest struct {
	AI         bool              `json:"ai"`
	Strategies []report.Strategy `json:"strategies,omitempty"`
	Style      string            `json:"style,omitempty"`
}

// generateReport drafts the report and returns it as an attachment, HTML by
// default or PDF with ?format=pdf. A style from the body or ?style= picks
// the strategy chain. Attempt outcomes go in X-Laudo-* headers.
func (h *handler) generateReport(c echo.Context) error {
	var req reportRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return err
		}
	}
	if req.Style == "" {
		req.Style = c.QueryParam("style")
	}
	res, err := h.app.GenerateReport(c.Request().Context(), c.Param("id"), app.ReportOptions{AI: req.AI, Strategies: req.Strategies, Style: req.Style})
	if err != nil {
		return err
	}
	hdr := c.Response().Header()
	hdr.Set("X-Laudo-Strategy", string(res.Strategy))
	hdr.Set("X-Laudo-Style", string(res.Style))
	hdr.Set("X-Laudo-Attempts", attemptsHeader(res.Attempts))

	if strings.EqualFold(c.QueryParam("format"), "pdf") {
		var buf bytes.Buffer
		if err := template.WritePDF(res.Document, &buf); err != nil {
			return err
		}
		name := strings.TrimSuffix(res.Filename, ".html") + ".pdf"
		return attachment(c, name, "application/pdf", buf.Bytes())
	}
	return attachment(c, res.Filename, echo.MIMETextHTMLCharsetUTF8, res.HTML)
}

// analyzeReport takes a finished report as text, HTML or {"text": ...}.
func (h *handler) analyzeReport(c echo.Context) error {
	text, err := caseText(c)
	if err != nil {
		return err
	}
	res, err := h.app.AnalyzeReport(text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *handler) storedReport(c echo.Context) error {
	b, err := h.app.Report(c.Param("id"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, b)
}

func attachment(c echo.Context, name, contentType string, b []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, b)
}

func attemptsHeader(attempts []report.Attempt) string {
	parts := make([]string, len(attempts))
	for i, a := range attempts {
		parts[i] = fmt.Sprintf("%s=%t", a.Strategy, a.Accepted)
	}
	return strings.Join(parts, ",")
}

func (h *handler) aiConfig(c echo.Context) error {
	cfg, err := h.app.AIConfig()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *handler) configureAI(c echo.Context) error {
	var cfg llm.Config
	if err := c.Bind(&cfg); err != nil {
		return err
	}
	out, err := h.app.ConfigureAI(cfg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) testAI(c echo.Context) error {
	if err := h.app.TestAI(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
