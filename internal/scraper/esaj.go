// Package scraper enriches search results with case data from the TJSP
// eSAJ public consultation site, driving a headless browser.
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"poursuite/internal/config"
)

// ProcessData is one scraped case record. Err is set instead of aborting
// the batch when a single lookup fails.
type ProcessData struct {
	Number         string
	InitialDate    string
	Class          string
	Subject        string
	Value          string
	LastMovement   string
	Status         string
	Plaintiff      string
	Defendant      string
	OtherProcesses int
	Err            string
}

// Headers returns the column names used for display and CSV output.
func Headers() []string {
	return []string{
		"Number", "Initial Date", "Class", "Subject", "Value",
		"Last Movement", "Status", "Plaintiff", "Defendant",
		"Other Processes", "Error",
	}
}

// Row returns the record as CSV/table cells, aligned with Headers.
func (p ProcessData) Row() []string {
	return []string{
		p.Number, p.InitialDate, p.Class, p.Subject, p.Value,
		p.LastMovement, p.Status, p.Plaintiff, p.Defendant,
		strconv.Itoa(p.OtherProcesses), p.Err,
	}
}

// processNumberStrict matches the unified Brazilian case-number format
// NNNNNNN-DD.AAAA.J.TR.OOOO.
var processNumberStrict = regexp.MustCompile(`^\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}$`)

// ValidProcessNumber reports whether n is a complete unified case number.
func ValidProcessNumber(n string) bool {
	return processNumberStrict.MatchString(n)
}

const (
	sealedElementSelector = "#labelSituacaoProcesso"
	sealedText            = "segredo de justiça"

	pageTimeout  = 30 * time.Second
	fieldTimeout = 3 * time.Second
)

// Scraper drives one shared browser; each lookup runs in its own tab.
type Scraper struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.ScraperConfig
	logger   *zap.Logger
}

// New launches a headless browser and connects to it.
func New(cfg config.ScraperConfig, logger *zap.Logger) (*Scraper, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &Scraper{browser: browser, launcher: l, cfg: cfg, logger: logger}, nil
}

// Close shuts the browser down and cleans the launcher's temp profile.
func (s *Scraper) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	return err
}

// Lookup scrapes one case. Failures come back inside the record, never as
// a returned error, so batches can keep going.
func (s *Scraper) Lookup(ctx context.Context, processNumber string) ProcessData {
	if !ValidProcessNumber(processNumber) {
		return ProcessData{
			Number: processNumber,
			Err:    "invalid process number format, expected NNNNNNN-DD.AAAA.J.TR.OOOO",
		}
	}

	data, err := s.lookup(ctx, processNumber)
	if err != nil {
		s.logger.Warn("esaj lookup failed",
			zap.String("process", processNumber), zap.Error(err))
		return ProcessData{Number: processNumber, Err: err.Error()}
	}
	return data
}

func (s *Scraper) lookup(ctx context.Context, processNumber string) (ProcessData, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: s.cfg.BaseURL})
	if err != nil {
		return ProcessData{}, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(pageTimeout)

	if err := s.submitSearchForm(page, processNumber); err != nil {
		return ProcessData{}, err
	}
	if err := page.WaitLoad(); err != nil {
		return ProcessData{}, fmt.Errorf("wait for result page: %w", err)
	}

	// The page hides most fields behind a "Mais" (more) link; missing it
	// just means the short layout was served.
	if mais, err := page.Timeout(fieldTimeout).ElementR("a", "Mais"); err == nil {
		if err := mais.Click(proto.InputMouseButtonLeft, 1); err == nil {
			_ = page.WaitLoad()
		}
	}

	if s.isSealedCase(page) {
		return ProcessData{Number: processNumber, Err: "Segredo de justiça"}, nil
	}

	data := ProcessData{
		Number:       processNumber,
		InitialDate:  truncate(s.fieldText(page, "#dataHoraDistribuicaoProcesso"), 10),
		Class:        s.fieldText(page, "#classeProcesso"),
		Subject:      s.fieldText(page, "#assuntoProcesso"),
		Value:        FormatCurrency(s.fieldText(page, "#valorAcaoProcesso")),
		LastMovement: s.fieldText(page, "td.dataMovimentacao"),
		Status:       s.fieldText(page, "span.unj-tag#labelSituacaoProcesso"),
	}
	data.Plaintiff, data.Defendant = s.extractParties(page)

	if data.Defendant != "" {
		data.OtherProcesses = s.countProcessesByParty(ctx, data.Defendant)
	}
	return data, nil
}

// submitSearchForm fills the split case-number inputs and submits. eSAJ
// wants the first 15 characters and the 4-digit forum code separately.
func (s *Scraper) submitSearchForm(page *rod.Page, processNumber string) error {
	if err := s.fillInput(page, "#numeroDigitoAnoUnificado", processNumber[:15]); err != nil {
		return err
	}
	if err := s.fillInput(page, "#foroNumeroUnificado", processNumber[len(processNumber)-4:]); err != nil {
		return err
	}

	btn, err := page.Element("#botaoConsultarProcessos")
	if err != nil {
		return fmt.Errorf("find search button: %w", err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click search button: %w", err)
	}
	return nil
}

func (s *Scraper) fillInput(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	// Select any pre-filled value so Input replaces instead of appending.
	_ = el.SelectAllText()
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (s *Scraper) isSealedCase(page *rod.Page) bool {
	el, err := page.Timeout(fieldTimeout).Element(sealedElementSelector)
	if err != nil {
		return false
	}
	text, err := el.Text()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(text), sealedText)
}

// fieldText reads a field's trimmed text; absent elements are normal on
// eSAJ (layouts vary per case class) and yield the empty string.
func (s *Scraper) fieldText(page *rod.Page, selector string) string {
	el, err := page.Timeout(fieldTimeout).Element(selector)
	if err != nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// extractParties reads the first two party cells: plaintiff then defendant.
// Each cell also lists lawyers after a line break, which are discarded.
func (s *Scraper) extractParties(page *rod.Page) (plaintiff, defendant string) {
	els, err := page.Timeout(fieldTimeout).Elements("td.nomeParteEAdvogado")
	if err != nil || len(els) < 2 {
		return "", ""
	}
	return firstLine(els[0]), firstLine(els[1])
}

func firstLine(el *rod.Element) string {
	text, err := el.Text()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}

// countProcessesByParty runs a second by-party-name search and reads the
// result counter. Best effort: any failure reports zero.
func (s *Scraper) countProcessesByParty(ctx context.Context, partyName string) int {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: s.cfg.BaseURL})
	if err != nil {
		return 0
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(pageTimeout)

	mode, err := page.Element("#cbPesquisa")
	if err != nil {
		return 0
	}
	if err := mode.Select([]string{"NMPARTE"}, true, rod.SelectorTypeRegex); err != nil {
		return 0
	}
	if checkbox, err := page.Timeout(fieldTimeout).Element("#pesquisarPorNomeCompleto"); err == nil {
		_, _ = checkbox.Eval("() => this.click()")
	}
	if err := s.fillInput(page, "#campo_NMPARTE", partyName); err != nil {
		return 0
	}
	btn, err := page.Element("#botaoConsultarProcessos")
	if err != nil {
		return 0
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return 0
	}

	counter, err := page.Timeout(fieldTimeout).Element("#contadorDeProcessos")
	if err != nil {
		return 0
	}
	text, err := counter.Text()
	if err != nil {
		return 0
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// currencySpaces collapses whitespace inside scraped currency values.
var currencySpaces = regexp.MustCompile(`\s+`)

// FormatCurrency normalizes a scraped currency string to a single space
// after the R$ prefix.
func FormatCurrency(value string) string {
	if value == "" {
		return ""
	}
	value = currencySpaces.ReplaceAllString(value, "")
	if strings.HasPrefix(value, "R$") {
		value = "R$ " + value[2:]
	}
	return value
}
