package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"doctor-outreach/internal/config"
)

// Browser drives a headless Chrome session against the registry search page.
// One session is held open per Search call and discarded with it.
type Browser struct {
	cfg *config.Config
}

func NewBrowser(cfg *config.Config) *Browser {
	return &Browser{cfg: cfg}
}

// ErrWaitTimeout marks a bounded wait that expired, as opposed to an element
// that is simply absent from the page.
var ErrWaitTimeout = errors.New("timed out waiting for page state")

// ProgressFunc is invoked after each parsed page with the running totals.
type ProgressFunc func(page, totalPages, records int)

const (
	busyVisibleJS = `(function() {
		const el = document.querySelector('.loading');
		return !!el && el.offsetParent !== null;
	})()`
	busyGoneJS = `(function() {
		const el = document.querySelector('.loading');
		return !el || el.offsetParent === null;
	})()`
	selectByLabelJS = `(function(name, label) {
		const sel = document.querySelector('select[name="' + name + '"]');
		if (!sel) return false;
		for (const opt of sel.options) {
			if (opt.text.trim() === label) {
				sel.value = opt.value;
				sel.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	})(%q, %q)`
	selectByValueJS = `(function(name, value) {
		const sel = document.querySelector('select[name="' + name + '"]');
		if (!sel) return false;
		for (const opt of sel.options) {
			if (opt.value === value) {
				sel.value = opt.value;
				sel.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	})(%q, %q)`
	clickJS = `(function(sel) {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.click();
		return true;
	})(%q)`
)

// Search submits the filter form and walks every result page, returning the
// parsed records in page order. A page that fails to load is skipped; a
// record that fails to parse is skipped; only form-level failures abort.
func (b *Browser) Search(ctx context.Context, params SearchParams, progress ProgressFunc) ([]DoctorRecord, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	log.Printf("Starting search - UF: %s, Name: %s", params.State, params.Name)

	if err := b.fillForm(browserCtx, params); err != nil {
		return nil, err
	}
	if err := b.evalBool(browserCtx, fmt.Sprintf(clickJS, "button.w-100.btn-buscar.btnPesquisar")); err != nil {
		return nil, fmt.Errorf("clicking search button: %w", err)
	}
	if err := b.waitBusyCycle(browserCtx); err != nil {
		return nil, fmt.Errorf("waiting for first results: %w", err)
	}

	// The result list keeps rendering after the busy indicator clears.
	if err := chromedp.Run(browserCtx, chromedp.Sleep(b.cfg.ResultsSettle)); err != nil {
		return nil, err
	}

	totalRecords, err := b.readTotalRecords(browserCtx)
	if err != nil {
		return nil, err
	}
	totalPages := TotalPages(totalRecords, b.cfg.PageSize)
	log.Printf("Total records: %d, pages: %d", totalRecords, totalPages)

	return b.walkPages(browserCtx, params.State, totalPages, progress)
}

func (b *Browser) fillForm(ctx context.Context, params SearchParams) error {
	err := chromedp.Run(ctx,
		chromedp.Navigate(b.cfg.RegistryURL),
		chromedp.WaitVisible("#buscaForm", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("loading search form: %w", err)
	}

	if params.Name != "" {
		if err := chromedp.Run(ctx, chromedp.SendKeys(`input[name="nome"]`, params.Name, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("filling name field: %w", err)
		}
	}

	if err := b.evalBool(ctx, fmt.Sprintf(selectByLabelJS, "uf", params.State)); err != nil {
		return fmt.Errorf("selecting UF %q: %w", params.State, err)
	}

	// Dependent dropdowns repopulate after the UF changes.
	_ = chromedp.Run(ctx, chromedp.Sleep(b.cfg.FormSettle))

	if params.Specialty != "" {
		if err := b.evalBool(ctx, fmt.Sprintf(selectByLabelJS, "especialidade", params.Specialty)); err != nil {
			log.Printf("Warning: specialty not found: %s", params.Specialty)
		}
	}
	if params.AreaOfPractice != "" {
		if err := b.evalBool(ctx, fmt.Sprintf(selectByLabelJS, "areaAtuacao", params.AreaOfPractice)); err != nil {
			log.Printf("Warning: area of practice not found: %s", params.AreaOfPractice)
		}
	}
	if params.Status != "" {
		if err := b.evalBool(ctx, fmt.Sprintf(selectByValueJS, "tipoSituacao", statusValue(params.Status))); err != nil {
			return fmt.Errorf("selecting status %q: %w", params.Status, err)
		}
	}
	return nil
}

// statusValue maps the status filter to the tipoSituacao option value.
// ATIVO selects active registrations; everything else selects inactive.
func statusValue(status string) string {
	if status == "ATIVO" {
		return "A"
	}
	return "I"
}

// waitBusyCycle waits for the loading indicator to appear and then clear.
// Appearance is bounded by BusyAppearTimeout and tolerated when it never
// shows, since fast responses can clear before the first poll. Clearing is
// bounded by BusyClearTimeout and its expiry surfaces as ErrWaitTimeout.
func (b *Browser) waitBusyCycle(ctx context.Context) error {
	if err := b.poll(ctx, busyVisibleJS, b.cfg.BusyAppearTimeout); err != nil {
		if !errors.Is(err, chromedp.ErrPollingTimeout) {
			return err
		}
	}
	if err := b.poll(ctx, busyGoneJS, b.cfg.BusyClearTimeout); err != nil {
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return fmt.Errorf("%w: busy indicator did not clear within %s", ErrWaitTimeout, b.cfg.BusyClearTimeout)
		}
		return err
	}
	return nil
}

func (b *Browser) poll(ctx context.Context, expr string, timeout time.Duration) error {
	var ok bool
	return chromedp.Run(ctx, chromedp.Poll(expr, &ok,
		chromedp.WithPollingTimeout(timeout),
		chromedp.WithPollingInterval(250*time.Millisecond),
	))
}

func (b *Browser) evalBool(ctx context.Context, expr string) error {
	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("element not found")
	}
	return nil
}

func (b *Browser) readTotalRecords(ctx context.Context) (int, error) {
	tctx, cancel := context.WithTimeout(ctx, b.cfg.BusyAppearTimeout)
	defer cancel()

	var label string
	if err := chromedp.Run(tctx, chromedp.Text("#resultados .text-center", &label, chromedp.ByQuery)); err != nil {
		return 0, fmt.Errorf("reading results count: %w", err)
	}
	return ParseTotalRecords(label)
}

func (b *Browser) walkPages(ctx context.Context, searchState string, totalPages int, progress ProgressFunc) ([]DoctorRecord, error) {
	var results []DoctorRecord
	for page := 1; page <= totalPages; page++ {
		log.Printf("Processing page %d of %d", page, totalPages)

		if page > 1 {
			if err := b.advanceToPage(ctx, page); err != nil {
				log.Printf("Error advancing to page %d, skipping: %v", page, err)
				continue
			}
		}

		var html string
		if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
			log.Printf("Error reading page %d markup, skipping: %v", page, err)
			continue
		}
		records, err := ExtractRecords(html, searchState)
		if err != nil {
			log.Printf("Error parsing page %d, skipping: %v", page, err)
			continue
		}
		results = append(results, records...)

		if progress != nil {
			progress(page, totalPages, len(results))
		}

		_ = chromedp.Run(ctx, chromedp.Sleep(b.cfg.InterPageDelay))
	}
	return results, nil
}

// advanceToPage clicks the numbered pagination control programmatically,
// sidestepping click interception, then waits out the refresh.
func (b *Browser) advanceToPage(ctx context.Context, page int) error {
	selector := fmt.Sprintf(".paginationjs-page[data-num='%d']", page)
	if err := b.evalBool(ctx, fmt.Sprintf(clickJS, selector)); err != nil {
		return fmt.Errorf("pagination control for page %d: %w", page, err)
	}
	if err := b.waitBusyCycle(ctx); err != nil {
		return err
	}
	return chromedp.Run(ctx, chromedp.Sleep(b.cfg.PageSettle))
}
