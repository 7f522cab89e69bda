package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/budget/pkg/domain"
)

var (
	quiet     = slog.New(slog.NewTextHandler(io.Discard, nil))
	generated = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
)

func testLedger(t *testing.T) *domain.Ledger {
	t.Helper()
	l := domain.NewLedger()
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	in, err := domain.NewIncome(base, domain.IncomeRequest{Amount: domain.Cents(150000), Source: "Salary"})
	require.NoError(t, err)
	require.NoError(t, l.Append(in))

	food, err := domain.NewExpense(base.Add(time.Hour), domain.ExpenseRequest{
		Amount:      domain.Cents(1250),
		Category:    "Food",
		Description: "lunch, with friends",
		SplitWith:   []string{"Ann", "Bob"},
	})
	require.NoError(t, err)
	require.NoError(t, l.Append(food))

	rent, err := domain.NewExpense(base.Add(2*time.Hour), domain.ExpenseRequest{Amount: domain.Cents(40000), Category: "Rent"})
	require.NoError(t, err)
	require.NoError(t, l.Append(rent))

	return l
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"csv":   CSV,
		"PDF":   PDF,
		".json": JSON,
		"txt":   Text,
		"text":  Text,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDefaultFilename(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "budget_export_20240305_140709.csv", DefaultFilename(CSV, at))
	assert.Equal(t, "budget_export_20240305_140709.pdf", DefaultFilename(PDF, at))
}

func TestRenderCSV(t *testing.T) {
	data, err := Bytes(testLedger(t), CSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Timestamp", "Type", "Amount", "Title/Source", "Description", "Splits"}, rows[0])
	assert.Equal(t, []string{"2024-03-05 10:00:00", "Income", "1500.00", "Salary", "N/A", ""}, rows[1])
	assert.Equal(t, []string{"2024-03-05 11:00:00", "Expense", "12.50", "Food", "lunch, with friends", "Ann, Bob"}, rows[2])
}

func TestRenderCSVWithTotals(t *testing.T) {
	data, err := Bytes(testLedger(t), CSV, WithTotals())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	// blank lines are skipped by the reader
	tail := rows[4:]
	assert.Equal(t, [][]string{
		{"Total Income", "1500.00"},
		{"Total Expenses", "412.50"},
		{"Balance", "1087.50"},
		{"Category", "Amount"},
		{"Rent", "400.00"},
		{"Food", "12.50"},
	}, tail)
}

func TestRenderCSVEmpty(t *testing.T) {
	data, err := Bytes(domain.NewLedger(), CSV)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Type,Amount,Title/Source,Description,Splits\n", string(data))
}

func TestRenderJSON(t *testing.T) {
	data, err := Bytes(testLedger(t), JSON, WithTime(generated))
	require.NoError(t, err)

	var got struct {
		Summary struct {
			Income   float64 `json:"income"`
			Expenses float64 `json:"expenses"`
			Balance  float64 `json:"balance"`
		} `json:"summary"`
		Categories   map[string]float64   `json:"categories"`
		Transactions []domain.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1500.0, got.Summary.Income)
	assert.Equal(t, 412.5, got.Summary.Expenses)
	assert.Equal(t, 1087.5, got.Summary.Balance)
	assert.Equal(t, 400.0, got.Categories["Rent"])
	require.Len(t, got.Transactions, 3)
	assert.Equal(t, []string{"Ann", "Bob"}, got.Transactions[1].SplitWith)
}

func TestRenderText(t *testing.T) {
	data, err := Bytes(testLedger(t), Text, WithTime(generated), WithTotals())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Budget Report (2024-05-01 08:00:00)")
	assert.Contains(t, out, "Title/Source")
	assert.Contains(t, out, "lunch, with friends")
	assert.Contains(t, out, "$1087.50")
	assert.Contains(t, out, "Rent")

	data, err = Bytes(domain.NewLedger(), Text)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No transactions recorded.")
}

func TestRenderPDF(t *testing.T) {
	data, err := Bytes(testLedger(t), PDF, WithTime(generated), WithTotals())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFStartsNewPageWhenFull(t *testing.T) {
	l := domain.NewLedger()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		tx, err := domain.NewExpense(base.Add(time.Duration(i)*time.Hour), domain.ExpenseRequest{
			Amount:      domain.Cents(int64(100 + i)),
			Category:    "Food",
			Description: strings.Repeat("a very long description ", 5),
		})
		require.NoError(t, err)
		require.NoError(t, l.Append(tx))
	}

	pdf := buildPDF(l, newOptions([]Option{WithTime(generated)}))
	require.NoError(t, pdf.Error())
	assert.Greater(t, pdf.PageCount(), 3)

	small := buildPDF(testLedger(t), newOptions(nil))
	require.NoError(t, small.Error())
	assert.Equal(t, 1, small.PageCount())
}

func TestFitCutsAccentedText(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont(pdfFont, "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	got := fit(pdf, tr, strings.Repeat("é", 100), 20)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, ".."))
	assert.Equal(t, strings.Repeat("é", utf8.RuneCountInString(got)-2), strings.TrimSuffix(got, ".."))
	assert.NotContains(t, got, "\uFFFD")
	assert.LessOrEqual(t, pdf.GetStringWidth(tr(got)), 18.0)

	assert.Equal(t, "café", fit(pdf, tr, "café", 20))
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(io.Discard, domain.NewLedger(), Format("xlsx"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestPieChart(t *testing.T) {
	buf := &bytes.Buffer{}
	err := PieChart(buf, "Spending Distribution", map[string]domain.Money{
		"Food": domain.Cents(2000),
		"Rent": domain.Cents(40000),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestPieChartNothingToChart(t *testing.T) {
	assert.ErrorIs(t, PieChart(io.Discard, "x", nil), ErrNothingToChart)
	assert.ErrorIs(t, PieChart(io.Discard, "x", map[string]domain.Money{"Food": {}}), ErrNothingToChart)
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "export.csv")

	sink, err := OpenSink("file:"+path, quiet)
	require.NoError(t, err)
	assert.Equal(t, path, sink.String())
	require.NoError(t, sink.Write(context.Background(), testLedger(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Timestamp,Type,Amount"))
}

func TestOpenSink(t *testing.T) {
	sink, err := OpenSink("report.pdf", quiet)
	require.NoError(t, err)
	assert.IsType(t, &File{}, sink)

	sink, err = OpenSink("es8:http://a:9200, http://b:9200", quiet)
	require.NoError(t, err)
	require.IsType(t, &ElasticsearchV8{}, sink)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, sink.(*ElasticsearchV8).addresses)

	_, err = OpenSink("file:", quiet)
	assert.ErrorIs(t, err, ErrUnsupportedSink)

	_, err = OpenSink("file:report.xlsx", quiet)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

// fakeES answers index creation and bulk requests, remembering the IDs it was
// asked to index.
type fakeES struct {
	mu  sync.Mutex
	ids []string

	// when set, every bulk item is rejected
	reject bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Elastic-Product", "Elasticsearch")

	if !strings.HasSuffix(r.URL.Path, "/_bulk") {
		fmt.Fprint(w, `{"acknowledged":true}`)
		return
	}

	var items []string
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var action map[string]map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &action); err != nil {
			continue
		}
		meta, ok := action["index"]
		if !ok {
			continue
		}
		id, _ := meta["_id"].(string)

		status, result := 201, `"result":"created"`
		if f.reject {
			status, result = 400, `"error":{"type":"mapper_parsing_exception","reason":"bad"}`
		} else {
			f.mu.Lock()
			f.ids = append(f.ids, id)
			f.mu.Unlock()
		}
		items = append(items, fmt.Sprintf(`{"index":{"_index":"budget","_id":%q,"status":%d,%s}}`, id, status, result))
	}

	fmt.Fprintf(w, `{"took":1,"errors":%t,"items":[%s]}`, f.reject, strings.Join(items, ","))
}

func TestElasticsearchSink(t *testing.T) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	l := testLedger(t)
	sink := NewElasticsearchV8(quiet, srv.URL)
	require.NoError(t, sink.Write(context.Background(), l))

	want := []string{}
	for _, tx := range l.Transactions {
		want = append(want, tx.ID)
	}
	assert.ElementsMatch(t, want, fake.ids)
}

func TestElasticsearchSinkFailures(t *testing.T) {
	srv := httptest.NewServer(&fakeES{reject: true})
	defer srv.Close()

	sink := NewElasticsearchV8(quiet, srv.URL)
	err := sink.Write(context.Background(), testLedger(t))
	assert.Error(t, err)
}
