package symbols

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Refresher rebuilds the local security master from a published CSV.
type Refresher struct {
	store  *Store
	client *http.Client
	url    string
}

func NewRefresher(store *Store, client *http.Client, url string) *Refresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Refresher{
		store:  store,
		client: client,
		url:    url,
	}
}

// Refresh downloads the CSV and replaces the mirrored table.
// Returns the number of rows written.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build security master request")
	}

	res, err := r.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "download security master")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, errors.Wrapf(exception.ErrSymbolMasterStatus, "http %d", res.StatusCode)
	}

	records, err := parseCSV(res.Body)
	if err != nil {
		return 0, err
	}
	if err := r.store.Replace(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func parseCSV(body io.Reader) ([]Record, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	idCol, ok := col["Security ID"]
	if !ok {
		return nil, errors.New("security master csv is missing the Security ID column")
	}
	symbolCol := col["Stock Symbol"]
	exchangeCol := col["Exchange"]
	lotCol, hasLot := col["Min Qty"]

	var records []Record
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		if idCol >= len(row) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[idCol]), 10, 64)
		if err != nil || id == 0 {
			continue
		}

		record := Record{SecurityID: id, MinLot: 1}
		if symbolCol < len(row) {
			record.Symbol = strings.TrimSpace(row[symbolCol])
		}
		if exchangeCol < len(row) {
			record.Exchange = strings.TrimSpace(row[exchangeCol])
		}
		if hasLot && lotCol < len(row) {
			if lot, err := strconv.ParseInt(strings.TrimSpace(row[lotCol]), 10, 64); err == nil && lot > 0 {
				record.MinLot = lot
			}
		}
		records = append(records, record)
	}
	return records, nil
}
