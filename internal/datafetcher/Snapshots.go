/*

This file contains the snapshot loaders: a CSV file loader for locally stored
historical series and an HTTP fetcher for a pre-aggregated snapshot feed.
Both return chronologically ordered snapshots. Malformed rows are skipped
with a warning rather than aborting the load; a single bad sample must not
cost the whole backtest.

*/

package datafetcher

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/rangeworks/clb/internal/logger"
	"github.com/rangeworks/clb/internal/types"
)

const httpTimeout = 20 * time.Second

var snapshotLogger = logger.GetForComponent("snapshot_loader")

var ErrNoSnapshots = errors.New("no usable snapshots in source")

// csv column layout:
// timestamp,price0,price1,price_high,price_low,fee_growth0,fee_growth1,pool_liquidity,tvl_usd
const csvColumns = 9

// LoadSnapshotsCSV reads a snapshot series from a local CSV file. A header
// row is detected and skipped. Rows that fail to parse are logged and
// dropped; the remaining rows are sorted chronologically.
func LoadSnapshotsCSV(path string) ([]types.PoolSnapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var snapshots []types.PoolSnapshot
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot CSV: %w", err)
		}
		line++

		if line == 1 && looksLikeHeader(record) {
			continue
		}

		snap, err := parseRecord(record)
		if err != nil {
			snapshotLogger.Warn().
				Int("line", line).
				Err(err).
				Msg("Skipping malformed snapshot row")
			continue
		}
		snapshots = append(snapshots, snap)
	}

	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.Before(snapshots[j].Timestamp)
	})

	snapshotLogger.Info().
		Str("path", path).
		Int("count", len(snapshots)).
		Msg("Loaded snapshot series from CSV")

	return snapshots, nil
}

// FetchSnapshots retrieves a snapshot series from an HTTP feed returning a
// JSON array of snapshots (fee-growth accumulators as decimal strings).
func FetchSnapshots(endpoint, pair string, granularity types.Granularity, limit int) ([]types.PoolSnapshot, error) {
	query := url.Values{}
	query.Set("pair", pair)
	query.Set("granularity", string(granularity))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	requestURL := endpoint
	if strings.Contains(endpoint, "?") {
		requestURL += "&" + query.Encode()
	} else {
		requestURL += "?" + query.Encode()
	}

	snapshotLogger.Debug().Str("url", requestURL).Msg("Fetching snapshot series")

	httpClient := http.Client{Timeout: httpTimeout}
	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshots: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot feed response: %w", err)
	}

	var snapshots []types.PoolSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot feed response: %w", err)
	}
	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.Before(snapshots[j].Timestamp)
	})

	snapshotLogger.Info().
		Str("pair", pair).
		Int("count", len(snapshots)).
		Msg("Fetched snapshot series")

	return snapshots, nil
}

func looksLikeHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "timestamp")
}

func parseRecord(record []string) (types.PoolSnapshot, error) {
	if len(record) < csvColumns {
		return types.PoolSnapshot{}, fmt.Errorf("expected %d columns, got %d", csvColumns, len(record))
	}

	ts, err := parseTimestamp(strings.TrimSpace(record[0]))
	if err != nil {
		return types.PoolSnapshot{}, err
	}

	floats := make([]float64, 4)
	for i := 0; i < 4; i++ {
		floats[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return types.PoolSnapshot{}, fmt.Errorf("column %d: %w", i+2, err)
		}
	}

	growth0, ok := sdkmath.NewIntFromString(strings.TrimSpace(record[5]))
	if !ok {
		return types.PoolSnapshot{}, fmt.Errorf("invalid fee_growth0 %q", record[5])
	}
	growth1, ok := sdkmath.NewIntFromString(strings.TrimSpace(record[6]))
	if !ok {
		return types.PoolSnapshot{}, fmt.Errorf("invalid fee_growth1 %q", record[6])
	}

	poolLiquidity, err := decimal.NewFromString(strings.TrimSpace(record[7]))
	if err != nil {
		return types.PoolSnapshot{}, fmt.Errorf("invalid pool_liquidity: %w", err)
	}

	tvl, err := strconv.ParseFloat(strings.TrimSpace(record[8]), 64)
	if err != nil {
		return types.PoolSnapshot{}, fmt.Errorf("invalid tvl_usd: %w", err)
	}

	return types.PoolSnapshot{
		Timestamp:     ts,
		Price0:        floats[0],
		Price1:        floats[1],
		PriceHigh:     floats[2],
		PriceLow:      floats[3],
		FeeGrowth0:    growth0,
		FeeGrowth1:    growth1,
		PoolLiquidity: poolLiquidity,
		TVLUSD:        tvl,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
