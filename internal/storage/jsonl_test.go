package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceScope/internal/model"
)

func readLines(t *testing.T, path string) []model.PriceReport {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var out []model.PriceReport
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var report model.PriceReport
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &report))
		out = append(out, report)
	}
	require.NoError(t, scanner.Err())
	return out
}

func samplePass(names ...string) []model.PriceReport {
	reports := make([]model.PriceReport, 0, len(names))
	for i, name := range names {
		result := model.TokenPrice{
			Token: model.TokenSpec{Name: name, Address: common.BigToAddress(common.Big1)},
			Price: float64(i + 1),
		}
		if name == "BAD" {
			result.Err = errors.New("no valid pool data")
		}
		reports = append(reports, model.NewPriceReport(result, time.Unix(1700000000, 0)))
	}
	return reports
}

func TestJsonlReportReplacesPreviousPass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "prices.jsonl")
	sink := NewJsonlReport(path)

	require.NoError(t, sink.WritePass(samplePass("WETH", "BAD", "UNI")))
	first := readLines(t, path)
	require.Len(t, first, 3)
	assert.Equal(t, "no valid pool data", first[1].Error)
	assert.Nil(t, first[1].Price)

	require.NoError(t, sink.WritePass(samplePass("LINK")))
	second := readLines(t, path)
	require.Len(t, second, 1)
	assert.Equal(t, "LINK", second[0].Token)
	require.NotNil(t, second[0].Price)
	assert.Equal(t, 1.0, *second[0].Price)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestJsonlReportFailedPassKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.jsonl")
	sink := NewJsonlReport(path)
	require.NoError(t, sink.WritePass(samplePass("WETH")))

	bad := samplePass("UNI")
	nan := math.NaN()
	bad[0].Price = &nan
	require.Error(t, sink.WritePass(bad))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
	previous := readLines(t, path)
	require.Len(t, previous, 1)
	assert.Equal(t, "WETH", previous[0].Token)
}
