package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gapFadeBot/internal/domain"
)

var tradeHeader = []string{"timestamp", "type", "side", "price", "quantity", "pnl", "close_reason"}

// WriteKlinesToCSV dumps raw exchange klines, e.g. next to a fetched session file.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"})

	for _, k := range klines {
		writer.Write([]string{
			k.OpenTime.Format(time.RFC3339),
			k.CloseTime.Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
	}
	writer.Flush()
	return writer.Error()
}

// WriteTradesToCSV writes the trade log to filename.
func WriteTradesToCSV(trades []domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteTrades(file, trades); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteTrades writes the trade log as CSV with a header row.
func WriteTrades(w io.Writer, trades []domain.Trade) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := writer.Write([]string{
			t.Timestamp,
			string(t.Type),
			string(t.Side),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.Itoa(t.Quantity),
			strconv.FormatFloat(t.PNL, 'f', -1, 64),
			string(t.CloseReason),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadTradesFromCSV reads a file produced by WriteTradesToCSV.
func ReadTradesFromCSV(filename string) ([]domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTrades(file)
}

// ReadTrades parses a trade log CSV.
func ReadTrades(r io.Reader) ([]domain.Trade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(tradeHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	trades := make([]domain.Trade, 0, len(records)-1)
	for i, rec := range records[1:] {
		price, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing price '%s': %w", i+1, rec[3], err)
		}
		qty, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing quantity '%s': %w", i+1, rec[4], err)
		}
		pnl, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing pnl '%s': %w", i+1, rec[5], err)
		}
		trades = append(trades, domain.Trade{
			Timestamp:   rec[0],
			Type:        domain.TradeType(rec[1]),
			Side:        domain.OrderSide(rec[2]),
			Price:       price,
			Quantity:    qty,
			PNL:         pnl,
			CloseReason: domain.CloseReason(rec[6]),
		})
	}
	return trades, nil
}
