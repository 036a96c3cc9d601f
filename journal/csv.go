package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	orders *csv.Writer
	equity *csv.Writer
	of, ef *os.File
}

func NewCSV(ordersPath, equityPath string) (*CSVJournal, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	ew := csv.NewWriter(ef)

	if err := ow.Write([]string{"request_id", "time", "symbol", "direction", "volume",
		"price", "stop_loss", "take_profit", "comment", "order_id", "deal_id",
		"retcode", "retcode_text", "result_comment"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "balance", "equity", "margin_used",
		"margin_free", "margin_level", "floating_profit"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{ow, ew, of, ef}, nil
}

func (j *CSVJournal) RecordOrder(r OrderRecord) error {
	j.orders.Write([]string{
		r.RequestID,
		r.Time.UTC().Format(time.RFC3339),
		r.Symbol,
		r.Direction,
		f(r.Volume),
		f(r.Price),
		f(r.StopLoss),
		f(r.TakeProfit),
		r.Comment,
		strconv.FormatInt(r.OrderID, 10),
		strconv.FormatInt(r.DealID, 10),
		strconv.Itoa(r.Retcode),
		r.RetcodeText,
		r.ResultComment,
	})
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.UTC().Format(time.RFC3339),
		f(e.Balance),
		f(e.Equity),
		f(e.MarginUsed),
		f(e.MarginFree),
		f(e.MarginLevel),
		f(e.FloatingProfit),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.of.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
