// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package datahub

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

// PricePoint is one day's closing price.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Commodity is a synthetic market quote.
type Commodity struct {
	Symbol    string       `json:"symbol"`
	Name      string       `json:"name"`
	Unit      string       `json:"unit"`
	Price     float64      `json:"price"`
	Change    float64      `json:"change"`
	ChangePct float64      `json:"changePct"`
	Trend     string       `json:"trend"`
	History   []PricePoint `json:"history"`
}

// MarketData is the market-data payload.
type MarketData struct {
	Date        string      `json:"date"`
	Currency    string      `json:"currency"`
	Commodities []Commodity `json:"commodities"`
	Disclaimer  string      `json:"disclaimer"`
}

type commodityBase struct {
	symbol, name, unit string
	price, volatility  float64
}

var commodityBases = []commodityBase{
	{"ZC", "Corn", "USD/bu", 4.45, 0.018},
	{"ZW", "Wheat", "USD/bu", 5.70, 0.022},
	{"ZS", "Soybeans", "USD/bu", 11.80, 0.015},
	{"ZR", "Rough Rice", "USD/cwt", 15.20, 0.012},
	{"KC", "Coffee", "USD/lb", 2.35, 0.025},
}

const historyDays = 7

// Market generates synthetic commodity prices. Prices are a deterministic
// random walk seeded by commodity and day, so every caller sees the same
// quotes for a given date.
func Market(day time.Time) MarketData {
	day = day.UTC().Truncate(24 * time.Hour)
	out := MarketData{
		Date:        day.Format(time.DateOnly),
		Currency:    "USD",
		Commodities: make([]Commodity, 0, len(commodityBases)),
		Disclaimer:  "Simulated prices for learning purposes only.",
	}
	for _, b := range commodityBases {
		history := make([]PricePoint, historyDays)
		for i := range history {
			d := day.AddDate(0, 0, i-historyDays+1)
			history[i] = PricePoint{Date: d.Format(time.DateOnly), Price: dailyPrice(b, d)}
		}
		last, prev := history[historyDays-1].Price, history[historyDays-2].Price
		c := Commodity{
			Symbol:    b.symbol,
			Name:      b.name,
			Unit:      b.unit,
			Price:     last,
			Change:    round2(last - prev),
			ChangePct: round2((last - prev) / prev * 100),
			History:   history,
		}
		switch {
		case c.ChangePct > 0.5:
			c.Trend = "up"
		case c.ChangePct < -0.5:
			c.Trend = "down"
		default:
			c.Trend = "stable"
		}
		out.Commodities = append(out.Commodities, c)
	}
	return out
}

func dailyPrice(b commodityBase, day time.Time) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(b.symbol))
	rnd := rand.New(rand.NewPCG(h.Sum64(), uint64(day.Unix()/86400)))
	// Slow seasonal swing plus daily noise.
	season := math.Sin(float64(day.YearDay()) / 365 * 2 * math.Pi)
	return round2(b.price * (1 + 0.05*season + b.volatility*rnd.NormFloat64()))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
