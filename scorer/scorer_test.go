package scorer

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"stockpick/config"
	"stockpick/model"
)

func newDefault() *Scorer {
	return New(config.DefaultConfig.Scoring)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreEndToEndOrder(t *testing.T) {
	records := []model.StockRecord{
		{Code: "A", PE: 10, Closes: []float64{100, 105}},
		{Code: "B", PE: -2, Closes: []float64{100, 100}},
		{Code: "C", PE: 20, Closes: []float64{100, 101}},
	}
	scored, err := newDefault().Score(records)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got := []string{scored[0].Record.Code, scored[1].Record.Code, scored[2].Record.Code}
	if !reflect.DeepEqual(got, []string{"A", "C", "B"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	// A: 0.6*10 + 0.4*5 = 8, C: 0.6*5 + 0.4*1 = 3.4, B: 0
	if !near(scored[0].Score, 8) || !near(scored[1].Score, 3.4) || !near(scored[2].Score, 0) {
		t.Fatalf("unexpected scores: %v %v %v", scored[0].Score, scored[1].Score, scored[2].Score)
	}
	if scored[0].Rank != 1 || scored[2].Rank != 3 || !near(scored[2].RankPct, 1) {
		t.Fatalf("unexpected ranks: %+v", scored)
	}
}

func TestScoresFiniteAndNonAscending(t *testing.T) {
	records := []model.StockRecord{
		{Code: "s1", PE: 8, Closes: []float64{10, 9, 8}},
		{Code: "s2", PE: 35, Closes: []float64{10, 12}},
		{Code: "s3", PE: 0.5, Closes: []float64{10, 30}},
		{Code: "s4", PE: 15, Closes: []float64{5, 5.1, 5.2, 5.3}},
		{Code: "s5", PE: 10, Closes: []float64{math.NaN(), 10}},
		{Code: "s6", PE: 12, Closes: []float64{10, math.Inf(1)}},
	}
	scored, err := newDefault().Score(records)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(scored) != len(records) {
		t.Fatalf("length changed: %d", len(scored))
	}
	for i, s := range scored {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			t.Fatalf("score %d not finite: %v", i, s.Score)
		}
		if i > 0 && s.Score > scored[i-1].Score {
			t.Fatalf("scores ascending at %d", i)
		}
	}
}

func TestScoreNaNHistoryKeepsOrder(t *testing.T) {
	records := []model.StockRecord{
		{Code: "lo", PE: 50, Closes: []float64{10, 9}},
		{Code: "nan", PE: 10, Closes: []float64{math.NaN(), 10}},
		{Code: "hi", PE: 5, Closes: []float64{10, 11}},
	}
	scored, err := newDefault().Score(records)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// hi: 0.6*20 + 0.4*10 = 16, lo: 0.6*2 - 0.4*10 = -2.8, nan: 0.6*10 - 0.4*50 = -14
	got := []string{scored[0].Record.Code, scored[1].Record.Code, scored[2].Record.Code}
	if !reflect.DeepEqual(got, []string{"hi", "lo", "nan"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if !near(scored[2].Score, -14) {
		t.Fatalf("bad history should take the trend floor, got %v", scored[2].Score)
	}
}

func TestValueTermFloor(t *testing.T) {
	s := newDefault()
	for _, pe := range []float64{0, -2, -100, math.NaN(), math.Inf(1)} {
		if v := s.ValueTerm(pe); v != 0 {
			t.Fatalf("ValueTerm(%v)=%v want floor 0", pe, v)
		}
	}
	if v := s.ValueTerm(0.1); v != 50 {
		t.Fatalf("ValueTerm should cap at 50, got %v", v)
	}
}

func TestTrendTermEdges(t *testing.T) {
	s := New(config.Scoring{ValueWeight: 0.6, TrendWeight: 0.4, ValueCap: 50, TrendClip: 50, Window: 3})
	if v := s.TrendTerm(nil); v != -50 {
		t.Fatalf("empty history should be -50, got %v", v)
	}
	if v := s.TrendTerm([]float64{10}); v != -50 {
		t.Fatalf("single point should be -50, got %v", v)
	}
	if v := s.TrendTerm([]float64{0, 10}); v != -50 {
		t.Fatalf("non-positive first close should be -50, got %v", v)
	}
	for _, closes := range [][]float64{{math.NaN(), 10}, {math.Inf(1), 10}, {10, math.NaN()}, {10, math.Inf(-1)}} {
		if v := s.TrendTerm(closes); v != -50 {
			t.Fatalf("TrendTerm(%v)=%v want -50", closes, v)
		}
	}
	if v := s.TrendTerm([]float64{10, 100}); v != 50 {
		t.Fatalf("trend should clip at 50, got %v", v)
	}
	// 窗口为3，只看最后三个点 8 -> 10
	if v := s.TrendTerm([]float64{1, 8, 9, 10}); !near(v, 25) {
		t.Fatalf("window not applied, got %v", v)
	}
}

func TestScoreDeterministicAndStable(t *testing.T) {
	records := []model.StockRecord{
		{Code: "x", PE: 10, Closes: []float64{1, 1}},
		{Code: "y", PE: 10, Closes: []float64{1, 1}},
		{Code: "z", PE: 10, Closes: []float64{1, 1}},
	}
	s := newDefault()
	first, err := s.Score(records)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, _ := s.Score(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scoring is not deterministic")
	}
	if first[0].Record.Code != "x" || first[1].Record.Code != "y" || first[2].Record.Code != "z" {
		t.Fatalf("ties should keep input order")
	}
}

func TestScoreMissingCode(t *testing.T) {
	_, err := newDefault().Score([]model.StockRecord{{Code: "ok", PE: 1}, {PE: 2}})
	if !errors.Is(err, model.ErrScoring) {
		t.Fatalf("expected ErrScoring, got %v", err)
	}
}
