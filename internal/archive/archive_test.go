package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/savegame"
	"github.com/park285/chessrules/internal/testutil"
)

func sampleResult(id string, ended time.Time) *Result {
	return &Result{
		GameID:     id,
		Width:      8,
		Height:     8,
		FirstID:    "u1",
		FirstName:  "Black",
		SecondID:   "u2",
		SecondName: `Wh"ite`,
		Status:     "second_won",
		Winner:     "u2",
		Method:     "checkmate",
		Moves: []savegame.MovePair{
			{From: engine.Field{Column: 1, Row: 1}, To: engine.Field{Column: 1, Row: 2}},
			{From: engine.Field{Column: 4, Row: 6}, To: engine.Field{Column: 4, Row: 5}},
			{From: engine.Field{Column: 6, Row: 1}, To: engine.Field{Column: 6, Row: 2}},
		},
		StartedAt: ended.Add(-time.Minute),
		EndedAt:   ended,
	}
}

func TestMemoryRepositoryRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	testutil.RequireNoError(t, repo.SaveResult(ctx, sampleResult("g1", base)))
	testutil.RequireNoError(t, repo.SaveResult(ctx, sampleResult("g2", base.Add(time.Hour))))
	other := sampleResult("g3", base.Add(2*time.Hour))
	other.FirstID, other.SecondID = "u8", "u9"
	testutil.RequireNoError(t, repo.SaveResult(ctx, other))

	got, err := repo.Recent(ctx, "u1", 10)
	testutil.RequireNoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.GameID
	}
	testutil.AssertEqual(t, ids, []string{"g2", "g1"})

	// upsert replaces the stored result
	again := sampleResult("g1", base.Add(3*time.Hour))
	again.Status = "first_won"
	testutil.RequireNoError(t, repo.SaveResult(ctx, again))
	got, err = repo.Recent(ctx, "u2", 1)
	testutil.RequireNoError(t, err)
	if len(got) != 1 || got[0].GameID != "g1" || got[0].Status != "first_won" {
		t.Fatalf("recent after upsert = %+v", got)
	}
}

func TestTranscript(t *testing.T) {
	res := sampleResult("g1", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	out := Transcript(res)

	for _, want := range []string{
		`[Date "2024.03.01"]`,
		`[Board "8x8"]`,
		`[Second "Wh'ite"]`,
		`[Termination "checkmate"]`,
		`[Result "0-1"]`,
		"1. B2-B3 E7-E6 2. G2-G3 0-1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript missing %q:\n%s", want, out)
		}
	}
	testutil.AssertEqual(t, res.Duration(), time.Minute)
}
