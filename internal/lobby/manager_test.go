package lobby

import (
	"context"
	"errors"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/park285/chessrules/internal/session"
)

func newTestManagers(t *testing.T) (*Manager, *session.Manager) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })

	sessions, err := session.NewManager(fmt.Sprintf("redis://%s/0", mr.Addr()), 0)
	if err != nil {
		t.Fatalf("session.NewManager: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close() })
	return NewManager(sessions.Client(), sessions), sessions
}

func TestMakeJoinStartsGame(t *testing.T) {
	m, sessions := newTestManagers(t)
	ctx := context.Background()

	meta, err := m.Make(ctx, "u1", "Alice", 8, 8, SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if meta.Code == "" {
		t.Fatalf("expected non-empty code")
	}
	list, _ := m.List(ctx)
	if len(list) != 1 || list[0].Code != meta.Code {
		t.Fatalf("waiting list = %+v", list)
	}

	jr, err := m.Join(ctx, meta.Code, "u2", "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !jr.Started || jr.GameID == "" {
		t.Fatalf("expected game to start: %+v", jr)
	}
	s, err := sessions.ActiveByPlayer(ctx, "u1")
	if err != nil || s == nil || s.ID != jr.GameID {
		t.Fatalf("ActiveByPlayer: %+v %v", s, err)
	}
	names := map[string]bool{s.FirstName: true, s.SecondName: true}
	if !names["Alice"] || !names["Bob"] {
		t.Fatalf("names not carried over: %q vs %q", s.FirstName, s.SecondName)
	}
	if list, _ := m.List(ctx); len(list) != 0 {
		t.Fatalf("started lobby still listed: %+v", list)
	}
}

func TestCreatorSideHonoured(t *testing.T) {
	m, _ := newTestManagers(t)
	ctx := context.Background()

	meta, err := m.Make(ctx, "u1", "Alice", 8, 12, SideSecond)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	jr, err := m.Join(ctx, meta.Code, "u2", "Bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if jr.Meta.SecondID != "u1" || jr.Meta.FirstID != "u2" {
		t.Fatalf("sides = first %q second %q", jr.Meta.FirstID, jr.Meta.SecondID)
	}
	if jr.Meta.Height != 12 {
		t.Fatalf("board height lost: %d", jr.Meta.Height)
	}
}

func TestSecondJoinRejected(t *testing.T) {
	m, _ := newTestManagers(t)
	ctx := context.Background()

	meta, err := m.Make(ctx, "u1", "", 8, 8, SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Join(ctx, meta.Code, "u2", ""); err != nil {
		t.Fatalf("Join#1: %v", err)
	}
	if _, err := m.Join(ctx, meta.Code, "u3", ""); !errors.Is(err, ErrLobbyStarted) {
		t.Fatalf("expected ErrLobbyStarted, got %v", err)
	}
}

func TestJoinErrors(t *testing.T) {
	m, _ := newTestManagers(t)
	ctx := context.Background()

	if _, err := m.Join(ctx, "LB-NOPE00", "u2", ""); !errors.Is(err, ErrLobbyGone) {
		t.Fatalf("expected ErrLobbyGone, got %v", err)
	}
	meta, err := m.Make(ctx, "u1", "", 8, 8, SideFirst)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Join(ctx, meta.Code, "u1", ""); !errors.Is(err, ErrOwnLobby) {
		t.Fatalf("expected ErrOwnLobby, got %v", err)
	}
	if _, err := m.Join(ctx, "", "u2", ""); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected ErrInvalidArgs, got %v", err)
	}
}

func TestMakeRestrictions(t *testing.T) {
	m, sessions := newTestManagers(t)
	ctx := context.Background()

	if _, err := m.Make(ctx, "u1", "", 8, 8, SideRandom); err != nil {
		t.Fatalf("first Make: %v", err)
	}
	if _, err := m.Make(ctx, "u1", "", 8, 8, SideRandom); !errors.Is(err, ErrCreatorHasLobby) {
		t.Fatalf("expected ErrCreatorHasLobby, got %v", err)
	}
	if _, err := m.Make(ctx, "u9", "", 30, 8, SideRandom); err == nil {
		t.Fatalf("expected size error")
	}

	if _, err := sessions.Create(ctx, session.CreateRequest{Width: 8, Height: 8, FirstID: "x1", SecondID: "u5"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Make(ctx, "u5", "", 8, 8, SideRandom); !errors.Is(err, ErrPlayerBusy) {
		t.Fatalf("expected ErrPlayerBusy, got %v", err)
	}
}

func TestParseSide(t *testing.T) {
	if ParseSide("first") != SideFirst || ParseSide("second") != SideSecond || ParseSide("blue") != SideRandom {
		t.Fatalf("ParseSide mapping broken")
	}
}
