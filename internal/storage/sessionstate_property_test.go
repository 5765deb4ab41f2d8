package storage

import (
	"os"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// freshCacheDir returns a new store directory per check iteration so
// state never leaks between rapid runs.
func freshCacheDir(rt *rapid.T, base string) string {
	dir, err := os.MkdirTemp(base, "store-*")
	if err != nil {
		rt.Fatalf("MkdirTemp: %v", err)
	}
	return dir
}

// TestProperty20_ModifiedFilesKeepSetSemantics verifies that any
// sequence of AddModifiedFile calls yields a duplicate-free list in
// first-seen order.
func TestProperty20_ModifiedFilesKeepSetSemantics(t *testing.T) {
	projectDir := t.TempDir()
	cacheBase := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		mgr := NewSessionStateManager(projectDir, freshCacheDir(rt, cacheBase))
		if err := mgr.Init(); err != nil {
			rt.Fatalf("Init: %v", err)
		}

		paths := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}\.(go|tf|md)`), 0, 12).Draw(rt, "paths")
		var wantOrder []string
		seen := make(map[string]bool)
		for _, p := range paths {
			if err := mgr.AddModifiedFile("s1", p); err != nil {
				rt.Fatalf("AddModifiedFile(%q): %v", p, err)
			}
			if !seen[p] {
				seen[p] = true
				wantOrder = append(wantOrder, p)
			}
		}

		got, err := mgr.GetModifiedFiles("s1")
		if err != nil {
			rt.Fatalf("GetModifiedFiles: %v", err)
		}
		if len(got) != len(wantOrder) {
			rt.Fatalf("got %d files, want %d", len(got), len(wantOrder))
		}
		for i := range wantOrder {
			if got[i] != wantOrder[i] {
				rt.Fatalf("files[%d] = %q, want %q", i, got[i], wantOrder[i])
			}
		}
	})
}

// TestProperty21_RecordedSkillIsAlwaysRecent verifies that a skill
// recorded at time T is reported recent for any window larger than the
// elapsed time, and not recent once the window has fully elapsed.
func TestProperty21_RecordedSkillIsAlwaysRecent(t *testing.T) {
	projectDir := t.TempDir()
	cacheBase := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
		mgr := newSessionStateWithClock(projectDir, freshCacheDir(rt, cacheBase), func() time.Time { return now })
		if err := mgr.Init(); err != nil {
			rt.Fatalf("Init: %v", err)
		}

		skill := rapid.StringMatching(`[a-z-]{1,16}`).Draw(rt, "skill")
		if err := mgr.RecordSkillActivation("s1", skill); err != nil {
			rt.Fatalf("RecordSkillActivation: %v", err)
		}

		elapsed := time.Duration(rapid.IntRange(0, 120).Draw(rt, "elapsedMin")) * time.Minute
		window := time.Duration(rapid.IntRange(1, 120).Draw(rt, "windowMin")) * time.Minute
		now = now.Add(elapsed)

		recent, err := mgr.WasRecentlyActivated("s1", skill, window)
		if err != nil {
			rt.Fatalf("WasRecentlyActivated: %v", err)
		}
		if want := elapsed < window; recent != want {
			rt.Fatalf("elapsed=%v window=%v: recent=%v, want %v", elapsed, window, recent, want)
		}
	})
}
