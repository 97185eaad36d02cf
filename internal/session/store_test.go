// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatterm/internal/model"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "chatterm", "session.json")
}

func TestStoreStartsEmpty(t *testing.T) {
	s := NewStore(testPath(t))

	if _, ok := s.Token(); ok {
		t.Error("fresh store should have no token")
	}
	if _, ok := s.User(); ok {
		t.Error("fresh store should have no user")
	}
	if s.Present() {
		t.Error("fresh store should not report a session")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := testPath(t)
	s := NewStore(path)

	user := model.User{ID: 4, Username: "ada"}
	if err := s.Save("tok-abc", user); err != nil {
		t.Fatalf("save: %v", err)
	}

	token, ok := s.Token()
	if !ok || token != "tok-abc" {
		t.Errorf("token = %q, %v", token, ok)
	}

	// A fresh store on the same path sees the persisted session.
	s2 := NewStore(path)
	token, ok = s2.Token()
	if !ok || token != "tok-abc" {
		t.Errorf("reloaded token = %q, %v", token, ok)
	}
	u, ok := s2.User()
	if !ok || u.Username != "ada" || u.ID != 4 {
		t.Errorf("reloaded user = %+v, %v", u, ok)
	}
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	s := NewStore(testPath(t))
	if err := s.Save("", model.User{}); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestSessionFilePermissions(t *testing.T) {
	path := testPath(t)
	s := NewStore(path)
	if err := s.Save("secret", model.User{ID: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 0600", perm)
	}

	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("dir perm = %o, want 0700", perm)
	}
}

func TestClear(t *testing.T) {
	path := testPath(t)
	s := NewStore(path)
	require.NoError(t, s.Save("tok", model.User{ID: 1}))

	require.NoError(t, s.Clear())

	if _, ok := s.Token(); ok {
		t.Error("token should be gone after clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file should be removed")
	}

	// Clearing again with nothing present is a no-op.
	require.NoError(t, s.Clear())

	// And the cleared session does not come back on reload.
	if NewStore(path).Present() {
		t.Error("cleared session must not survive reload")
	}
}

func TestCorruptFileTreatedAsAbsent(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := NewStore(path)
	if s.Present() {
		t.Error("corrupt file should read as no session")
	}
}

func TestEmptyTokenOnDiskTreatedAsAbsent(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"","user":{"id":1}}`), 0600))

	if NewStore(path).Present() {
		t.Error("empty token should read as no session")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(testPath(t))
	require.NoError(t, s.Save("tok", model.User{ID: 1}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Token()
				s.User()
				s.Present()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			_ = s.Save("tok2", model.User{ID: 2})
		}
	}()
	wg.Wait()

	token, ok := s.Token()
	require.True(t, ok)
	require.Equal(t, "tok2", token)
}
