package repositories

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"sync"
	"testing"
	"time"
)

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// yieldingStorage lets other goroutines run between a storage write and its caller resuming.
type yieldingStorage struct{ *MemoryStorage }

func (y yieldingStorage) Put(ctx context.Context, key, value string) error {
	runtime.Gosched()
	err := y.MemoryStorage.Put(ctx, key, value)
	runtime.Gosched()
	return err
}

func (y yieldingStorage) Delete(ctx context.Context, key string) error {
	runtime.Gosched()
	err := y.MemoryStorage.Delete(ctx, key)
	runtime.Gosched()
	return err
}

func TestPersistentJar(t *testing.T) {
	ctx := context.Background()

	t.Run("server cookies survive a restart", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "AccessToken", Value: "access-1", Path: "/", HttpOnly: true})
			http.SetCookie(w, &http.Cookie{Name: "RefreshToken", Value: "refresh-1", Path: "/", MaxAge: 3600})
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		storage := NewMemoryStorage()
		jar, err := NewPersistentJar(storage, "", nil)
		if err != nil {
			t.Fatalf("NewPersistentJar() error = %v", err)
		}

		client := &http.Client{Jar: jar}
		resp, err := client.Post(srv.URL+"/login", "application/json", nil)
		if err != nil {
			t.Fatalf("login request failed: %v", err)
		}
		resp.Body.Close()

		if jar.Len() != 2 {
			t.Fatalf("expected 2 cookies, got %d", jar.Len())
		}
		if _, err := storage.Get(ctx, DefaultCookieKey); err != nil {
			t.Fatalf("cookies should be persisted: %v", err)
		}

		restored, _ := NewPersistentJar(storage, "", nil)
		if err := restored.Load(ctx); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		u, _ := url.Parse(srv.URL + "/holidays")
		cookies := restored.Cookies(u)
		if cookieValue(cookies, "AccessToken") != "access-1" || cookieValue(cookies, "RefreshToken") != "refresh-1" {
			t.Errorf("restored cookies = %v", cookies)
		}
	})

	t.Run("max-age deletion removes persisted cookie", func(t *testing.T) {
		storage := NewMemoryStorage()
		jar, _ := NewPersistentJar(storage, "", nil)
		u, _ := url.Parse("http://localhost:8080/logout")

		jar.SetCookies(u, []*http.Cookie{{Name: "AccessToken", Value: "a"}})
		jar.SetCookies(u, []*http.Cookie{{Name: "AccessToken", Value: "", MaxAge: -1}})

		if jar.Len() != 0 {
			t.Errorf("expected cookie removed, have %d", jar.Len())
		}
		restored, _ := NewPersistentJar(storage, "", nil)
		restored.Load(ctx)
		if restored.Len() != 0 {
			t.Errorf("deleted cookie should not be restored, have %d", restored.Len())
		}
	})

	t.Run("expired cookies are skipped on load", func(t *testing.T) {
		storage := NewMemoryStorage()
		jar, _ := NewPersistentJar(storage, "", nil)
		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		jar.now = func() time.Time { return base }

		u, _ := url.Parse("http://localhost:8080/")
		jar.SetCookies(u, []*http.Cookie{{Name: "AccessToken", Value: "a", MaxAge: 60}})

		restored, _ := NewPersistentJar(storage, "", nil)
		restored.now = func() time.Time { return base.Add(time.Hour) }
		restored.Load(ctx)
		if restored.Len() != 0 {
			t.Errorf("expired cookie restored, have %d", restored.Len())
		}
	})

	t.Run("import and clear", func(t *testing.T) {
		storage := NewMemoryStorage()
		jar, _ := NewPersistentJar(storage, "session-cookies", nil)
		origin, _ := url.Parse("http://localhost:8080/")

		jar.Import(origin, []*http.Cookie{{Name: "AccessToken", Value: "from-browser"}})

		probe, _ := url.Parse("http://localhost:8080/users/in/role")
		if cookieValue(jar.Cookies(probe), "AccessToken") != "from-browser" {
			t.Error("imported cookie should apply to every path")
		}

		if err := jar.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if len(jar.Cookies(probe)) != 0 || jar.Len() != 0 {
			t.Error("jar should be empty after Clear")
		}
		if _, err := storage.Get(ctx, "session-cookies"); err == nil {
			t.Error("persisted cookies should be removed")
		}
		if err := jar.Clear(ctx); err != nil {
			t.Errorf("clearing an empty jar should succeed, got %v", err)
		}
	})

	t.Run("concurrent writes persist the final state", func(t *testing.T) {
		origin, _ := url.Parse("http://localhost:8080/")

		for i := range 500 {
			storage := NewMemoryStorage()
			jar, _ := NewPersistentJar(yieldingStorage{storage}, "", nil)

			var wg sync.WaitGroup
			wg.Add(3)
			go func() {
				defer wg.Done()
				jar.SetCookies(origin, []*http.Cookie{{Name: "AccessToken", Value: "a", Path: "/"}})
			}()
			go func() {
				defer wg.Done()
				jar.SetCookies(origin, []*http.Cookie{{Name: "RefreshToken", Value: "r", Path: "/"}})
			}()
			go func() {
				defer wg.Done()
				jar.Clear(ctx)
			}()
			wg.Wait()

			restored, _ := NewPersistentJar(storage, "", nil)
			if err := restored.Load(ctx); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if restored.Len() != jar.Len() {
				t.Fatalf("run %d: persisted %d cookies, jar holds %d", i, restored.Len(), jar.Len())
			}
		}
	})

	t.Run("malformed store is ignored", func(t *testing.T) {
		storage := NewMemoryStorage()
		storage.Put(ctx, DefaultCookieKey, "{nope")

		jar, _ := NewPersistentJar(storage, "", nil)
		if err := jar.Load(ctx); err != nil {
			t.Errorf("Load() error = %v", err)
		}
		if jar.Len() != 0 {
			t.Error("expected empty jar")
		}
	})
}
