package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"
)

func newFakeTTS(t *testing.T, release <-chan struct{}) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if release != nil {
			<-release
		}
		if r.URL.Query().Get("tl") != "fr" {
			http.Error(w, "wrong language", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("[" + r.URL.Query().Get("q") + "]"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSpeakCachesOnDisk(t *testing.T) {
	srv, calls := newFakeTTS(t, nil)
	tts := NewTTSService(t.TempDir(), srv.URL)

	first, err := tts.Speak(context.Background(), "Le  chat dort.")
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if string(first) != "[Le chat dort.]" {
		t.Errorf("Speak() = %q", first)
	}

	second, err := tts.Speak(context.Background(), "Le chat dort.")
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if string(second) != string(first) {
		t.Errorf("cached audio differs: %q vs %q", second, first)
	}
	if calls.Load() != 1 {
		t.Errorf("upstream called %d times, want 1", calls.Load())
	}
}

func TestSpeakDeduplicatesConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	srv, calls := newFakeTTS(t, release)
	tts := NewTTSService("", srv.URL)

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := tts.Speak(context.Background(), "chien")
			if err != nil {
				t.Errorf("Speak() error = %v", err)
				return
			}
			results[i] = string(data)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("upstream called %d times, want 1", calls.Load())
	}
	for _, r := range results {
		if r != "[chien]" {
			t.Errorf("result = %q", r)
		}
	}
}

func TestSpeakErrors(t *testing.T) {
	if _, err := NewTTSService("", "http://127.0.0.1:1").Speak(context.Background(), "   "); err != ErrEmptyText {
		t.Errorf("Speak(blank) error = %v, want ErrEmptyText", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	dir := t.TempDir()
	if _, err := NewTTSService(dir, srv.URL).Speak(context.Background(), "chat"); err == nil {
		t.Error("Speak() should fail on upstream error")
	}
	if _, ok := NewTTSService(dir, srv.URL).cached(cacheKey("chat")); ok {
		t.Error("failed audio must not be cached")
	}
}

func TestSpeakLongTextIsChunked(t *testing.T) {
	srv, calls := newFakeTTS(t, nil)
	tts := NewTTSService("", srv.URL)

	text := strings.Repeat("Le petit chat joue dans le jardin. ", 12)
	data, err := tts.Speak(context.Background(), text)
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if calls.Load() < 3 {
		t.Errorf("expected several chunks, got %d calls", calls.Load())
	}
	if strings.Count(string(data), "[") != int(calls.Load()) {
		t.Errorf("audio does not concatenate every chunk: %q", data)
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"short", "Un chat.", 20, []string{"Un chat."}},
		{"sentence boundary", "Un chat. Un chien noir.", 12, []string{"Un chat.", "Un chien", "noir."}},
		{"space boundary", "abc def ghi", 8, []string{"abc def", "ghi"}},
		{"hard cut", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"multibyte", "ééééé ééééé", 6, []string{"ééééé", "ééééé"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitText(tt.text, tt.max)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitText() = %q, want %q", got, tt.want)
			}
			for _, c := range got {
				if utf8.RuneCountInString(c) > tt.max {
					t.Errorf("chunk %q exceeds %d runes", c, tt.max)
				}
			}
		})
	}
}
