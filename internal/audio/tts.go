package audio

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultEndpoint is the Google Translate speech endpoint
	DefaultEndpoint = "https://translate.google.com/translate_tts"

	ttsRequestTimeout = 10 * time.Second
	language          = "fr"
	maxChunkRunes     = 180
	maxAudioBytes     = 8 << 20
)

// ErrEmptyText is returned when there is nothing to speak
var ErrEmptyText = errors.New("no text to speak")

// TTSService turns French text into MP3 audio, caching results on disk
type TTSService struct {
	audioDir string
	endpoint string
	client   *http.Client
	group    singleflight.Group
}

// NewTTSService creates a TTS service. An empty audioDir disables the cache.
func NewTTSService(audioDir, endpoint string) *TTSService {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &TTSService{
		audioDir: audioDir,
		endpoint: endpoint,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Speak returns MP3 audio for text. Concurrent calls for the same text share
// a single upstream fetch.
func (s *TTSService) Speak(ctx context.Context, text string) ([]byte, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, ErrEmptyText
	}

	key := cacheKey(text)
	if data, ok := s.cached(key); ok {
		return data, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if data, ok := s.cached(key); ok {
			return data, nil
		}
		data, err := s.synthesize(ctx, text)
		if err != nil {
			return nil, err
		}
		s.store(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *TTSService) synthesize(ctx context.Context, text string) ([]byte, error) {
	var out bytes.Buffer
	chunks := splitText(text, maxChunkRunes)
	for i, chunk := range chunks {
		if err := s.fetchChunk(ctx, chunk, i, len(chunks), &out); err != nil {
			return nil, fmt.Errorf("failed to generate audio: %w", err)
		}
	}
	return out.Bytes(), nil
}

func (s *TTSService) fetchChunk(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", chunk)
	params.Set("tl", language)
	params.Set("client", "tw-ob")
	params.Set("idx", strconv.Itoa(idx))
	params.Set("total", strconv.Itoa(total))
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxAudioBytes)); err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}
	return nil
}

func (s *TTSService) cached(key string) ([]byte, bool) {
	if s.audioDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(s.audioDir, key+".mp3"))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// store writes through a temp file so readers never see a partial MP3
func (s *TTSService) store(key string, data []byte) {
	if s.audioDir == "" {
		return
	}
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return
	}
	tmp, err := os.CreateTemp(s.audioDir, key+"-*.tmp")
	if err != nil {
		return
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.audioDir, key+".mp3")); err != nil {
		os.Remove(tmp.Name())
	}
}

func cacheKey(text string) string {
	sum := sha1.Sum([]byte(language + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// splitText breaks text into chunks of at most max runes, preferring
// sentence ends, then spaces.
func splitText(text string, max int) []string {
	var chunks []string
	for utf8.RuneCountInString(text) > max {
		runes := []rune(text)
		cut := -1
		for i := max; i > 0; i-- {
			if r := runes[i-1]; r == '.' || r == '!' || r == '?' {
				cut = i
				break
			}
		}
		if cut < 0 {
			for i := max; i > 0; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = max
		}
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(string(runes[cut:]))
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
