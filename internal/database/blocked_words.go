package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// BlockedWordsURL is the French list of offensive words used to screen
// student names.
const BlockedWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/fr"

// SeedBlockedWords downloads the blocked word list into the blocked_words
// table unless it is already populated.
func (db *DB) SeedBlockedWords(ctx context.Context, url string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check blocked words count: %w", err)
	}
	if count > 0 {
		log.Printf("Blocked words filter already populated with %d words", count)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build blocked words request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download blocked words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from blocked words URL: %d", resp.StatusCode)
	}

	added, err := db.LoadBlockedWords(ctx, resp.Body)
	if err != nil {
		return err
	}
	log.Printf("Blocked words filter populated with %d words", added)
	return nil
}

// LoadBlockedWords inserts one lowercased word per line of r, skipping
// duplicates, and returns how many lines were accepted.
func (db *DB) LoadBlockedWords(ctx context.Context, r io.Reader) (int, error) {
	added := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		stmt, err := tx.PrepareContext(ctx, db.Dialect.RewriteQuery(db.Dialect.InsertIgnoreQuery("blocked_words", "word")))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			word := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if word == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, word); err != nil {
				continue
			}
			added++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading blocked words: %w", err)
		}
		return nil
	})
	return added, err
}

// ContainsBlockedWord reports whether any whitespace-separated token of text
// is a blocked word.
func (db *DB) ContainsBlockedWord(ctx context.Context, text string) (bool, error) {
	for _, token := range strings.Fields(strings.ToLower(text)) {
		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_words WHERE word = ?", token).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("failed to check blocked word: %w", err)
		}
		if count > 0 {
			log.Printf("Blocked word detected: '%s'", token)
			return true, nil
		}
	}
	return false, nil
}
