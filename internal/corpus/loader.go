// Package corpus loads the reference question set that new questions are
// compared against.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mathdex/mathdex/internal/domain"
)

// rawRecord mirrors one entry of the corpus JSON file.
type rawRecord struct {
	ID        int    `json:"id"`
	Question  string `json:"question"`
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
}

// Load reads question records from a JSON file, preserving file order.
// Records with blank question text are skipped with a warning. A missing
// file yields an empty corpus rather than an error: the similarity feature
// degrades to "no matches" instead of taking the service down.
func Load(path string, logger *zap.Logger) ([]domain.QuestionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Corpus file not found, starting with empty corpus",
				zap.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	records := make([]domain.QuestionRecord, 0, len(raws))
	for i, r := range raws {
		if strings.TrimSpace(r.Question) == "" {
			logger.Warn("Skipping corpus record without question text",
				zap.Int("position", i),
				zap.Int("id", r.ID),
			)
			continue
		}
		records = append(records, domain.QuestionRecord{
			ID:        r.ID,
			Text:      r.Question,
			Domain:    r.Domain,
			Subdomain: r.Subdomain,
		})
	}

	logger.Info("Corpus loaded",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("skipped", len(raws)-len(records)),
	)
	return records, nil
}
