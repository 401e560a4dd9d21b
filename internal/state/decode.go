package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/release"
)

// rawRecord accepts every shape a record has been written in. Fields not
// listed here are dropped.
type rawRecord struct {
	URL                string          `json:"url"`
	Name               string          `json:"name"`
	TagName            string          `json:"tag_name"`
	Prerelease         bool            `json:"prerelease"`
	PublishedAt        string          `json:"published_at"`
	Asset              *release.Asset  `json:"asset"`
	Assets             []release.Asset `json:"assets"` // older files stored the whole asset list
	HoldUpdate         bool            `json:"hold_update"`
	InstallMethod      InstallMethod   `json:"install_method"`
	PackageType        string          `json:"package_type"`
	CustomReleaseWords []string        `json:"custom_release_words"`
}

func (r rawRecord) toRecord(k Key) ToolRecord {
	rec := ToolRecord{
		URL:                k.URL,
		Name:               k.Name,
		TagName:            r.TagName,
		Prerelease:         r.Prerelease,
		PublishedAt:        r.PublishedAt,
		HoldUpdate:         r.HoldUpdate,
		InstallMethod:      r.InstallMethod,
		PackageType:        r.PackageType,
		CustomReleaseWords: r.CustomReleaseWords,
	}
	switch {
	case r.Asset != nil:
		rec.Asset = *r.Asset
	case len(r.Assets) > 0:
		rec.Asset = r.Assets[0]
	}
	if rec.InstallMethod == "" {
		rec.InstallMethod = MethodBinary
	}
	return rec
}

// decode reconstructs a Document from raw JSON. Malformed keys and records
// that are not objects are skipped with a warning. Only a document that is
// not a JSON object at all is an error.
func decode(data []byte, logger logging.Logger) (Document, error) {
	return decodeChecked(data, logger, nil)
}

// decodeChecked is decode with an extra per-record check; records failing
// check are skipped with a warning like any other bad entry.
func decodeChecked(data []byte, logger logging.Logger, check func(json.RawMessage) error) (Document, error) {
	doc := Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	for key, msg := range raw {
		k, err := ParseKey(key)
		if err != nil {
			logger.Warn("skipping state entry", "key", key, "err", err)
			continue
		}
		if check != nil {
			if err := check(msg); err != nil {
				logger.Warn("skipping invalid state entry", "key", key, "err", err)
				continue
			}
		}
		var rr rawRecord
		if err := json.Unmarshal(msg, &rr); err != nil {
			logger.Warn("skipping unreadable state entry", "key", key, "err", err)
			continue
		}
		doc[key] = rr.toRecord(k)
	}
	return doc, nil
}

// DecodeDocument parses an externally supplied state document. Each record
// is validated against the record schema on its own; a failing record is
// skipped with a warning. Only a document that is not a JSON object is an
// error.
func DecodeDocument(data []byte, logger logging.Logger) (Document, error) {
	logger = logging.OrNop(logger)
	doc, err := decodeChecked(data, logger, func(msg json.RawMessage) error {
		return ValidateRecord(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid state document: %w", err)
	}
	return doc, nil
}
